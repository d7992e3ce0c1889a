package app

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"vitadash-reward-service/internal/domain"
)

// questionGenerator produces fixed-size question sets. Math questions
// are generated arithmetic (one correct sum plus three distinct
// distractors); the other categories draw from built-in banks.
type questionGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newQuestionGenerator() *questionGenerator {
	return &questionGenerator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (g *questionGenerator) generate(category domain.Category, count int) []domain.Question {
	g.mu.Lock()
	defer g.mu.Unlock()

	if category == domain.CategoryMath {
		return g.mathQuestions(count)
	}
	return g.bankQuestions(category, count)
}

func (g *questionGenerator) mathQuestions(count int) []domain.Question {
	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		a := g.rnd.Intn(10) + 1
		b := g.rnd.Intn(10) + 1
		answer := a + b

		seen := map[int]bool{answer: true}
		texts := []string{fmt.Sprint(answer)}
		for len(texts) < 4 {
			d := answer + g.rnd.Intn(11) - 5
			if d <= 0 || seen[d] {
				continue
			}
			seen[d] = true
			texts = append(texts, fmt.Sprint(d))
		}

		questions = append(questions, g.buildQuestion(i, fmt.Sprintf("What is %d + %d?", a, b), texts[0], texts[1:]))
	}
	return questions
}

func (g *questionGenerator) bankQuestions(category domain.Category, count int) []domain.Question {
	bank := questionBanks[category]
	if len(bank) == 0 {
		return g.mathQuestions(count)
	}
	order := g.rnd.Perm(len(bank))
	if count > len(bank) {
		count = len(bank)
	}

	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		entry := bank[order[i]]
		questions = append(questions, g.buildQuestion(i, entry.prompt, entry.correct, entry.distractors))
	}
	return questions
}

// buildQuestion shuffles the correct answer in among the distractors.
func (g *questionGenerator) buildQuestion(index int, prompt, correct string, distractors []string) domain.Question {
	options := make([]domain.Option, 0, len(distractors)+1)
	options = append(options, domain.Option{Text: correct, Correct: true})
	for _, d := range distractors {
		options = append(options, domain.Option{Text: d})
	}
	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	for i := range options {
		options[i].ID = fmt.Sprintf("o%d", i+1)
	}
	return domain.Question{
		ID:      fmt.Sprintf("q%d", index+1),
		Prompt:  prompt,
		Options: options,
	}
}

type bankEntry struct {
	prompt      string
	correct     string
	distractors []string
}

var questionBanks = map[domain.Category][]bankEntry{
	domain.CategoryAptitude: {
		{"If 3 pencils cost 15 coins, how much do 7 pencils cost?", "35", []string{"30", "40", "45"}},
		{"Which number comes next: 2, 6, 12, 20, ...?", "30", []string{"28", "32", "24"}},
		{"A clock shows 3:15. What is the angle between the hands?", "7.5 degrees", []string{"0 degrees", "15 degrees", "30 degrees"}},
		{"If all Blips are Blops and some Blops are Blups, are all Blips Blups?", "Not necessarily", []string{"Yes", "No", "Only on Tuesdays"}},
		{"A train travels 60 km in 45 minutes. What is its speed?", "80 km/h", []string{"60 km/h", "75 km/h", "90 km/h"}},
		{"Which is heavier: a kilogram of feathers or a kilogram of iron?", "They weigh the same", []string{"Feathers", "Iron", "Depends on altitude"}},
		{"How many squares are on a standard chessboard (all sizes)?", "204", []string{"64", "128", "256"}},
		{"If yesterday was two days before Monday, what day is tomorrow?", "Sunday", []string{"Saturday", "Monday", "Tuesday"}},
	},
	domain.CategoryGrammar: {
		{"Choose the correct form: She ___ to the store yesterday.", "went", []string{"goed", "gone", "goes"}},
		{"Which word is a synonym of 'ubiquitous'?", "omnipresent", []string{"rare", "transparent", "hostile"}},
		{"Identify the adverb: 'He ran quickly to the door.'", "quickly", []string{"ran", "door", "he"}},
		{"Which sentence is punctuated correctly?", "It's a long way home.", []string{"Its a long way home.", "It's a long way home", "Its' a long way home."}},
		{"What is the plural of 'criterion'?", "criteria", []string{"criterions", "criterias", "criterion"}},
		{"Choose the correct article: ___ honest mistake.", "an", []string{"a", "the", "no article"}},
		{"Which is the past participle of 'swim'?", "swum", []string{"swam", "swimmed", "swimming"}},
		{"'Their', 'there' and 'they're' are examples of what?", "homophones", []string{"antonyms", "pronouns", "gerunds"}},
	},
	domain.CategoryProgramming: {
		{"What is the time complexity of binary search?", "O(log n)", []string{"O(n)", "O(n log n)", "O(1)"}},
		{"Which data structure gives O(1) average lookup by key?", "hash table", []string{"linked list", "binary tree", "stack"}},
		{"What does SQL stand for?", "Structured Query Language", []string{"Simple Query Language", "Sequential Query Logic", "Standard Question Language"}},
		{"In Go, what does a nil map lookup return?", "the zero value", []string{"a panic", "nil pointer error", "an empty interface"}},
		{"Which HTTP status code means 'Not Found'?", "404", []string{"400", "500", "301"}},
		{"What is a deadlock?", "Two processes each waiting on the other's lock", []string{"A crashed thread", "An infinite loop", "A full disk"}},
		{"Which sorting algorithm is stable?", "merge sort", []string{"quicksort", "heapsort", "selection sort"}},
		{"What does a semaphore control?", "access to a shared resource", []string{"network routing", "memory layout", "clock speed"}},
	},
}
