package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"vitadash-reward-service/internal/domain"
)

// RewardConfig tunes quiz rewards. Zero values fall back to the
// dashboard defaults: 5 questions, 5 coins per correct answer, 25
// coins max per quiz.
type RewardConfig struct {
	QuestionCount     int
	PerQuestionReward int
	// CategoryRewards overrides the per-question reward for a category.
	CategoryRewards map[domain.Category]int
	MaxAwardPerQuiz int
}

func (c RewardConfig) withDefaults() RewardConfig {
	if c.QuestionCount <= 0 {
		c.QuestionCount = 5
	}
	if c.PerQuestionReward <= 0 {
		c.PerQuestionReward = 5
	}
	if c.MaxAwardPerQuiz <= 0 {
		c.MaxAwardPerQuiz = 25
	}
	return c
}

func (c RewardConfig) perQuestion(category domain.Category) int {
	if r, ok := c.CategoryRewards[category]; ok && r > 0 {
		return r
	}
	return c.PerQuestionReward
}

type sessionState int

const (
	stateInProgress sessionState = iota
	stateFinished
	stateFailed
)

// quizSession holds one in-progress attempt. Sessions live in process
// memory and hold no lock while open; only finish takes the per-user
// critical section.
type quizSession struct {
	mu        sync.Mutex
	id        string
	userID    string
	category  domain.Category
	day       domain.Day
	questions []domain.Question
	answers   []string
	state     sessionState
}

// StartResult is returned to the caller when a quiz session opens.
// Questions carry their options with the correct flags stripped by the
// domain JSON encoding.
type StartResult struct {
	SessionID string            `json:"sessionId"`
	Category  domain.Category   `json:"category"`
	Questions []domain.Question `json:"questions"`
}

// FinishResult summarizes a scored attempt.
type FinishResult struct {
	AttemptID    string `json:"attemptId"`
	Score        int    `json:"score"`
	Questions    int    `json:"questions"`
	CoinsAwarded int    `json:"coinsAwarded"`
	Streak       int    `json:"streak"`
}

// QuizEngine runs the attempt state machine: a session moves
// NotStarted -> InProgress -> Finished, or to Failed when the ledger
// rejects the award.
type QuizEngine struct {
	ledger   *Ledger
	attempts AttemptStore
	gate     *Gate
	streaks  *StreakTracker
	badges   *BadgeEngine
	locks    *UserLocks
	clock    Clock
	cfg      RewardConfig
	gen      *questionGenerator

	mu       sync.RWMutex
	sessions map[string]*quizSession
}

// NewQuizEngine wires the engine. locks must be the same instance the
// ledger uses so finish is linearized with other coin movements.
func NewQuizEngine(ledger *Ledger, attempts AttemptStore, gate *Gate, streaks *StreakTracker, badges *BadgeEngine, locks *UserLocks, clock Clock, cfg RewardConfig) *QuizEngine {
	if clock == nil {
		clock = SystemClock
	}
	return &QuizEngine{
		ledger:   ledger,
		attempts: attempts,
		gate:     gate,
		streaks:  streaks,
		badges:   badges,
		locks:    locks,
		clock:    clock,
		cfg:      cfg.withDefaults(),
		gen:      newQuestionGenerator(),
		sessions: make(map[string]*quizSession),
	}
}

// Start opens a session if the eligibility gate allows an attempt in
// the category today.
func (e *QuizEngine) Start(ctx context.Context, userID string, category domain.Category, offsetMinutes int) (StartResult, error) {
	if !category.Valid() {
		return StartResult{}, domain.ErrUnknownCategory
	}
	day := domain.DayOf(e.clock.Now(), offsetMinutes)
	ok, err := e.gate.CanAttempt(ctx, userID, category, day)
	if err != nil {
		return StartResult{}, err
	}
	if !ok {
		return StartResult{}, domain.ErrAlreadyCompletedToday
	}

	questions := e.gen.generate(category, e.cfg.QuestionCount)
	session := &quizSession{
		id:        uuid.NewString(),
		userID:    userID,
		category:  category,
		day:       day,
		questions: questions,
		answers:   make([]string, len(questions)),
	}

	e.mu.Lock()
	e.sessions[session.id] = session
	e.mu.Unlock()

	return StartResult{SessionID: session.id, Category: category, Questions: questions}, nil
}

// SubmitAnswer records the chosen option for a question. Scoring only
// happens at finish; re-answering a question overwrites the choice.
func (e *QuizEngine) SubmitAnswer(ctx context.Context, sessionID string, questionIndex int, optionID string) error {
	session, err := e.session(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state != stateInProgress {
		return domain.ErrAlreadyFinished
	}
	if questionIndex < 0 || questionIndex >= len(session.questions) {
		return domain.ErrQuestionNotFound
	}
	if !hasOption(session.questions[questionIndex], optionID) {
		return domain.ErrOptionNotFound
	}
	session.answers[questionIndex] = optionID
	return nil
}

// Finish scores the session, credits the award, records the attempt and
// updates the streak. Any ledger rejection aborts the whole attempt:
// the session moves to Failed and nothing is persisted.
func (e *QuizEngine) Finish(ctx context.Context, sessionID string) (FinishResult, error) {
	session, err := e.session(sessionID)
	if err != nil {
		return FinishResult{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state != stateInProgress {
		return FinishResult{}, domain.ErrAlreadyFinished
	}

	unlock := e.locks.Lock(session.userID)
	defer unlock()

	// The gate is re-checked under the user lock so two open sessions
	// for the same day cannot both finish.
	done, err := e.attempts.HasAttempt(ctx, session.userID, session.category, session.day)
	if err != nil {
		return FinishResult{}, err
	}
	if done {
		session.state = stateFailed
		return FinishResult{}, domain.ErrAlreadyCompletedToday
	}

	score := 0
	for i, q := range session.questions {
		if isCorrect(q, session.answers[i]) {
			score++
		}
	}
	coins := score * e.cfg.perQuestion(session.category)
	if coins > e.cfg.MaxAwardPerQuiz {
		coins = e.cfg.MaxAwardPerQuiz
	}

	attempt := domain.QuizAttempt{
		ID:           uuid.NewString(),
		UserID:       session.userID,
		Category:     session.category,
		Date:         session.day,
		Score:        score,
		Questions:    len(session.questions),
		CoinsAwarded: coins,
		CompletedAt:  e.clock.Now(),
	}

	if coins > 0 {
		tx := domain.Transaction{
			ID:              uuid.NewString(),
			UserID:          session.userID,
			Amount:          coins,
			Type:            domain.TxCredit,
			Category:        domain.TxQuiz,
			Timestamp:       attempt.CompletedAt,
			RelatedEntityID: attempt.ID,
		}
		if err := e.ledger.appendLocked(ctx, tx); err != nil {
			session.state = stateFailed
			return FinishResult{}, err
		}
	}

	// The credit is durable at this point, so the attempt record must
	// land too; otherwise the gate would re-open and allow a second
	// credit for the same day.
	if err := saveWithRetry(ctx, func() error { return e.attempts.SaveAttempt(ctx, attempt) }); err != nil {
		session.state = stateFailed
		log.Printf("quiz: attempt %s credited but not recorded, needs reconciliation: %v", attempt.ID, err)
		return FinishResult{}, err
	}

	session.state = stateFinished

	streak, err := e.streaks.Record(ctx, session.userID, session.category, session.day)
	if err != nil {
		log.Printf("quiz: streak update for %s/%s: %v", session.userID, session.category, err)
	}

	result := FinishResult{
		AttemptID:    attempt.ID,
		Score:        score,
		Questions:    len(session.questions),
		CoinsAwarded: coins,
		Streak:       streak.CurrentStreak,
	}

	if e.badges != nil {
		e.badges.CheckAchievements(ctx, session.userID)
	}
	return result, nil
}

// Abandon drops an in-progress session. Abandoned sessions leave no
// ledger trace and do not consume the daily attempt.
func (e *QuizEngine) Abandon(sessionID string) {
	e.mu.Lock()
	delete(e.sessions, sessionID)
	e.mu.Unlock()
}

func (e *QuizEngine) session(id string) (*quizSession, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	session, ok := e.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func hasOption(q domain.Question, optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

func isCorrect(q domain.Question, optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt.Correct
		}
	}
	return false
}

const (
	saveRetries = 3
	saveBackoff = 50 * time.Millisecond
)

// saveWithRetry retries a mutation that is safe to repeat (idempotent
// upserts keyed by ID) while the prior coin movement is already durable.
func saveWithRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < saveRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * saveBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = op(); err == nil {
			return nil
		}
	}
	return err
}
