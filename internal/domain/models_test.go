package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTransactionSigned(t *testing.T) {
	if got := (Transaction{Amount: 25, Type: TxCredit}).Signed(); got != 25 {
		t.Fatalf("credit signed = %d", got)
	}
	if got := (Transaction{Amount: 25, Type: TxDebit}).Signed(); got != -25 {
		t.Fatalf("debit signed = %d", got)
	}
}

func TestQuizAttemptPerfect(t *testing.T) {
	if !(QuizAttempt{Score: 5, Questions: 5}).Perfect() {
		t.Fatal("5/5 should be perfect")
	}
	if (QuizAttempt{Score: 4, Questions: 5}).Perfect() {
		t.Fatal("4/5 should not be perfect")
	}
	if (QuizAttempt{}).Perfect() {
		t.Fatal("empty attempt should not be perfect")
	}
}

func TestBadgePurchasable(t *testing.T) {
	if !(Badge{Price: 50}).Purchasable() {
		t.Fatal("priced badge should be purchasable")
	}
	if (Badge{}).Purchasable() {
		t.Fatal("free badge should not be purchasable")
	}
	req := &Requirement{Type: RequireStreak, Value: 7}
	if (Badge{Price: 50, Requirement: req}).Purchasable() {
		t.Fatal("achievement badge should not be purchasable")
	}
}

func TestOptionHidesAnswerInJSON(t *testing.T) {
	q := Question{
		ID:     "q1",
		Prompt: "What is 2 + 2?",
		Options: []Option{
			{ID: "o1", Text: "4", Correct: true},
			{ID: "o2", Text: "5"},
		},
	}
	raw, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "orrect") {
		t.Fatalf("answer leaked into JSON: %s", raw)
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("category %s should be valid", c)
		}
	}
	if Category("history").Valid() {
		t.Fatal("unknown category should be invalid")
	}
}
