package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"vitadash-reward-service/internal/domain"
)

func TestSaveAttemptIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	attempt := domain.QuizAttempt{
		ID:       "a1",
		UserID:   "u1",
		Category: domain.CategoryMath,
		Date:     "2024-06-01",
		Score:    4,
	}
	if err := store.SaveAttempt(ctx, attempt); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A retried save for the same (user, category, day) must not
	// produce a second row.
	attempt.ID = "a2"
	if err := store.SaveAttempt(ctx, attempt); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	got, err := store.AttemptsBetween(ctx, "u1", "2024-06-01", "2024-06-01")
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(got))
	}
	if got[0].ID != "a1" {
		t.Fatalf("retry replaced the original attempt: %s", got[0].ID)
	}

	done, err := store.HasAttempt(ctx, "u1", domain.CategoryMath, "2024-06-01")
	if err != nil {
		t.Fatalf("has attempt: %v", err)
	}
	if !done {
		t.Fatal("expected attempt to exist")
	}
}

func TestForEachTransactionRange(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		tx := domain.Transaction{
			ID:        string(rune('a' + i)),
			UserID:    "u1",
			Amount:    10,
			Type:      domain.TxCredit,
			Category:  domain.TxQuiz,
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
		}
		if err := store.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	// [from, to) over the middle two days.
	var ids []string
	err := store.ForEachTransaction(ctx, "u1", base.Add(24*time.Hour), base.Add(72*time.Hour), func(tx domain.Transaction) error {
		ids = append(ids, tx.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "c" {
		t.Fatalf("expected [b c], got %v", ids)
	}

	// Zero bounds walk everything in timestamp order.
	ids = ids[:0]
	err = store.ForEachTransaction(ctx, "u1", time.Time{}, time.Time{}, func(tx domain.Transaction) error {
		ids = append(ids, tx.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(ids) != 4 {
		t.Fatalf("expected 4 rows, got %v", ids)
	}
}

func TestForEachTransactionStopsOnCallbackError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	for _, id := range []string{"a", "b"} {
		tx := domain.Transaction{ID: id, UserID: "u1", Amount: 1, Type: domain.TxCredit}
		if err := store.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	boom := errors.New("boom")
	seen := 0
	err := store.ForEachTransaction(ctx, "u1", time.Time{}, time.Time{}, func(domain.Transaction) error {
		seen++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if seen != 1 {
		t.Fatalf("walk continued after error: %d", seen)
	}
}

func TestGrantIdempotentAndSorted(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for _, id := range []string{"silver-bolt", "bronze-star", "bronze-star"} {
		if err := store.Grant(ctx, "u1", id); err != nil {
			t.Fatalf("grant: %v", err)
		}
	}

	owned, err := store.OwnedBy(ctx, "u1")
	if err != nil {
		t.Fatalf("owned: %v", err)
	}
	if len(owned) != 2 || owned[0] != "bronze-star" || owned[1] != "silver-bolt" {
		t.Fatalf("expected sorted distinct badges, got %v", owned)
	}
}

func TestCreateUserRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.CreateUser(ctx, "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateUser(ctx, "u1"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected user exists, got %v", err)
	}

	day := domain.Day("2024-06-01")
	if err := store.SetLastActiveDay(ctx, "u1", day); err != nil {
		t.Fatalf("set day: %v", err)
	}
	got, err := store.LastActiveDay(ctx, "u1")
	if err != nil {
		t.Fatalf("last day: %v", err)
	}
	if got != day {
		t.Fatalf("expected %s, got %s", day, got)
	}
}
