package app_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"vitadash-reward-service/internal/domain"
)

func txAt(id string, amount int, kind domain.TransactionType, category domain.TransactionCategory, ts time.Time) domain.Transaction {
	return domain.Transaction{
		ID:        id,
		UserID:    "u1",
		Amount:    amount,
		Type:      kind,
		Category:  category,
		Timestamp: ts,
	}
}

func seedStatsHistory(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	day1 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)

	txs := []domain.Transaction{
		txAt("t1", 25, domain.TxCredit, domain.TxQuiz, day1),
		txAt("t2", 10, domain.TxCredit, domain.TxBonus, day2),
		txAt("t3", 20, domain.TxDebit, domain.TxPenalty, day2.Add(time.Minute)),
	}
	for _, tx := range txs {
		if err := env.ledger.Append(ctx, tx); err != nil {
			t.Fatalf("seed %s: %v", tx.ID, err)
		}
	}
	attempt := domain.QuizAttempt{
		ID:           "a1",
		UserID:       "u1",
		Category:     domain.CategoryMath,
		Date:         "2024-06-01",
		Score:        5,
		Questions:    5,
		CoinsAwarded: 25,
		CompletedAt:  day1,
	}
	if err := env.store.SaveAttempt(ctx, attempt); err != nil {
		t.Fatalf("seed attempt: %v", err)
	}
}

func TestStatsGroupsByLocalDay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	seedStatsHistory(t, env)

	stats, err := env.stats.StatsFor(ctx, "u1", "2024-06-01", "2024-06-03", 0)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 days, got %d", len(stats))
	}

	if stats[0].CoinsEarned != 25 || stats[0].QuizzesTaken != 1 || stats[0].Penalties != 0 {
		t.Fatalf("day 1 wrong: %+v", stats[0])
	}
	if stats[1].CoinsEarned != 10 || stats[1].QuizzesTaken != 0 || stats[1].Penalties != 20 {
		t.Fatalf("day 2 wrong: %+v", stats[1])
	}
	if stats[2].CoinsEarned != 0 && stats[2].QuizzesTaken != 0 {
		t.Fatalf("empty day not zero: %+v", stats[2])
	}
}

func TestStatsDayByDayMatchesWholeRange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	seedStatsHistory(t, env)

	whole, err := env.stats.StatsFor(ctx, "u1", "2024-06-01", "2024-06-03", 0)
	if err != nil {
		t.Fatalf("whole range: %v", err)
	}

	var stitched []domain.DailyStat
	for d := domain.Day("2024-06-01"); !d.After("2024-06-03"); d = d.Next() {
		day, err := env.stats.StatsFor(ctx, "u1", d, d, 0)
		if err != nil {
			t.Fatalf("day %s: %v", d, err)
		}
		stitched = append(stitched, day...)
	}

	if !reflect.DeepEqual(whole, stitched) {
		t.Fatalf("day-by-day disagrees with whole range:\nwhole:    %+v\nstitched: %+v", whole, stitched)
	}
}

func TestStatsTimezoneOffsetShiftsDay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	// 23:30 UTC is already the next local day at UTC+1.
	late := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	if err := env.ledger.Append(ctx, txAt("t1", 15, domain.TxCredit, domain.TxQuiz, late)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stats, err := env.stats.StatsFor(ctx, "u1", "2024-06-01", "2024-06-02", 60)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[0].CoinsEarned != 0 {
		t.Fatalf("credit landed on June 1 at UTC+1: %+v", stats[0])
	}
	if stats[1].CoinsEarned != 15 {
		t.Fatalf("credit missing on June 2 at UTC+1: %+v", stats[1])
	}

	// Without an offset it stays on June 1.
	stats, err = env.stats.StatsFor(ctx, "u1", "2024-06-01", "2024-06-02", 0)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[0].CoinsEarned != 15 {
		t.Fatalf("credit missing on June 1 at UTC: %+v", stats[0])
	}
}

func TestSummaryBreaksDownSources(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	seedStatsHistory(t, env)

	summary, err := env.stats.Summary(ctx, "u1", "2024-06-01", "2024-06-03", 0)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CoinsEarned != 35 {
		t.Fatalf("expected 35 coins earned, got %d", summary.CoinsEarned)
	}
	if summary.QuizzesTaken != 1 {
		t.Fatalf("expected 1 quiz, got %d", summary.QuizzesTaken)
	}
	if summary.Penalties != 20 {
		t.Fatalf("expected 20 penalty coins, got %d", summary.Penalties)
	}
	want := map[domain.TransactionCategory]int{
		domain.TxQuiz:    25,
		domain.TxBonus:   10,
		domain.TxPenalty: 20,
	}
	if !reflect.DeepEqual(summary.Sources, want) {
		t.Fatalf("sources mismatch: got %v, want %v", summary.Sources, want)
	}
}

func TestStatsReversedRangeNormalized(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	seedStatsHistory(t, env)

	forward, err := env.stats.StatsFor(ctx, "u1", "2024-06-01", "2024-06-03", 0)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	reversed, err := env.stats.StatsFor(ctx, "u1", "2024-06-03", "2024-06-01", 0)
	if err != nil {
		t.Fatalf("reversed: %v", err)
	}
	if !reflect.DeepEqual(forward, reversed) {
		t.Fatal("reversed range returned different stats")
	}
}
