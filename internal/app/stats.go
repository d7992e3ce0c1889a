package app

import (
	"context"
	"time"

	"vitadash-reward-service/internal/domain"
)

// StatsAggregator derives daily analytics rollups by replaying the
// ledger and attempt history. It holds no state of its own: querying a
// range day by day and querying it whole must agree.
type StatsAggregator struct {
	ledger   *Ledger
	attempts AttemptStore
}

// NewStatsAggregator builds the aggregator.
func NewStatsAggregator(ledger *Ledger, attempts AttemptStore) *StatsAggregator {
	return &StatsAggregator{ledger: ledger, attempts: attempts}
}

// StatsSummary totals a range for the dashboard's overview cards and
// the coin-sources chart.
type StatsSummary struct {
	CoinsEarned  int                                `json:"coinsEarned"`
	QuizzesTaken int                                `json:"quizzesTaken"`
	Penalties    int                                `json:"penalties"`
	Sources      map[domain.TransactionCategory]int `json:"sources"`
}

// StatsFor returns one DailyStat per local day in [from, to],
// inclusive, in chronological order. offsetMinutes fixes which local
// day each transaction instant belongs to, using the same rule as the
// eligibility gate and streak tracker.
func (a *StatsAggregator) StatsFor(ctx context.Context, userID string, from, to domain.Day, offsetMinutes int) ([]domain.DailyStat, error) {
	if to.Before(from) {
		from, to = to, from
	}

	byDay := make(map[domain.Day]*domain.DailyStat)
	var days []domain.Day
	for d := from; !d.After(to); d = d.Next() {
		byDay[d] = &domain.DailyStat{Date: d}
		days = append(days, d)
	}

	offset := time.Duration(offsetMinutes) * time.Minute
	windowFrom := from.Time().Add(-offset)
	windowTo := to.Next().Time().Add(-offset)

	txs, err := a.ledger.TransactionsFor(ctx, userID, windowFrom, windowTo)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		stat, ok := byDay[domain.DayOf(tx.Timestamp, offsetMinutes)]
		if !ok {
			continue
		}
		stat.Transactions = append(stat.Transactions, tx)
		if tx.Type == domain.TxCredit {
			stat.CoinsEarned += tx.Amount
		} else if tx.Category == domain.TxPenalty {
			stat.Penalties += tx.Amount
		}
	}

	attempts, err := a.attempts.AttemptsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	for _, attempt := range attempts {
		if stat, ok := byDay[attempt.Date]; ok {
			stat.QuizzesTaken++
		}
	}

	out := make([]domain.DailyStat, 0, len(days))
	for _, d := range days {
		out = append(out, *byDay[d])
	}
	return out, nil
}

// Summary folds a range of daily stats into totals plus a breakdown of
// credited coins by source category.
func (a *StatsAggregator) Summary(ctx context.Context, userID string, from, to domain.Day, offsetMinutes int) (StatsSummary, error) {
	stats, err := a.StatsFor(ctx, userID, from, to, offsetMinutes)
	if err != nil {
		return StatsSummary{}, err
	}

	summary := StatsSummary{Sources: make(map[domain.TransactionCategory]int)}
	for _, day := range stats {
		summary.CoinsEarned += day.CoinsEarned
		summary.QuizzesTaken += day.QuizzesTaken
		summary.Penalties += day.Penalties
		for _, tx := range day.Transactions {
			if tx.Type == domain.TxCredit {
				summary.Sources[tx.Category] += tx.Amount
			} else if tx.Category == domain.TxPenalty {
				summary.Sources[domain.TxPenalty] += tx.Amount
			}
		}
	}
	return summary, nil
}
