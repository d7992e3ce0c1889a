package app

import (
	"context"

	"vitadash-reward-service/internal/domain"
)

// Gate enforces the one-attempt-per-category-per-local-day rule.
type Gate struct {
	attempts AttemptStore
}

// NewGate builds the eligibility gate over the attempt history.
func NewGate(attempts AttemptStore) *Gate {
	return &Gate{attempts: attempts}
}

// CanAttempt reports whether the user may start a quiz in the category
// on the given local day: true iff no completed attempt exists yet.
func (g *Gate) CanAttempt(ctx context.Context, userID string, category domain.Category, day domain.Day) (bool, error) {
	done, err := g.attempts.HasAttempt(ctx, userID, category, day)
	if err != nil {
		return false, err
	}
	return !done, nil
}
