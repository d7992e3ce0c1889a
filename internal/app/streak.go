package app

import (
	"context"

	"vitadash-reward-service/internal/domain"
)

// StreakTracker maintains per-category consecutive-day streaks. It is
// evaluated lazily on each finished attempt; there is no decay timer.
type StreakTracker struct {
	store StreakStore
}

// NewStreakTracker builds a tracker over the given streak store.
func NewStreakTracker(store StreakStore) *StreakTracker {
	return &StreakTracker{store: store}
}

// Record updates the streak for a finished attempt on the given local
// day and returns the new state. A repeat on the same day is a no-op,
// the day after the last attempt increments, any larger gap resets to 1.
func (t *StreakTracker) Record(ctx context.Context, userID string, category domain.Category, day domain.Day) (domain.StreakState, error) {
	state, err := t.store.Streak(ctx, userID, category)
	if err != nil {
		return domain.StreakState{}, err
	}
	if state.UserID == "" {
		state = domain.StreakState{UserID: userID, Category: category}
	}

	switch {
	case state.LastAttemptDate == day:
		return state, nil
	case state.LastAttemptDate == day.Prev():
		state.CurrentStreak++
	default:
		state.CurrentStreak = 1
	}
	state.LastAttemptDate = day

	if err := t.store.SaveStreak(ctx, state); err != nil {
		return domain.StreakState{}, err
	}
	return state, nil
}

// StreaksFor returns every category streak the user has.
func (t *StreakTracker) StreaksFor(ctx context.Context, userID string) ([]domain.StreakState, error) {
	return t.store.StreaksFor(ctx, userID)
}

// Current returns the streak for one category, zero-valued if absent.
func (t *StreakTracker) Current(ctx context.Context, userID string, category domain.Category) (domain.StreakState, error) {
	state, err := t.store.Streak(ctx, userID, category)
	if err != nil {
		return domain.StreakState{}, err
	}
	if state.UserID == "" {
		state = domain.StreakState{UserID: userID, Category: category}
	}
	return state, nil
}
