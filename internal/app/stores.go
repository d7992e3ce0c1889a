package app

import (
	"context"
	"time"

	"vitadash-reward-service/internal/domain"
)

// TransactionStore is the append-only ledger log. Implementations must
// never mutate or delete appended rows.
type TransactionStore interface {
	AppendTransaction(ctx context.Context, tx domain.Transaction) error
	// ForEachTransaction streams a user's transactions ordered by
	// timestamp ascending. A zero from/to means unbounded on that side.
	// The walk is restartable: calling it again replays from the start.
	ForEachTransaction(ctx context.Context, userID string, from, to time.Time, fn func(domain.Transaction) error) error
}

// AttemptStore persists completed quiz attempts.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.QuizAttempt) error
	HasAttempt(ctx context.Context, userID string, category domain.Category, day domain.Day) (bool, error)
	AttemptsBetween(ctx context.Context, userID string, from, to domain.Day) ([]domain.QuizAttempt, error)
	PerfectCount(ctx context.Context, userID string) (int, error)
}

// StreakStore persists per-category streak state.
type StreakStore interface {
	Streak(ctx context.Context, userID string, category domain.Category) (domain.StreakState, error)
	SaveStreak(ctx context.Context, state domain.StreakState) error
	StreaksFor(ctx context.Context, userID string) ([]domain.StreakState, error)
}

// BadgeCatalog loads the read-mostly badge table. Implementations may
// cache; the catalog is immutable between (re)loads.
type BadgeCatalog interface {
	Badges(ctx context.Context) ([]domain.Badge, error)
	Badge(ctx context.Context, badgeID string) (domain.Badge, error)
}

// OwnershipStore is the append-only userID -> badge set relation.
type OwnershipStore interface {
	Owns(ctx context.Context, userID, badgeID string) (bool, error)
	Grant(ctx context.Context, userID, badgeID string) error
	OwnedBy(ctx context.Context, userID string) ([]string, error)
}

// NotificationStore persists dispatched notifications.
type NotificationStore interface {
	SaveNotification(ctx context.Context, n domain.Notification) error
	NotificationsFor(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}

// UserStore tracks registration and the last local day a user was
// active, which drives login bonuses and missed-day penalties.
type UserStore interface {
	CreateUser(ctx context.Context, userID string) error
	UserExists(ctx context.Context, userID string) (bool, error)
	LastActiveDay(ctx context.Context, userID string) (domain.Day, error)
	SetLastActiveDay(ctx context.Context, userID string, day domain.Day) error
}

// BalanceCache holds derived wallet balances. It is advisory: the
// ledger replay remains the source of truth and drift is surfaced as
// an invariant violation, never silently corrected.
type BalanceCache interface {
	Balance(ctx context.Context, userID string) (int, bool, error)
	SetBalance(ctx context.Context, userID string, balance int) error
	DropBalance(ctx context.Context, userID string) error
}

// Clock supplies the single time source shared by the eligibility
// gate, streak tracker and aggregator.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the production clock.
var SystemClock Clock = ClockFunc(time.Now)
