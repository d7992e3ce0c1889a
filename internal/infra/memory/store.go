package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vitadash-reward-service/internal/domain"
)

// Store is the in-memory implementation of every app-level store
// interface. It backs unit tests and the no-database server mode.
type Store struct {
	mu            sync.RWMutex
	transactions  map[string][]domain.Transaction
	attempts      map[string][]domain.QuizAttempt
	attemptIndex  map[string]bool
	streaks       map[string]domain.StreakState
	ownership     map[string]map[string]bool
	notifications map[string][]domain.Notification
	users         map[string]domain.Day
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		transactions:  make(map[string][]domain.Transaction),
		attempts:      make(map[string][]domain.QuizAttempt),
		attemptIndex:  make(map[string]bool),
		streaks:       make(map[string]domain.StreakState),
		ownership:     make(map[string]map[string]bool),
		notifications: make(map[string][]domain.Notification),
		users:         make(map[string]domain.Day),
	}
}

// AppendTransaction appends one immutable ledger row.
func (s *Store) AppendTransaction(_ context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.UserID] = append(s.transactions[tx.UserID], tx)
	return nil
}

// ForEachTransaction walks a user's rows in timestamp order. A zero
// from/to leaves that side of the range open.
func (s *Store) ForEachTransaction(_ context.Context, userID string, from, to time.Time, fn func(domain.Transaction) error) error {
	s.mu.RLock()
	rows := make([]domain.Transaction, len(s.transactions[userID]))
	copy(rows, s.transactions[userID])
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
	for _, tx := range rows {
		if !from.IsZero() && tx.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !tx.Timestamp.Before(to) {
			continue
		}
		if err := fn(tx); err != nil {
			return err
		}
	}
	return nil
}

func attemptKey(userID string, category domain.Category, day domain.Day) string {
	return userID + "|" + string(category) + "|" + string(day)
}

// SaveAttempt stores a completed attempt, keyed for the daily gate.
// Re-saving the same (user, category, day) is an idempotent no-op so a
// retried save after a durable credit cannot double-count.
func (s *Store) SaveAttempt(_ context.Context, attempt domain.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := attemptKey(attempt.UserID, attempt.Category, attempt.Date)
	if s.attemptIndex[key] {
		return nil
	}
	s.attemptIndex[key] = true
	s.attempts[attempt.UserID] = append(s.attempts[attempt.UserID], attempt)
	return nil
}

// HasAttempt reports whether a completed attempt exists for the key.
func (s *Store) HasAttempt(_ context.Context, userID string, category domain.Category, day domain.Day) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attemptIndex[attemptKey(userID, category, day)], nil
}

// AttemptsBetween returns attempts whose local day falls in [from, to].
func (s *Store) AttemptsBetween(_ context.Context, userID string, from, to domain.Day) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.QuizAttempt
	for _, a := range s.attempts[userID] {
		if a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// PerfectCount counts the user's 100%-score attempts.
func (s *Store) PerfectCount(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.attempts[userID] {
		if a.Perfect() {
			n++
		}
	}
	return n, nil
}

func streakKey(userID string, category domain.Category) string {
	return userID + "|" + string(category)
}

// Streak returns the stored streak state, zero-valued when absent.
func (s *Store) Streak(_ context.Context, userID string, category domain.Category) (domain.StreakState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streaks[streakKey(userID, category)], nil
}

// SaveStreak upserts one streak state.
func (s *Store) SaveStreak(_ context.Context, state domain.StreakState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaks[streakKey(state.UserID, state.Category)] = state
	return nil
}

// StreaksFor lists every category streak the user has.
func (s *Store) StreaksFor(_ context.Context, userID string) ([]domain.StreakState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.StreakState
	for _, category := range domain.Categories() {
		if state, ok := s.streaks[streakKey(userID, category)]; ok {
			out = append(out, state)
		}
	}
	return out, nil
}

// Owns reports badge ownership.
func (s *Store) Owns(_ context.Context, userID, badgeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownership[userID][badgeID], nil
}

// Grant adds a badge to the user's set. Granting twice is a no-op;
// badges are never revoked.
func (s *Store) Grant(_ context.Context, userID, badgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownership[userID] == nil {
		s.ownership[userID] = make(map[string]bool)
	}
	s.ownership[userID][badgeID] = true
	return nil
}

// OwnedBy lists the user's badge IDs in stable order.
func (s *Store) OwnedBy(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.ownership[userID]))
	for id := range s.ownership[userID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// SaveNotification stores one notification record.
func (s *Store) SaveNotification(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.UserID] = append(s.notifications[n.UserID], n)
	return nil
}

// NotificationsFor lists the user's notifications, newest first.
func (s *Store) NotificationsFor(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, len(s.notifications[userID]))
	copy(out, s.notifications[userID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// MarkNotificationRead flags one notification as read.
func (s *Store) MarkNotificationRead(_ context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications[userID] {
		if s.notifications[userID][i].ID == notificationID {
			s.notifications[userID][i].Read = true
			return nil
		}
	}
	return nil
}

// CreateUser registers a user ID.
func (s *Store) CreateUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; ok {
		return domain.ErrUserExists
	}
	s.users[userID] = ""
	return nil
}

// UserExists reports whether the user is registered.
func (s *Store) UserExists(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}

// LastActiveDay returns the user's last recorded local day.
func (s *Store) LastActiveDay(_ context.Context, userID string) (domain.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userID], nil
}

// SetLastActiveDay records the user's latest local day.
func (s *Store) SetLastActiveDay(_ context.Context, userID string, day domain.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = day
	return nil
}
