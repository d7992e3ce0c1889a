package app

import "sync"

// UserLocks linearizes all mutating operations for one user while
// letting different users proceed in parallel. The ledger and the
// purchase engine share one instance so a purchase (debit + grant)
// is a single critical section.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewUserLocks builds an empty lock table.
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the per-user mutex and returns its unlock function.
func (l *UserLocks) Lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
