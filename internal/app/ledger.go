package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"vitadash-reward-service/internal/domain"
)

// Ledger owns the append-only coin transaction log. Every balance in
// the system is a fold over this log; the cache only saves replays.
type Ledger struct {
	store TransactionStore
	cache BalanceCache
	locks *UserLocks
	clock Clock

	mu     sync.Mutex
	fenced map[string]bool
}

// NewLedger wires a ledger over the given log store. cache may be nil.
func NewLedger(store TransactionStore, cache BalanceCache, locks *UserLocks, clock Clock) *Ledger {
	if clock == nil {
		clock = SystemClock
	}
	return &Ledger{
		store:  store,
		cache:  cache,
		locks:  locks,
		clock:  clock,
		fenced: make(map[string]bool),
	}
}

// Append validates and durably appends one transaction. Debits that
// would push the balance below zero are rejected with
// ErrInsufficientFunds and leave no trace. Appends for the same user
// are linearized by the shared per-user lock.
func (l *Ledger) Append(ctx context.Context, tx domain.Transaction) error {
	unlock := l.locks.Lock(tx.UserID)
	defer unlock()
	return l.appendLocked(ctx, tx)
}

// appendLocked is the append path for callers already holding the
// user's lock (the purchase engine runs debit + grant in one section).
func (l *Ledger) appendLocked(ctx context.Context, tx domain.Transaction) error {
	if tx.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if l.isFenced(tx.UserID) {
		return domain.ErrInvariantViolation
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = l.clock.Now()
	}

	balance, err := l.balanceLocked(ctx, tx.UserID)
	if err != nil {
		return err
	}
	if tx.Type == domain.TxDebit && balance-tx.Amount < 0 {
		return domain.ErrInsufficientFunds
	}

	// Mutations are never auto-retried: a transient failure here could
	// already have committed, and a second append would double-spend.
	if err := l.store.AppendTransaction(ctx, tx); err != nil {
		return err
	}

	if l.cache != nil {
		if err := l.cache.SetBalance(ctx, tx.UserID, balance+tx.Signed()); err != nil {
			// Stale cache is worse than no cache.
			if dropErr := l.cache.DropBalance(ctx, tx.UserID); dropErr != nil {
				log.Printf("ledger: drop balance cache for %s: %v", tx.UserID, dropErr)
			}
		}
	}
	return nil
}

// BalanceOf returns the user's current coin balance.
func (l *Ledger) BalanceOf(ctx context.Context, userID string) (int, error) {
	unlock := l.locks.Lock(userID)
	defer unlock()
	return l.balanceLocked(ctx, userID)
}

func (l *Ledger) balanceLocked(ctx context.Context, userID string) (int, error) {
	if l.cache != nil {
		if balance, ok, err := l.cache.Balance(ctx, userID); err == nil && ok {
			return balance, nil
		}
	}
	balance, err := l.replay(ctx, userID)
	if err != nil {
		return 0, err
	}
	if l.cache != nil {
		if err := l.cache.SetBalance(ctx, userID, balance); err != nil {
			log.Printf("ledger: warm balance cache for %s: %v", userID, err)
		}
	}
	return balance, nil
}

// LifetimeCredits sums every credit the user ever received. Achievement
// checks for coin-based badges use this rather than the spendable balance.
func (l *Ledger) LifetimeCredits(ctx context.Context, userID string) (int, error) {
	var total int
	err := l.retryRead(ctx, func() error {
		total = 0
		return l.store.ForEachTransaction(ctx, userID, time.Time{}, time.Time{}, func(tx domain.Transaction) error {
			if tx.Type == domain.TxCredit {
				total += tx.Amount
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// TransactionsFor collects the user's transactions in a time range,
// ordered by timestamp ascending.
func (l *Ledger) TransactionsFor(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := l.retryRead(ctx, func() error {
		out = out[:0]
		return l.store.ForEachTransaction(ctx, userID, from, to, func(tx domain.Transaction) error {
			out = append(out, tx)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ForEachTransaction streams the user's transactions through fn. The
// walk is not retried: fn may have observed rows already, so transient
// failures surface to the caller, who restarts with fresh state.
func (l *Ledger) ForEachTransaction(ctx context.Context, userID string, from, to time.Time, fn func(domain.Transaction) error) error {
	return l.store.ForEachTransaction(ctx, userID, from, to, fn)
}

// VerifyBalance recomputes the balance from the log and compares it to
// the cached value. On drift the user is fenced from further writes and
// ErrInvariantViolation is returned; the mismatch is reported, never
// silently corrected.
func (l *Ledger) VerifyBalance(ctx context.Context, userID string) (int, error) {
	unlock := l.locks.Lock(userID)
	defer unlock()

	replayed, err := l.replay(ctx, userID)
	if err != nil {
		return 0, err
	}
	if l.cache != nil {
		cached, ok, err := l.cache.Balance(ctx, userID)
		if err == nil && ok && cached != replayed {
			l.fence(userID)
			log.Printf("ledger: balance drift for %s: cached=%d replayed=%d", userID, cached, replayed)
			return replayed, domain.ErrInvariantViolation
		}
	}
	return replayed, nil
}

// Unfence re-enables writes for a user after manual reconciliation.
func (l *Ledger) Unfence(ctx context.Context, userID string) {
	l.mu.Lock()
	delete(l.fenced, userID)
	l.mu.Unlock()
	if l.cache != nil {
		if err := l.cache.DropBalance(ctx, userID); err != nil {
			log.Printf("ledger: drop balance cache for %s: %v", userID, err)
		}
	}
}

func (l *Ledger) fence(userID string) {
	l.mu.Lock()
	l.fenced[userID] = true
	l.mu.Unlock()
}

func (l *Ledger) isFenced(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fenced[userID]
}

func (l *Ledger) replay(ctx context.Context, userID string) (int, error) {
	var balance int
	err := l.retryRead(ctx, func() error {
		balance = 0
		return l.store.ForEachTransaction(ctx, userID, time.Time{}, time.Time{}, func(tx domain.Transaction) error {
			balance += tx.Signed()
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

const (
	readRetries = 3
	readBackoff = 50 * time.Millisecond
)

// retryRead retries an idempotent read with linear backoff on
// transient store failures. op must reset its own accumulators.
func (l *Ledger) retryRead(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < readRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * readBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = op()
		if err == nil || !errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
	}
	return err
}
