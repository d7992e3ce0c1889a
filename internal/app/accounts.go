package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"vitadash-reward-service/internal/domain"
)

// BonusConfig tunes account-level coin movements. Zero values fall
// back to the dashboard defaults.
type BonusConfig struct {
	// WelcomeBonus is credited once at registration.
	WelcomeBonus int
	// DailyLoginBonus is credited on the first login of each local day.
	DailyLoginBonus int
	// MissedDayPenalty is debited when a login finds a gap since the
	// last active day. It is clamped so the balance never goes negative.
	MissedDayPenalty int
}

func (c BonusConfig) withDefaults() BonusConfig {
	if c.WelcomeBonus <= 0 {
		c.WelcomeBonus = 500
	}
	if c.DailyLoginBonus <= 0 {
		c.DailyLoginBonus = 10
	}
	if c.MissedDayPenalty <= 0 {
		c.MissedDayPenalty = 20
	}
	return c
}

// Accounts handles registration and the daily login sweep.
type Accounts struct {
	users      UserStore
	ledger     *Ledger
	badges     *BadgeEngine
	dispatcher *Dispatcher
	locks      *UserLocks
	clock      Clock
	cfg        BonusConfig
}

// NewAccounts wires the account service.
func NewAccounts(users UserStore, ledger *Ledger, badges *BadgeEngine, dispatcher *Dispatcher, locks *UserLocks, clock Clock, cfg BonusConfig) *Accounts {
	if clock == nil {
		clock = SystemClock
	}
	return &Accounts{
		users:      users,
		ledger:     ledger,
		badges:     badges,
		dispatcher: dispatcher,
		locks:      locks,
		clock:      clock,
		cfg:        cfg.withDefaults(),
	}
}

// LoginResult reports what the daily sweep did.
type LoginResult struct {
	BonusAwarded   int `json:"bonusAwarded"`
	PenaltyApplied int `json:"penaltyApplied"`
}

// Register creates the user and credits the welcome bonus.
func (a *Accounts) Register(ctx context.Context, userID string, offsetMinutes int) error {
	if err := a.users.CreateUser(ctx, userID); err != nil {
		return err
	}

	unlock := a.locks.Lock(userID)
	tx := domain.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    a.cfg.WelcomeBonus,
		Type:      domain.TxCredit,
		Category:  domain.TxWelcome,
		Timestamp: a.clock.Now(),
	}
	err := a.ledger.appendLocked(ctx, tx)
	unlock()
	if err != nil {
		return fmt.Errorf("welcome bonus: %w", err)
	}

	today := domain.DayOf(a.clock.Now(), offsetMinutes)
	if err := a.users.SetLastActiveDay(ctx, userID, today); err != nil {
		return err
	}
	if a.badges != nil {
		a.badges.CheckAchievements(ctx, userID)
	}
	return nil
}

// Login runs the once-per-local-day sweep: credit the login bonus and,
// if days were skipped since the last activity, apply the missed-day
// penalty. Repeat logins on the same day are no-ops.
func (a *Accounts) Login(ctx context.Context, userID string, offsetMinutes int) (LoginResult, error) {
	exists, err := a.users.UserExists(ctx, userID)
	if err != nil {
		return LoginResult{}, err
	}
	if !exists {
		return LoginResult{}, domain.ErrUserNotFound
	}

	unlock := a.locks.Lock(userID)
	defer unlock()

	now := a.clock.Now()
	today := domain.DayOf(now, offsetMinutes)
	last, err := a.users.LastActiveDay(ctx, userID)
	if err != nil {
		return LoginResult{}, err
	}
	if last == today {
		return LoginResult{}, nil
	}

	var result LoginResult

	if !last.IsZero() && today.After(last.Next()) {
		balance, err := a.ledger.balanceLocked(ctx, userID)
		if err != nil {
			return LoginResult{}, err
		}
		penalty := a.cfg.MissedDayPenalty
		if penalty > balance {
			penalty = balance
		}
		if penalty > 0 {
			tx := domain.Transaction{
				ID:        uuid.NewString(),
				UserID:    userID,
				Amount:    penalty,
				Type:      domain.TxDebit,
				Category:  domain.TxPenalty,
				Timestamp: now,
			}
			if err := a.ledger.appendLocked(ctx, tx); err != nil {
				return LoginResult{}, fmt.Errorf("missed-day penalty: %w", err)
			}
			result.PenaltyApplied = penalty
			if a.dispatcher != nil {
				a.dispatcher.Dispatch(ctx, userID, domain.NotifyPenalty,
					"Streak Penalty",
					fmt.Sprintf("You missed a day and lost %d coins. Log in daily to avoid penalties!", penalty))
			}
		}
	}

	bonus := domain.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    a.cfg.DailyLoginBonus,
		Type:      domain.TxCredit,
		Category:  domain.TxBonus,
		Timestamp: now,
	}
	if err := a.ledger.appendLocked(ctx, bonus); err != nil {
		return LoginResult{}, fmt.Errorf("login bonus: %w", err)
	}
	result.BonusAwarded = a.cfg.DailyLoginBonus

	if err := a.users.SetLastActiveDay(ctx, userID, today); err != nil {
		return LoginResult{}, err
	}
	if a.badges != nil {
		a.badges.CheckAchievements(ctx, userID)
	}
	return result, nil
}
