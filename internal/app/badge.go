package app

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"vitadash-reward-service/internal/domain"
)

// BadgeEngine validates and executes badge purchases against the
// ledger and grants achievement badges when their thresholds are met.
type BadgeEngine struct {
	catalog    BadgeCatalog
	ownership  OwnershipStore
	ledger     *Ledger
	streaks    StreakStore
	attempts   AttemptStore
	dispatcher *Dispatcher
	locks      *UserLocks
	clock      Clock
}

// NewBadgeEngine wires the engine. locks must be shared with the
// ledger so the purchase debit and the ownership grant form one
// critical section per user.
func NewBadgeEngine(catalog BadgeCatalog, ownership OwnershipStore, ledger *Ledger, streaks StreakStore, attempts AttemptStore, dispatcher *Dispatcher, locks *UserLocks, clock Clock) *BadgeEngine {
	if clock == nil {
		clock = SystemClock
	}
	return &BadgeEngine{
		catalog:    catalog,
		ownership:  ownership,
		ledger:     ledger,
		streaks:    streaks,
		attempts:   attempts,
		dispatcher: dispatcher,
		locks:      locks,
		clock:      clock,
	}
}

// Catalog returns the full badge table.
func (b *BadgeEngine) Catalog(ctx context.Context) ([]domain.Badge, error) {
	return b.catalog.Badges(ctx)
}

// OwnedBy lists the badge IDs the user holds.
func (b *BadgeEngine) OwnedBy(ctx context.Context, userID string) ([]string, error) {
	return b.ownership.OwnedBy(ctx, userID)
}

// Purchase spends coins on a badge. The debit and the ownership grant
// run under the per-user lock as one unit: a rejected debit never
// grants ownership, and once the debit is durable the grant is retried
// until it lands.
func (b *BadgeEngine) Purchase(ctx context.Context, userID, badgeID string) error {
	badge, err := b.catalog.Badge(ctx, badgeID)
	if err != nil {
		return err
	}
	if !badge.Purchasable() {
		return domain.ErrNotPurchasable
	}

	unlock := b.locks.Lock(userID)
	defer unlock()

	owned, err := b.ownership.Owns(ctx, userID, badgeID)
	if err != nil {
		return err
	}
	if owned {
		return domain.ErrAlreadyOwned
	}

	tx := domain.Transaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          badge.Price,
		Type:            domain.TxDebit,
		Category:        domain.TxPurchase,
		Timestamp:       b.clock.Now(),
		RelatedEntityID: badgeID,
	}
	if err := b.ledger.appendLocked(ctx, tx); err != nil {
		return err
	}

	if err := saveWithRetry(ctx, func() error { return b.ownership.Grant(ctx, userID, badgeID) }); err != nil {
		// The debit committed; ownership is derived from its existence
		// and must not be abandoned here.
		log.Printf("badge: debit %s committed but grant of %s to %s failed, needs reconciliation: %v", tx.ID, badgeID, userID, err)
		return fmt.Errorf("grant badge %s: %w", badgeID, err)
	}
	return nil
}

// CheckAchievements grants every requirement-bearing badge whose
// threshold the user has crossed. Invoked after each finished attempt
// and each ledger credit; re-invocation is harmless since grants are
// idempotent and owned badges are skipped.
func (b *BadgeEngine) CheckAchievements(ctx context.Context, userID string) []domain.Badge {
	badges, err := b.catalog.Badges(ctx)
	if err != nil {
		log.Printf("badge: load catalog: %v", err)
		return nil
	}
	ownedIDs, err := b.ownership.OwnedBy(ctx, userID)
	if err != nil {
		log.Printf("badge: owned badges for %s: %v", userID, err)
		return nil
	}
	owned := make(map[string]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}

	var unlocked []domain.Badge
	progress := newAchievementProgress(b, userID)
	for _, badge := range badges {
		if badge.Requirement == nil || owned[badge.ID] {
			continue
		}
		met, err := progress.satisfies(ctx, *badge.Requirement)
		if err != nil {
			log.Printf("badge: evaluate %s for %s: %v", badge.ID, userID, err)
			continue
		}
		if !met {
			continue
		}
		if err := b.ownership.Grant(ctx, userID, badge.ID); err != nil {
			log.Printf("badge: grant %s to %s: %v", badge.ID, userID, err)
			continue
		}
		unlocked = append(unlocked, badge)
		if b.dispatcher != nil {
			b.dispatcher.Dispatch(ctx, userID, domain.NotifyAchievement,
				"Achievement Unlocked!",
				fmt.Sprintf("You earned the %s badge: %s", badge.Name, badge.Description))
		}
	}
	return unlocked
}

// achievementProgress lazily computes each aggregate at most once per
// check, since several badges usually share a requirement type.
type achievementProgress struct {
	engine *BadgeEngine
	userID string

	maxStreak    *int
	perfectCount *int
	coinsEarned  *int
}

func newAchievementProgress(engine *BadgeEngine, userID string) *achievementProgress {
	return &achievementProgress{engine: engine, userID: userID}
}

func (p *achievementProgress) satisfies(ctx context.Context, req domain.Requirement) (bool, error) {
	switch req.Type {
	case domain.RequireStreak:
		if p.maxStreak == nil {
			states, err := p.engine.streaks.StreaksFor(ctx, p.userID)
			if err != nil {
				return false, err
			}
			max := 0
			for _, s := range states {
				if s.CurrentStreak > max {
					max = s.CurrentStreak
				}
			}
			p.maxStreak = &max
		}
		return *p.maxStreak >= req.Value, nil
	case domain.RequirePerfect:
		if p.perfectCount == nil {
			n, err := p.engine.attempts.PerfectCount(ctx, p.userID)
			if err != nil {
				return false, err
			}
			p.perfectCount = &n
		}
		return *p.perfectCount >= req.Value, nil
	case domain.RequireCoins:
		if p.coinsEarned == nil {
			n, err := p.engine.ledger.LifetimeCredits(ctx, p.userID)
			if err != nil {
				return false, err
			}
			p.coinsEarned = &n
		}
		return *p.coinsEarned >= req.Value, nil
	default:
		return false, fmt.Errorf("unknown requirement type %q", req.Type)
	}
}
