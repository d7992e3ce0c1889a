package memory

import (
	"context"

	"vitadash-reward-service/internal/domain"
)

// Catalog is a static in-memory badge table, loaded once and treated
// as immutable afterwards.
type Catalog struct {
	badges []domain.Badge
	byID   map[string]domain.Badge
}

// NewCatalog builds a catalog from a fixed badge list.
func NewCatalog(badges []domain.Badge) *Catalog {
	byID := make(map[string]domain.Badge, len(badges))
	for _, b := range badges {
		byID[b.ID] = b
	}
	return &Catalog{badges: badges, byID: byID}
}

// Badges returns the full catalog.
func (c *Catalog) Badges(_ context.Context) ([]domain.Badge, error) {
	out := make([]domain.Badge, len(c.badges))
	copy(out, c.badges)
	return out, nil
}

// Badge looks up one badge by ID.
func (c *Catalog) Badge(_ context.Context, badgeID string) (domain.Badge, error) {
	badge, ok := c.byID[badgeID]
	if !ok {
		return domain.Badge{}, domain.ErrBadgeNotFound
	}
	return badge, nil
}

// DefaultBadges is the stock VitaDash catalog: three purchasable
// cosmetics and four achievement badges.
func DefaultBadges() []domain.Badge {
	return []domain.Badge{
		{ID: "bronze-star", Name: "Bronze Star", Description: "A shiny star for your collection.", Icon: "star", Color: "amber", Price: 50},
		{ID: "silver-bolt", Name: "Silver Bolt", Description: "Show off your quick thinking.", Icon: "zap", Color: "slate", Price: 150},
		{ID: "golden-crown", Name: "Golden Crown", Description: "The ultimate status symbol.", Icon: "crown", Color: "yellow", Price: 300},
		{ID: "first-perfect", Name: "Sharpshooter", Description: "Score 100% on a quiz.", Icon: "target", Color: "red", Requirement: &domain.Requirement{Type: domain.RequirePerfect, Value: 1}},
		{ID: "perfect-five", Name: "Perfectionist", Description: "Score 100% on five quizzes.", Icon: "award", Color: "purple", Requirement: &domain.Requirement{Type: domain.RequirePerfect, Value: 5}},
		{ID: "week-warrior", Name: "Week Warrior", Description: "Keep a 7-day streak in any category.", Icon: "trophy", Color: "blue", Requirement: &domain.Requirement{Type: domain.RequireStreak, Value: 7}},
		{ID: "coin-collector", Name: "Coin Collector", Description: "Earn 1000 coins in total.", Icon: "coins", Color: "green", Requirement: &domain.Requirement{Type: domain.RequireCoins, Value: 1000}},
	}
}
