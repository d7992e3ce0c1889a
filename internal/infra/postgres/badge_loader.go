package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"vitadash-reward-service/internal/domain"
)

// BadgeLoader loads the badge catalog JSONB from Postgres. It sits
// behind the Redis catalog cache in production.
type BadgeLoader struct {
	pool *pgxpool.Pool
}

// NewBadgeLoader wraps a pgx pool.
func NewBadgeLoader(pool *pgxpool.Pool) *BadgeLoader {
	return &BadgeLoader{pool: pool}
}

// LoadBadges reads every badge row.
func (l *BadgeLoader) LoadBadges(ctx context.Context) ([]domain.Badge, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM badges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	defer rows.Close()

	var out []domain.Badge
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		var badge domain.Badge
		if err := json.Unmarshal(raw, &badge); err != nil {
			return nil, fmt.Errorf("unmarshal badge: %w", err)
		}
		out = append(out, badge)
	}
	return out, rows.Err()
}
