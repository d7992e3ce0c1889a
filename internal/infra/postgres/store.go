package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"vitadash-reward-service/internal/domain"
)

// Store implements the app store interfaces over Postgres. The
// transaction log is insert-only; rollups are always derived from it.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a pgx pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// AppendTransaction inserts one ledger row.
func (s *Store) AppendTransaction(ctx context.Context, tx domain.Transaction) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO coin_transactions (id, user_id, amount, type, category, ts, related_entity_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tx.ID, tx.UserID, tx.Amount, string(tx.Type), string(tx.Category), tx.Timestamp, tx.RelatedEntityID)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// ForEachTransaction streams a user's rows ordered by timestamp. A
// zero from/to leaves that side open.
func (s *Store) ForEachTransaction(ctx context.Context, userID string, from, to time.Time, fn func(domain.Transaction) error) error {
	query := `SELECT id, user_id, amount, type, category, ts, related_entity_id
	          FROM coin_transactions WHERE user_id = $1`
	args := []interface{}{userID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND ts >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND ts < $%d", len(args))
	}
	query += " ORDER BY ts ASC, id ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tx domain.Transaction
		var txType, txCategory string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &txType, &txCategory, &tx.Timestamp, &tx.RelatedEntityID); err != nil {
			return fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = domain.TransactionType(txType)
		tx.Category = domain.TransactionCategory(txCategory)
		if err := fn(tx); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SaveAttempt upserts a completed attempt. The unique (user, category,
// day) key makes retried saves idempotent.
func (s *Store) SaveAttempt(ctx context.Context, a domain.QuizAttempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_attempts (id, user_id, category, day, score, questions, coins_awarded, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, category, day) DO NOTHING`,
		a.ID, a.UserID, string(a.Category), string(a.Date), a.Score, a.Questions, a.CoinsAwarded, a.CompletedAt)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

// HasAttempt reports whether an attempt exists for the key.
func (s *Store) HasAttempt(ctx context.Context, userID string, category domain.Category, day domain.Day) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quiz_attempts WHERE user_id = $1 AND category = $2 AND day = $3)`,
		userID, string(category), string(day)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attempt: %w", err)
	}
	return exists, nil
}

// AttemptsBetween returns attempts with local day in [from, to].
func (s *Store) AttemptsBetween(ctx context.Context, userID string, from, to domain.Day) ([]domain.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, category, day, score, questions, coins_awarded, completed_at
		 FROM quiz_attempts WHERE user_id = $1 AND day >= $2 AND day <= $3
		 ORDER BY day ASC, completed_at ASC`,
		userID, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.QuizAttempt
	for rows.Next() {
		var a domain.QuizAttempt
		var category, day string
		if err := rows.Scan(&a.ID, &a.UserID, &category, &day, &a.Score, &a.Questions, &a.CoinsAwarded, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Category = domain.Category(category)
		a.Date = domain.Day(day)
		out = append(out, a)
	}
	return out, rows.Err()
}

// PerfectCount counts 100%-score attempts.
func (s *Store) PerfectCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1 AND questions > 0 AND score = questions`,
		userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count perfect attempts: %w", err)
	}
	return n, nil
}

// Streak returns the stored streak, zero-valued if absent.
func (s *Store) Streak(ctx context.Context, userID string, category domain.Category) (domain.StreakState, error) {
	var state domain.StreakState
	var cat, day string
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, category, current_streak, last_attempt_date
		 FROM streaks WHERE user_id = $1 AND category = $2`,
		userID, string(category)).Scan(&state.UserID, &cat, &state.CurrentStreak, &day)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StreakState{}, nil
	}
	if err != nil {
		return domain.StreakState{}, fmt.Errorf("query streak: %w", err)
	}
	state.Category = domain.Category(cat)
	state.LastAttemptDate = domain.Day(day)
	return state, nil
}

// SaveStreak upserts one streak state.
func (s *Store) SaveStreak(ctx context.Context, state domain.StreakState) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO streaks (user_id, category, current_streak, last_attempt_date)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, category)
		 DO UPDATE SET current_streak = EXCLUDED.current_streak, last_attempt_date = EXCLUDED.last_attempt_date`,
		state.UserID, string(state.Category), state.CurrentStreak, string(state.LastAttemptDate))
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

// StreaksFor lists every category streak the user has.
func (s *Store) StreaksFor(ctx context.Context, userID string) ([]domain.StreakState, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, category, current_streak, last_attempt_date
		 FROM streaks WHERE user_id = $1 ORDER BY category`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query streaks: %w", err)
	}
	defer rows.Close()

	var out []domain.StreakState
	for rows.Next() {
		var state domain.StreakState
		var cat, day string
		if err := rows.Scan(&state.UserID, &cat, &state.CurrentStreak, &day); err != nil {
			return nil, fmt.Errorf("scan streak: %w", err)
		}
		state.Category = domain.Category(cat)
		state.LastAttemptDate = domain.Day(day)
		out = append(out, state)
	}
	return out, rows.Err()
}

// Owns reports badge ownership.
func (s *Store) Owns(ctx context.Context, userID, badgeID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM badge_ownership WHERE user_id = $1 AND badge_id = $2)`,
		userID, badgeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ownership: %w", err)
	}
	return exists, nil
}

// Grant adds a badge to the user's set; granting twice is a no-op.
func (s *Store) Grant(ctx context.Context, userID, badgeID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO badge_ownership (user_id, badge_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, badge_id) DO NOTHING`,
		userID, badgeID)
	if err != nil {
		return fmt.Errorf("grant badge: %w", err)
	}
	return nil
}

// OwnedBy lists the user's badge IDs.
func (s *Store) OwnedBy(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT badge_id FROM badge_ownership WHERE user_id = $1 ORDER BY badge_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query ownership: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ownership: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SaveNotification inserts one notification record.
func (s *Store) SaveNotification(ctx context.Context, n domain.Notification) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, read, ts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.Read, n.Timestamp)
	if err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

// NotificationsFor lists the user's notifications, newest first.
func (s *Store) NotificationsFor(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, type, title, message, read, ts
		 FROM notifications WHERE user_id = $1 ORDER BY ts DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Message, &n.Read, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = domain.NotificationType(kind)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags one notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND id = $2`,
		userID, notificationID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// CreateUser registers a user ID.
func (s *Store) CreateUser(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, last_active_day) VALUES ($1, '')
		 ON CONFLICT (id) DO NOTHING`,
		userID)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserExists
	}
	return nil
}

// UserExists reports whether the user is registered.
func (s *Store) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

// LastActiveDay returns the user's last recorded local day.
func (s *Store) LastActiveDay(ctx context.Context, userID string) (domain.Day, error) {
	var day string
	err := s.pool.QueryRow(ctx,
		`SELECT last_active_day FROM users WHERE id = $1`, userID).Scan(&day)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last active day: %w", err)
	}
	return domain.Day(day), nil
}

// SetLastActiveDay records the user's latest local day.
func (s *Store) SetLastActiveDay(ctx context.Context, userID string, day domain.Day) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET last_active_day = $2 WHERE id = $1`,
		userID, string(day))
	if err != nil {
		return fmt.Errorf("set last active day: %w", err)
	}
	return nil
}
