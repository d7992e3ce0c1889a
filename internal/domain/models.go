package domain

import "time"

// Category identifies a quiz category. Each category gates attempts
// independently and carries its own streak.
type Category string

const (
	CategoryMath        Category = "math"
	CategoryAptitude    Category = "aptitude"
	CategoryGrammar     Category = "grammar"
	CategoryProgramming Category = "programming"
)

// Categories lists every known quiz category in display order.
func Categories() []Category {
	return []Category{CategoryMath, CategoryAptitude, CategoryGrammar, CategoryProgramming}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMath, CategoryAptitude, CategoryGrammar, CategoryProgramming:
		return true
	}
	return false
}

// CategoryInfo is read-only catalog metadata for a quiz category.
type CategoryInfo struct {
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	MaxReward   int      `json:"maxReward"`
}

// TransactionType is the accounting side of a ledger entry.
type TransactionType string

const (
	TxCredit TransactionType = "credit"
	TxDebit  TransactionType = "debit"
)

// TransactionCategory is the business reason for a coin movement.
type TransactionCategory string

const (
	TxQuiz     TransactionCategory = "quiz"
	TxBonus    TransactionCategory = "bonus"
	TxWelcome  TransactionCategory = "welcome"
	TxPenalty  TransactionCategory = "penalty"
	TxPurchase TransactionCategory = "purchase"
)

// Transaction is a single immutable row in the coin ledger. Amount is
// always positive; the direction comes from Type.
type Transaction struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	Amount          int                 `json:"amount"`
	Type            TransactionType     `json:"type"`
	Category        TransactionCategory `json:"category"`
	Timestamp       time.Time           `json:"timestamp"`
	RelatedEntityID string              `json:"relatedEntityId,omitempty"`
}

// Signed returns the amount with its accounting sign applied.
func (t Transaction) Signed() int {
	if t.Type == TxDebit {
		return -t.Amount
	}
	return t.Amount
}

// Wallet is the derived coin balance for a user. It is a fold over the
// ledger, never an independent source of truth.
type Wallet struct {
	UserID  string `json:"userId"`
	Balance int    `json:"balance"`
}

// QuizAttempt records one completed quiz. At most one exists per
// (user, category, local day).
type QuizAttempt struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Category     Category  `json:"category"`
	Date         Day       `json:"date"`
	Score        int       `json:"score"`
	Questions    int       `json:"questions"`
	CoinsAwarded int       `json:"coinsAwarded"`
	CompletedAt  time.Time `json:"completedAt"`
}

// Perfect reports whether every question was answered correctly.
func (a QuizAttempt) Perfect() bool {
	return a.Questions > 0 && a.Score == a.Questions
}

// StreakState tracks consecutive-day attendance for one category.
type StreakState struct {
	UserID          string   `json:"userId"`
	Category        Category `json:"category"`
	CurrentStreak   int      `json:"currentStreak"`
	LastAttemptDate Day      `json:"lastAttemptDate,omitempty"`
}

// RequirementType classifies how an achievement badge is unlocked.
type RequirementType string

const (
	RequireStreak  RequirementType = "streak"
	RequirePerfect RequirementType = "perfect"
	RequireCoins   RequirementType = "coins"
)

// Requirement is the unlock threshold for an achievement badge.
type Requirement struct {
	Type  RequirementType `json:"type"`
	Value int             `json:"value"`
}

// Badge is a catalog entity. A badge either has a positive Price
// (purchasable) or a Requirement (achievement), never both.
type Badge struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`
	Price       int          `json:"price,omitempty"`
	Requirement *Requirement `json:"requirement,omitempty"`
}

// Purchasable reports whether the badge is bought with coins rather
// than unlocked by an achievement.
func (b Badge) Purchasable() bool {
	return b.Price > 0 && b.Requirement == nil
}

// DailyStat is a per-day rollup derived entirely from the ledger and
// attempt history.
type DailyStat struct {
	Date         Day           `json:"date"`
	CoinsEarned  int           `json:"coinsEarned"`
	QuizzesTaken int           `json:"quizzesTaken"`
	Penalties    int           `json:"penalties"`
	Transactions []Transaction `json:"transactions"`
}

// NotificationType matches the dashboard's notification center buckets.
type NotificationType string

const (
	NotifyAchievement NotificationType = "achievement"
	NotifyPenalty     NotificationType = "penalty"
	NotifyLeaderboard NotificationType = "leaderboard"
	NotifyReminder    NotificationType = "reminder"
)

// Notification is a user-facing event record.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	Timestamp time.Time        `json:"timestamp"`
}

// Option represents a possible answer for a question. The correct flag
// never leaves the server.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"-"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}
