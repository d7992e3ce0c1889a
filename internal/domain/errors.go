package domain

import "errors"

var (
	// ErrInsufficientFunds is returned when a debit would push a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount is returned for zero or negative transaction amounts.
	ErrInvalidAmount = errors.New("transaction amount must be positive")
	// ErrAlreadyCompletedToday is returned when a category was already played this local day.
	ErrAlreadyCompletedToday = errors.New("quiz already completed today")
	// ErrAlreadyFinished is returned when finish is called twice on one session.
	ErrAlreadyFinished = errors.New("quiz session already finished")
	// ErrSessionNotFound is returned when a quiz session has not been started.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuestionNotFound indicates a submitted question index is out of range.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option ID is not part of the question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrBadgeNotFound indicates an unknown badge ID.
	ErrBadgeNotFound = errors.New("badge not found")
	// ErrNotPurchasable is returned when buying an achievement-only badge.
	ErrNotPurchasable = errors.New("badge is not purchasable")
	// ErrAlreadyOwned is returned when the user already owns the badge.
	ErrAlreadyOwned = errors.New("badge already owned")
	// ErrUnknownCategory indicates an unrecognized quiz category.
	ErrUnknownCategory = errors.New("unknown quiz category")
	// ErrUserExists is returned when registering an already-known user.
	ErrUserExists = errors.New("user already registered")
	// ErrUserNotFound is returned for operations on an unregistered user.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreUnavailable marks a transient storage failure. Reads may be
	// retried; mutations must not be retried blindly.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvariantViolation means a cached balance disagrees with ledger
	// replay. Writes for the user are fenced until reconciled by hand.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)
