package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered player account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique), used for login.
	Email string

	// Username is the display name.
	Username string

	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string

	// Balance is the authoritative balance. It never goes below zero.
	Balance Money

	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and the given starting balance.
func NewUser(email, username, passwordHash string, balance Money) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Balance:      balance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// EntryKind classifies a balance journal row.
type EntryKind string

const (
	EntryDeposit    EntryKind = "deposit"
	EntrySettlement EntryKind = "settlement"
	EntryAdjustment EntryKind = "adjustment"
)

// BalanceEntry records one applied balance change.
type BalanceEntry struct {
	ID     int64
	UserID string
	Kind   EntryKind

	// Delta is the requested change; Applied is what actually moved after
	// clamping at zero.
	Delta   Money
	Applied Money

	BalanceAfter Money

	// RoundNumber is set for settlement entries.
	RoundNumber int64

	// Key is unique per user; a second change with the same key is not applied.
	Key string

	CreatedAt int64
}
