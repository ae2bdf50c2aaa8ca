// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
)

var (
	// ErrNotFound is returned when a round, wager or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStaleState is returned when a conditional round update finds the
	// round in a different status than required.
	ErrStaleState = errors.New("round is not in the expected state")
	// ErrActiveRound is returned when a table already has an open or closed round.
	ErrActiveRound = errors.New("table already has an active round")
	// ErrInsufficientFunds is returned when the available balance cannot
	// cover new wagers.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrEmailExists is returned when a user with the same email exists.
	ErrEmailExists = errors.New("email already registered")
)

// Change is a single balance change to apply idempotently.
type Change struct {
	UserID      string
	Kind        models.EntryKind
	Delta       models.Money
	RoundNumber int64

	// Key identifies the change per user. A change whose key was already
	// applied is skipped and reported as not applied.
	Key string
}

// Store defines the persistence contract of the round and wager engine.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the engine.
type Store interface {
	RoundStore
	WagerStore
	BalanceStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// RoundStore persists rounds. Status updates are conditional so a stale
// caller can never move a round backwards or twice.
type RoundStore interface {
	// CreateRound opens a new round on the table and assigns the next number.
	// Returns ErrActiveRound if the table has an open or closed round.
	CreateRound(ctx context.Context, tableID string) (*models.Round, error)

	// GetRound returns ErrNotFound for unknown numbers.
	GetRound(ctx context.Context, number int64) (*models.Round, error)

	// ActiveRound returns the open or closed round of a table, or ErrNotFound.
	ActiveRound(ctx context.Context, tableID string) (*models.Round, error)

	// ListRounds returns all rounds, newest first.
	ListRounds(ctx context.Context) ([]*models.Round, error)

	// CloseRound moves an open round to closed, or returns ErrStaleState.
	CloseRound(ctx context.Context, number int64) (*models.Round, error)

	// FinishRound moves a closed round to finished, stores the winning slot
	// and applies the settlement changes in the same transaction.
	// Returns ErrStaleState if the round is not closed.
	FinishRound(ctx context.Context, number int64, slot int, changes []Change) (*models.Round, error)
}

// WagerStore persists wagers. Wagers are append-only.
type WagerStore interface {
	// CreateWagers inserts the wagers atomically. All wagers must belong to
	// the same round and user. The round must be open (else ErrStaleState)
	// and the user's balance minus held stakes must cover the total
	// (else ErrInsufficientFunds). IDs and CreatedAt are filled in.
	CreateWagers(ctx context.Context, wagers []*models.Wager) error

	GetWager(ctx context.Context, id string) (*models.Wager, error)

	// ListWagersByRound returns wagers in acceptance order.
	ListWagersByRound(ctx context.Context, number int64) ([]*models.Wager, error)

	// ListWagersByUser returns the user's wagers, newest first.
	ListWagersByUser(ctx context.Context, userID string) ([]*models.Wager, error)

	// HeldAmount sums the stakes of the user's wagers in unresolved rounds.
	HeldAmount(ctx context.Context, userID string) (models.Money, error)
}

// BalanceStore reads and mutates authoritative balances.
type BalanceStore interface {
	GetBalance(ctx context.Context, userID string) (models.Money, error)

	// ApplyChange applies the change clamped at zero and journals it.
	// It returns the balance after the call and whether the change was applied
	// (false when its key was seen before).
	ApplyChange(ctx context.Context, c Change) (models.Money, bool, error)

	// ListBalanceEntries returns the user's journal, newest first.
	ListBalanceEntries(ctx context.Context, userID string) ([]*models.BalanceEntry, error)
}

// UserStore persists player accounts.
type UserStore interface {
	// CreateUser returns ErrEmailExists for duplicate emails.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// Clamp returns the balance after applying delta, floored at zero, and the
// change that was actually applied.
func Clamp(balance, delta models.Money) (after, applied models.Money) {
	after = balance.Add(delta)
	if after.IsNegative() {
		after = decimal.Zero
	}
	return after, after.Sub(balance)
}
