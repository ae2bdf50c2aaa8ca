package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is the monetary amount type used across the service.
type Money = decimal.Decimal

// WagerKind selects how a wager's target is interpreted.
type WagerKind string

const (
	KindColor  WagerKind = "color"
	KindNumber WagerKind = "number"
)

// Wager is a single stake placed by a user in a round.
// Once accepted it is never updated or removed.
type Wager struct {
	// ID is the unique identifier for the wager (UUID format).
	ID string

	RoundNumber int64
	UserID      string

	Kind WagerKind

	// Target is a color name for color wagers and a decimal slot number
	// ("0".."36") for number wagers.
	Target string

	Amount Money

	// CreatedAt is the Unix timestamp when the wager was accepted.
	CreatedAt int64
}

// TargetColor returns the wagered color, ok is false when the target is not
// one of the two payable colors.
func (w *Wager) TargetColor() (Color, bool) {
	c := Color(w.Target)
	if c == Red || c == Black {
		return c, true
	}
	return "", false
}

// TargetSlot returns the wagered slot, ok is false when the target is not an
// integer in [0, MaxSlot].
func (w *Wager) TargetSlot() (int, bool) {
	n, err := strconv.Atoi(w.Target)
	if err != nil || n < 0 || n > MaxSlot {
		return 0, false
	}
	return n, true
}

// WagerItem is one entry of a wager request before it is accepted.
type WagerItem struct {
	Kind   WagerKind
	Target string
	Amount Money
}
