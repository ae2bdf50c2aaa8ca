package game

import (
	"errors"
	"fmt"

	"github.com/mmynk/roulette/internal/storage"
)

var (
	// ErrInvalidState is returned for an illegal round transition.
	ErrInvalidState = errors.New("invalid round state")
	// ErrRoundNotOpen is returned when a wager targets a round outside its open window.
	ErrRoundNotOpen = errors.New("round is not open for wagers")
	// ErrInvalidWager is returned for a malformed kind, target or amount.
	ErrInvalidWager = errors.New("invalid wager")
	// ErrInsufficientFunds is returned when available funds cannot cover a wager.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConflict is returned when a table already has an active round.
	ErrConflict = errors.New("table already has an active round")
	// ErrRoundNotFound is returned for unknown round numbers.
	ErrRoundNotFound = errors.New("round not found")
	// ErrNotFound is returned for unknown wagers and users.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for malformed balance requests.
	ErrInvalidArgument = errors.New("invalid argument")
)

// roundError maps storage errors of round operations onto engine errors.
// stale is the engine error a status mismatch turns into.
func roundError(err error, number int64, stale error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("round %d: %w", number, ErrRoundNotFound)
	case errors.Is(err, storage.ErrStaleState):
		return fmt.Errorf("round %d: %w", number, stale)
	case errors.Is(err, storage.ErrActiveRound):
		return fmt.Errorf("%v: %w", err, ErrConflict)
	case errors.Is(err, storage.ErrInsufficientFunds):
		return fmt.Errorf("%v: %w", err, ErrInsufficientFunds)
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	return err
}

// reasons names each sentinel for transport across the RPC boundary.
var reasons = map[error]string{
	ErrInvalidState:      "invalid_state",
	ErrRoundNotOpen:      "round_not_open",
	ErrInvalidWager:      "invalid_wager",
	ErrInsufficientFunds: "insufficient_funds",
	ErrConflict:          "conflict",
	ErrRoundNotFound:     "round_not_found",
	ErrNotFound:          "not_found",
	ErrInvalidArgument:   "invalid_argument",
}

// Reason returns the stable name of the sentinel err wraps, or "internal".
func Reason(err error) string {
	for sentinel, reason := range reasons {
		if errors.Is(err, sentinel) {
			return reason
		}
	}
	return "internal"
}

// FromReason returns the sentinel named by reason, or nil if unknown.
func FromReason(reason string) error {
	for sentinel, r := range reasons {
		if r == reason {
			return sentinel
		}
	}
	return nil
}
