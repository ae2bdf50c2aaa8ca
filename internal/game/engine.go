// Package game runs the round lifecycle and wager ledger on top of a
// storage.Store.
//
// Rounds move open -> closed -> finished, one active round per table.
// Wagers are accepted only while a round is open. Resolving a round draws
// the outcome once, settles every wager and credits the results in a single
// storage transaction.
package game

import (
	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/storage"
	"github.com/mmynk/roulette/internal/wheel"
)

// Observer is notified after state changes are committed.
// Implementations must not block.
type Observer interface {
	RoundOpened(round *models.Round)
	RoundClosed(round *models.Round)
	RoundFinished(round *models.Round, results []models.SettlementResult)
	WagersPlaced(wagers []*models.Wager)
	Rejected(op string, err error)
}

// Engine coordinates rounds, wagers and balances.
type Engine struct {
	store     storage.Store
	wheel     wheel.Generator
	observers []Observer

	// tables serializes transitions and wager submission per table,
	// users serializes funds checks per user.
	tables keyedMutex
	users  keyedMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an observer for committed state changes.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// New creates an engine drawing outcomes from gen.
func New(store storage.Store, gen wheel.Generator, opts ...Option) *Engine {
	e := &Engine{store: store, wheel: gen}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) notify(fn func(Observer)) {
	for _, o := range e.observers {
		fn(o)
	}
}

func (e *Engine) reject(op string, err error) error {
	e.notify(func(o Observer) { o.Rejected(op, err) })
	return err
}
