package game

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mmynk/roulette/internal/calculator"
	"github.com/mmynk/roulette/internal/models"
)

// maxAmountPlaces is the number of decimal places an amount may carry.
const maxAmountPlaces = 2

// PlaceWager validates and records a single wager. Checks run in order:
// the round exists, it is open, the amount is positive, the target fits the
// kind, and the user's available funds cover the amount.
func (e *Engine) PlaceWager(ctx context.Context, number int64, userID string, item models.WagerItem) (*models.Wager, error) {
	wagers, err := e.PlaceWagers(ctx, number, userID, []models.WagerItem{item})
	if err != nil {
		return nil, err
	}
	return wagers[0], nil
}

// PlaceWagers records a batch of wagers for one user. The batch is
// accepted or rejected as a whole; the funds check covers the batch total.
func (e *Engine) PlaceWagers(ctx context.Context, number int64, userID string, items []models.WagerItem) ([]*models.Wager, error) {
	if userID == "" {
		return nil, e.reject("wager", fmt.Errorf("user id is required: %w", ErrInvalidArgument))
	}

	round, unlock, err := e.lockRound(ctx, number)
	if err != nil {
		return nil, e.reject("wager", err)
	}
	defer unlock()

	if round.Status != models.RoundOpen {
		return nil, e.reject("wager", fmt.Errorf("round %d is %s: %w", number, round.Status, ErrRoundNotOpen))
	}
	if len(items) == 0 {
		return nil, e.reject("wager", fmt.Errorf("no wagers given: %w", ErrInvalidWager))
	}

	wagers := make([]*models.Wager, len(items))
	for i, item := range items {
		w, err := newWager(number, userID, item)
		if err != nil {
			return nil, e.reject("wager", fmt.Errorf("item %d: %w", i, err))
		}
		wagers[i] = w
	}

	unlockUser := e.users.Lock(userID)
	defer unlockUser()

	if err := e.store.CreateWagers(ctx, wagers); err != nil {
		return nil, e.reject("wager", roundError(notFound(err), number, ErrRoundNotOpen))
	}

	for _, w := range wagers {
		slog.Info("Wager accepted",
			"wager_id", w.ID,
			"round", number,
			"user_id", userID,
			"kind", w.Kind,
			"target", w.Target,
			"amount", w.Amount.String(),
		)
	}
	e.notify(func(o Observer) { o.WagersPlaced(wagers) })
	return wagers, nil
}

// newWager checks the amount and then the kind/target shape, and returns
// the wager with its target in canonical form.
func newWager(number int64, userID string, item models.WagerItem) (*models.Wager, error) {
	if !item.Amount.IsPositive() {
		return nil, fmt.Errorf("amount %s must be positive: %w", item.Amount, ErrInvalidWager)
	}
	if !item.Amount.Equal(item.Amount.Truncate(maxAmountPlaces)) {
		return nil, fmt.Errorf("amount %s has more than %d decimal places: %w", item.Amount, maxAmountPlaces, ErrInvalidWager)
	}

	target, err := canonicalTarget(item.Kind, item.Target)
	if err != nil {
		return nil, err
	}
	return &models.Wager{
		RoundNumber: number,
		UserID:      userID,
		Kind:        item.Kind,
		Target:      target,
		Amount:      item.Amount,
	}, nil
}

func canonicalTarget(kind models.WagerKind, target string) (string, error) {
	switch kind {
	case models.KindColor:
		c := models.Color(target)
		if c != models.Red && c != models.Black {
			return "", fmt.Errorf("color target %q must be red or black: %w", target, ErrInvalidWager)
		}
		return target, nil
	case models.KindNumber:
		slot, err := strconv.Atoi(target)
		if err != nil || slot < 0 || slot > models.MaxSlot {
			return "", fmt.Errorf("number target %q must be an integer in [0,%d]: %w", target, models.MaxSlot, ErrInvalidWager)
		}
		return strconv.Itoa(slot), nil
	}
	return "", fmt.Errorf("unknown wager kind %q: %w", kind, ErrInvalidWager)
}

// ValidateItem reports whether an item would pass the amount and shape checks.
func ValidateItem(item models.WagerItem) error {
	_, err := newWager(0, "", item)
	return err
}

// GetWager returns a wager by ID.
func (e *Engine) GetWager(ctx context.Context, id string) (*models.Wager, error) {
	w, err := e.store.GetWager(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return w, nil
}

// WagerResult returns the settlement result of a wager, or nil while its
// round is unresolved.
func (e *Engine) WagerResult(ctx context.Context, w *models.Wager) (*models.SettlementResult, error) {
	round, err := e.GetRound(ctx, w.RoundNumber)
	if err != nil {
		return nil, err
	}
	if round.WinningSlot == nil {
		return nil, nil
	}
	results, err := calculator.Settle(round, []*models.Wager{w})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// UserWagers returns a user's wagers, newest first.
func (e *Engine) UserWagers(ctx context.Context, userID string) ([]*models.Wager, error) {
	return e.store.ListWagersByUser(ctx, userID)
}
