package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/storage"
)

// Balance is a user's authoritative balance together with the stakes held
// by wagers in unresolved rounds.
type Balance struct {
	Balance   models.Money
	Held      models.Money
	Available models.Money
}

// GetBalance returns the authoritative balance of a user.
func (e *Engine) GetBalance(ctx context.Context, userID string) (*Balance, error) {
	balance, err := e.store.GetBalance(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	held, err := e.store.HeldAmount(ctx, userID)
	if err != nil {
		return nil, err
	}
	available := balance.Sub(held)
	if available.IsNegative() {
		available = decimal.Zero
	}
	return &Balance{Balance: balance, Held: held, Available: available}, nil
}

// AdjustBalance applies an authoritative delta, clamped at zero. A key that
// was already applied for the user is not applied again; the current
// balance is returned.
//
// Settlement keys are accepted only as an echo of a settled outcome: the
// wager must be the user's, its round finished, and delta its settled
// delta. The engine credits that key when the round finishes, so a valid
// echo never moves the balance.
func (e *Engine) AdjustBalance(ctx context.Context, userID string, delta models.Money, key string) (models.Money, error) {
	if key == "" {
		return models.Money{}, e.reject("adjust", fmt.Errorf("idempotency key is required: %w", ErrInvalidArgument))
	}
	if strings.HasPrefix(key, models.DepositKeyPrefix) {
		return models.Money{}, e.reject("adjust", fmt.Errorf("key %q is reserved for deposits: %w", key, ErrInvalidArgument))
	}
	if wagerID, ok := strings.CutPrefix(key, models.SettlementKeyPrefix); ok {
		if err := e.checkSettlementEcho(ctx, userID, wagerID, delta); err != nil {
			return models.Money{}, e.reject("adjust", err)
		}
	}
	return e.applyChange(ctx, storage.Change{
		UserID: userID,
		Kind:   models.EntryAdjustment,
		Delta:  delta,
		Key:    key,
	})
}

// Deposit credits a positive amount to the user.
func (e *Engine) Deposit(ctx context.Context, userID string, amount models.Money) (models.Money, error) {
	if !amount.IsPositive() {
		return models.Money{}, e.reject("deposit", fmt.Errorf("deposit %s must be positive: %w", amount, ErrInvalidArgument))
	}
	return e.applyChange(ctx, storage.Change{
		UserID: userID,
		Kind:   models.EntryDeposit,
		Delta:  amount,
		Key:    models.DepositKeyPrefix + uuid.NewString(),
	})
}

func (e *Engine) checkSettlementEcho(ctx context.Context, userID, wagerID string, delta models.Money) error {
	w, err := e.store.GetWager(ctx, wagerID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && w.UserID != userID) {
		return fmt.Errorf("settlement key names no wager of this user: %w", ErrInvalidArgument)
	}
	if err != nil {
		return err
	}
	result, err := e.WagerResult(ctx, w)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("round %d of wager %s is not settled: %w", w.RoundNumber, w.ID, ErrInvalidArgument)
	}
	if !delta.Equal(result.Delta) {
		return fmt.Errorf("delta %s does not match settled delta %s: %w", delta, result.Delta, ErrInvalidArgument)
	}
	return nil
}

func (e *Engine) applyChange(ctx context.Context, c storage.Change) (models.Money, error) {
	unlock := e.users.Lock(c.UserID)
	defer unlock()

	balance, applied, err := e.store.ApplyChange(ctx, c)
	if err != nil {
		return models.Money{}, notFound(err)
	}
	if applied {
		slog.Info("Balance changed",
			"user_id", c.UserID,
			"kind", c.Kind,
			"delta", c.Delta.String(),
			"balance", balance.String(),
		)
	} else {
		slog.Debug("Balance change already applied", "user_id", c.UserID, "key", c.Key)
	}
	return balance, nil
}

// History returns the user's balance journal, newest first.
func (e *Engine) History(ctx context.Context, userID string) ([]*models.BalanceEntry, error) {
	if _, err := e.store.GetUserByID(ctx, userID); err != nil {
		return nil, notFound(err)
	}
	return e.store.ListBalanceEntries(ctx, userID)
}
