package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/roulette/internal/calculator"
	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/storage"
)

// Spin is the result of resolving a round.
type Spin struct {
	Round   *models.Round
	Results []models.SettlementResult
}

// RoundSummary is a round with its optional aggregate stats.
type RoundSummary struct {
	Round *models.Round
	Stats *models.RoundStats
}

// OpenRound creates a new open round on the table.
// Returns ErrConflict if the table already has an open or closed round.
func (e *Engine) OpenRound(ctx context.Context, tableID string) (*models.Round, error) {
	if tableID == "" {
		return nil, e.reject("open", fmt.Errorf("table id is required: %w", ErrInvalidArgument))
	}
	unlock := e.tables.Lock(tableID)
	defer unlock()

	round, err := e.store.CreateRound(ctx, tableID)
	if err != nil {
		return nil, e.reject("open", roundError(err, 0, ErrInvalidState))
	}

	slog.Info("Round opened", "round", round.Number, "table_id", tableID)
	e.notify(func(o Observer) { o.RoundOpened(round) })
	return round, nil
}

// lockRound loads a round and holds its table lock.
func (e *Engine) lockRound(ctx context.Context, number int64) (*models.Round, func(), error) {
	round, err := e.store.GetRound(ctx, number)
	if err != nil {
		return nil, nil, roundError(err, number, ErrInvalidState)
	}
	unlock := e.tables.Lock(round.TableID)

	// Reload under the lock; the status may have moved while waiting.
	round, err = e.store.GetRound(ctx, number)
	if err != nil {
		unlock()
		return nil, nil, roundError(err, number, ErrInvalidState)
	}
	return round, unlock, nil
}

// CloseRound stops accepting wagers. Only an open round can be closed.
func (e *Engine) CloseRound(ctx context.Context, number int64) (*models.Round, error) {
	round, unlock, err := e.lockRound(ctx, number)
	if err != nil {
		return nil, e.reject("close", err)
	}
	defer unlock()

	if round.Status != models.RoundOpen {
		return nil, e.reject("close", fmt.Errorf("round %d is %s: %w", number, round.Status, ErrInvalidState))
	}
	round, err = e.store.CloseRound(ctx, number)
	if err != nil {
		return nil, e.reject("close", roundError(err, number, ErrInvalidState))
	}

	slog.Info("Round closed", "round", number, "table_id", round.TableID)
	e.notify(func(o Observer) { o.RoundClosed(round) })
	return round, nil
}

// SpinRound draws the outcome of a closed round, settles its wagers and
// credits the results. The draw happens once; a finished round cannot be
// spun again.
func (e *Engine) SpinRound(ctx context.Context, number int64) (*Spin, error) {
	round, unlock, err := e.lockRound(ctx, number)
	if err != nil {
		return nil, e.reject("spin", err)
	}
	defer unlock()

	if round.Status != models.RoundClosed {
		return nil, e.reject("spin", fmt.Errorf("round %d is %s: %w", number, round.Status, ErrInvalidState))
	}

	outcome, err := e.wheel.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve round %d: %w", number, err)
	}

	wagers, err := e.store.ListWagersByRound(ctx, number)
	if err != nil {
		return nil, err
	}

	resolved := *round
	resolved.WinningSlot = &outcome.Slot
	results, err := calculator.Settle(&resolved, wagers)
	if err != nil {
		return nil, err
	}

	finished, err := e.store.FinishRound(ctx, number, outcome.Slot, settlementChanges(number, results))
	if err != nil {
		return nil, e.reject("spin", roundError(err, number, ErrInvalidState))
	}

	slog.Info("Round finished",
		"round", number,
		"table_id", finished.TableID,
		"slot", outcome.Slot,
		"color", outcome.Color,
		"wagers", len(results),
	)
	for userID, net := range calculator.UserDeltas(results) {
		slog.Debug("Player settled", "round", number, "user_id", userID, "net", net.String())
	}
	e.notify(func(o Observer) { o.RoundFinished(finished, results) })
	return &Spin{Round: finished, Results: results}, nil
}

// ResettleRound recomputes the settlement of a finished round from its
// stored outcome and applies any credit that is missing. Credits already
// applied are skipped, so calling it repeatedly never pays twice.
func (e *Engine) ResettleRound(ctx context.Context, number int64) (*Spin, int, error) {
	round, unlock, err := e.lockRound(ctx, number)
	if err != nil {
		return nil, 0, e.reject("resettle", err)
	}
	defer unlock()

	if round.Status != models.RoundFinished {
		return nil, 0, e.reject("resettle", fmt.Errorf("round %d is %s: %w", number, round.Status, ErrInvalidState))
	}
	results, err := e.results(ctx, round)
	if err != nil {
		return nil, 0, err
	}

	applied := 0
	for _, c := range settlementChanges(number, results) {
		_, ok, err := e.store.ApplyChange(ctx, c)
		if err != nil {
			return nil, applied, fmt.Errorf("failed to re-apply %s: %w", c.Key, err)
		}
		if ok {
			applied++
		}
	}
	if applied > 0 {
		slog.Warn("Round resettled with missing credits", "round", number, "applied", applied)
	}
	return &Spin{Round: round, Results: results}, applied, nil
}

func settlementChanges(number int64, results []models.SettlementResult) []storage.Change {
	changes := make([]storage.Change, len(results))
	for i, r := range results {
		changes[i] = storage.Change{
			UserID:      r.UserID,
			Kind:        models.EntrySettlement,
			Delta:       r.Delta,
			RoundNumber: number,
			Key:         models.SettlementKey(r.WagerID),
		}
	}
	return changes
}

// results recomputes the settlement of a round. Nil for unfinished rounds.
func (e *Engine) results(ctx context.Context, round *models.Round) ([]models.SettlementResult, error) {
	if round.Status != models.RoundFinished {
		return nil, nil
	}
	wagers, err := e.store.ListWagersByRound(ctx, round.Number)
	if err != nil {
		return nil, err
	}
	return calculator.Settle(round, wagers)
}

// GetRound returns a round by number.
func (e *Engine) GetRound(ctx context.Context, number int64) (*models.Round, error) {
	round, err := e.store.GetRound(ctx, number)
	if err != nil {
		return nil, roundError(err, number, ErrInvalidState)
	}
	return round, nil
}

// ActiveRound returns the open or closed round of a table.
func (e *Engine) ActiveRound(ctx context.Context, tableID string) (*models.Round, error) {
	round, err := e.store.ActiveRound(ctx, tableID)
	if err != nil {
		return nil, notFound(err)
	}
	return round, nil
}

// ListRounds returns all rounds, newest first, with stats when requested.
func (e *Engine) ListRounds(ctx context.Context, includeStats bool) ([]RoundSummary, error) {
	rounds, err := e.store.ListRounds(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]RoundSummary, len(rounds))
	for i, round := range rounds {
		summaries[i].Round = round
		if !includeStats {
			continue
		}
		wagers, err := e.store.ListWagersByRound(ctx, round.Number)
		if err != nil {
			return nil, err
		}
		var results []models.SettlementResult
		if round.Status == models.RoundFinished {
			if results, err = calculator.Settle(round, wagers); err != nil {
				return nil, err
			}
		}
		stats := calculator.Stats(wagers, results)
		summaries[i].Stats = &stats
	}
	return summaries, nil
}

// RoundWagers returns the wagers of a round in acceptance order, and their
// settlement results once the round finished.
func (e *Engine) RoundWagers(ctx context.Context, number int64) ([]*models.Wager, []models.SettlementResult, error) {
	round, err := e.GetRound(ctx, number)
	if err != nil {
		return nil, nil, err
	}
	wagers, err := e.store.ListWagersByRound(ctx, number)
	if err != nil {
		return nil, nil, err
	}
	if round.Status != models.RoundFinished {
		return wagers, nil, nil
	}
	results, err := calculator.Settle(round, wagers)
	if err != nil {
		return nil, nil, err
	}
	return wagers, results, nil
}
