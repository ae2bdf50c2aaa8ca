// Package calculator implements the fixed-odds settlement rules.
// Everything here is a pure function of its inputs.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
)

var (
	// ColorMultiplier is the total return of a winning color wager (stake + 1:1).
	ColorMultiplier = decimal.NewFromInt(2)
	// NumberMultiplier is the total return of a winning number wager (stake + 35:1).
	NumberMultiplier = decimal.NewFromInt(36)
)

// Payout computes the total return of one wager for a winning slot.
// Wagers whose target is malformed lose; they never raise an error, so a bad
// row that slipped into the ledger cannot block the settlement of a round.
func Payout(w *models.Wager, winningSlot int) (won bool, payout models.Money) {
	switch w.Kind {
	case models.KindColor:
		color, ok := w.TargetColor()
		if ok && color == models.ColorOf(winningSlot) {
			return true, w.Amount.Mul(ColorMultiplier)
		}
	case models.KindNumber:
		slot, ok := w.TargetSlot()
		if ok && slot == winningSlot {
			return true, w.Amount.Mul(NumberMultiplier)
		}
	}
	return false, decimal.Zero
}

// Delta is the balance change of a settled wager: the payout when it won,
// the forfeited stake when it lost. Stakes are only held while the round is
// unresolved, so a win adds the full payout.
func Delta(w *models.Wager, won bool, payout models.Money) models.Money {
	if won {
		return payout
	}
	return w.Amount.Neg()
}

// Settle computes the result of every wager of a finished round.
// Results are returned in wager order; the same inputs always give the same output.
func Settle(round *models.Round, wagers []*models.Wager) ([]models.SettlementResult, error) {
	if round.WinningSlot == nil {
		return nil, fmt.Errorf("round %d has no winning slot", round.Number)
	}
	slot := *round.WinningSlot
	if slot < 0 || slot > models.MaxSlot {
		return nil, fmt.Errorf("round %d winning slot %d out of range", round.Number, slot)
	}

	results := make([]models.SettlementResult, 0, len(wagers))
	for _, w := range wagers {
		if w.RoundNumber != round.Number {
			return nil, fmt.Errorf("wager %s belongs to round %d, not %d", w.ID, w.RoundNumber, round.Number)
		}
		won, payout := Payout(w, slot)
		results = append(results, models.SettlementResult{
			WagerID: w.ID,
			UserID:  w.UserID,
			Won:     won,
			Payout:  payout,
			Delta:   Delta(w, won, payout),
		})
	}
	return results, nil
}

// UserDeltas sums the result deltas per user.
func UserDeltas(results []models.SettlementResult) map[string]models.Money {
	totals := make(map[string]models.Money)
	for _, r := range results {
		totals[r.UserID] = totals[r.UserID].Add(r.Delta)
	}
	return totals
}
