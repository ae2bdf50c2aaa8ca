package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
)

// Stats aggregates the wagers of one round. results may be nil for rounds
// that have not finished; TotalPayout is then zero.
func Stats(wagers []*models.Wager, results []models.SettlementResult) models.RoundStats {
	stats := models.RoundStats{
		TotalAmount: decimal.Zero,
		TotalPayout: decimal.Zero,
	}
	players := make(map[string]struct{})

	for _, w := range wagers {
		stats.TotalWagers++
		stats.TotalAmount = stats.TotalAmount.Add(w.Amount)
		switch w.Kind {
		case models.KindColor:
			stats.ColorWagers++
		case models.KindNumber:
			stats.NumberWagers++
		}
		players[w.UserID] = struct{}{}
		if w.CreatedAt > stats.LastWagerAt {
			stats.LastWagerAt = w.CreatedAt
		}
	}
	stats.Players = len(players)

	for _, r := range results {
		stats.TotalPayout = stats.TotalPayout.Add(r.Payout)
	}
	return stats
}
