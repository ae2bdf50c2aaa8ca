package service

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/pkg/api"
)

// timestamp converts a Unix timestamp, leaving zero values unset.
func timestamp(unix int64) *timestamppb.Timestamp {
	if unix == 0 {
		return nil
	}
	return timestamppb.New(time.Unix(unix, 0))
}

func roundToAPI(r *models.Round, stats *models.RoundStats) *api.Round {
	out := &api.Round{
		Number:       r.Number,
		TableID:      r.TableID,
		Status:       string(r.Status),
		WinningSlot:  r.WinningSlot,
		WinningColor: string(r.WinningColor()),
		CreatedAt:    timestamp(r.CreatedAt),
		ClosedAt:     timestamp(r.ClosedAt),
		FinishedAt:   timestamp(r.FinishedAt),
	}
	if stats != nil {
		out.Stats = &api.RoundStats{
			TotalWagers:  stats.TotalWagers,
			TotalAmount:  stats.TotalAmount,
			ColorWagers:  stats.ColorWagers,
			NumberWagers: stats.NumberWagers,
			Players:      stats.Players,
			LastWagerAt:  timestamp(stats.LastWagerAt),
			TotalPayout:  stats.TotalPayout,
		}
	}
	return out
}

func resultToAPI(r models.SettlementResult) *api.SettlementResult {
	return &api.SettlementResult{
		WagerID: r.WagerID,
		UserID:  r.UserID,
		Won:     r.Won,
		Payout:  r.Payout,
		Delta:   r.Delta,
	}
}

func resultsToAPI(results []models.SettlementResult) []*api.SettlementResult {
	out := make([]*api.SettlementResult, len(results))
	for i, r := range results {
		out[i] = resultToAPI(r)
	}
	return out
}

func wagerToAPI(w *models.Wager) *api.Wager {
	return &api.Wager{
		ID:          w.ID,
		RoundNumber: w.RoundNumber,
		UserID:      w.UserID,
		Kind:        string(w.Kind),
		Target:      w.Target,
		Amount:      w.Amount,
		CreatedAt:   timestamp(w.CreatedAt),
	}
}

// wagersToAPI converts wagers and attaches results when given. results must
// be in wager order, as returned by the engine.
func wagersToAPI(wagers []*models.Wager, results []models.SettlementResult) []*api.Wager {
	out := make([]*api.Wager, len(wagers))
	for i, w := range wagers {
		out[i] = wagerToAPI(w)
		if i < len(results) && results[i].WagerID == w.ID {
			out[i].Result = resultToAPI(results[i])
		}
	}
	return out
}

func userToAPI(u *models.User) *api.User {
	return &api.User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Balance:   u.Balance,
		CreatedAt: timestamp(u.CreatedAt),
	}
}

func entryToAPI(e *models.BalanceEntry) *api.BalanceEntry {
	return &api.BalanceEntry{
		ID:           e.ID,
		Kind:         string(e.Kind),
		Delta:        e.Delta,
		Applied:      e.Applied,
		BalanceAfter: e.BalanceAfter,
		RoundNumber:  e.RoundNumber,
		Key:          e.Key,
		CreatedAt:    timestamp(e.CreatedAt),
	}
}
