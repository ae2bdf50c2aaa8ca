package calculator

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
)

func dec(v int64) models.Money { return decimal.NewFromInt(v) }

func finished(number int64, slot int) *models.Round {
	return &models.Round{Number: number, Status: models.RoundFinished, WinningSlot: &slot}
}

func TestPayout(t *testing.T) {
	tests := []struct {
		name       string
		wager      models.Wager
		slot       int
		wantWon    bool
		wantPayout int64
	}{
		{
			name:       "red wins on red slot",
			wager:      models.Wager{Kind: models.KindColor, Target: "red", Amount: dec(10)},
			slot:       1,
			wantWon:    true,
			wantPayout: 20,
		},
		{
			name:       "black loses on red slot",
			wager:      models.Wager{Kind: models.KindColor, Target: "black", Amount: dec(10)},
			slot:       1,
			wantPayout: 0,
		},
		{
			name:       "exact number pays 36x",
			wager:      models.Wager{Kind: models.KindNumber, Target: "17", Amount: dec(5)},
			slot:       17,
			wantWon:    true,
			wantPayout: 180,
		},
		{
			name:       "neighbouring number loses",
			wager:      models.Wager{Kind: models.KindNumber, Target: "18", Amount: dec(5)},
			slot:       17,
			wantPayout: 0,
		},
		{
			name:  "zero pays neither red",
			wager: models.Wager{Kind: models.KindColor, Target: "red", Amount: dec(10)},
			slot:  0,
		},
		{
			name:  "zero pays neither black",
			wager: models.Wager{Kind: models.KindColor, Target: "black", Amount: dec(10)},
			slot:  0,
		},
		{
			name:       "number zero can win",
			wager:      models.Wager{Kind: models.KindNumber, Target: "0", Amount: dec(1)},
			slot:       0,
			wantWon:    true,
			wantPayout: 36,
		},
		{
			name:  "green color target is malformed and loses",
			wager: models.Wager{Kind: models.KindColor, Target: "green", Amount: dec(10)},
			slot:  0,
		},
		{
			name:  "number out of range loses",
			wager: models.Wager{Kind: models.KindNumber, Target: "37", Amount: dec(10)},
			slot:  36,
		},
		{
			name:  "non-numeric number target loses",
			wager: models.Wager{Kind: models.KindNumber, Target: "red", Amount: dec(10)},
			slot:  1,
		},
		{
			name:  "unknown kind loses",
			wager: models.Wager{Kind: "dozen", Target: "1", Amount: dec(10)},
			slot:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			won, payout := Payout(&tt.wager, tt.slot)
			if won != tt.wantWon {
				t.Errorf("won = %v, want %v", won, tt.wantWon)
			}
			if !payout.Equal(dec(tt.wantPayout)) {
				t.Errorf("payout = %s, want %d", payout, tt.wantPayout)
			}
		})
	}
}

func TestSettle(t *testing.T) {
	wagers := []*models.Wager{
		{ID: "w1", RoundNumber: 1, UserID: "alice", Kind: models.KindColor, Target: "red", Amount: dec(10)},
		{ID: "w2", RoundNumber: 1, UserID: "alice", Kind: models.KindNumber, Target: "1", Amount: dec(2)},
		{ID: "w3", RoundNumber: 1, UserID: "bob", Kind: models.KindColor, Target: "black", Amount: dec(7)},
		{ID: "w4", RoundNumber: 1, UserID: "bob", Kind: models.KindNumber, Target: "abc", Amount: dec(3)},
	}

	results, err := Settle(finished(1, 1), wagers)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if len(results) != len(wagers) {
		t.Fatalf("expected %d results, got %d", len(wagers), len(results))
	}

	want := []struct {
		won    bool
		payout int64
		delta  int64
	}{
		{true, 20, 20},
		{true, 72, 72},
		{false, 0, -7},
		{false, 0, -3},
	}
	for i, w := range want {
		r := results[i]
		if r.WagerID != wagers[i].ID || r.UserID != wagers[i].UserID {
			t.Errorf("result %d identifies %s/%s", i, r.WagerID, r.UserID)
		}
		if r.Won != w.won || !r.Payout.Equal(dec(w.payout)) || !r.Delta.Equal(dec(w.delta)) {
			t.Errorf("result %d = %+v, want won=%v payout=%d delta=%d", i, r, w.won, w.payout, w.delta)
		}
	}

	totals := UserDeltas(results)
	if !totals["alice"].Equal(dec(92)) {
		t.Errorf("alice delta = %s, want 92", totals["alice"])
	}
	if !totals["bob"].Equal(dec(-10)) {
		t.Errorf("bob delta = %s, want -10", totals["bob"])
	}
}

func TestSettleDeterministic(t *testing.T) {
	wagers := []*models.Wager{
		{ID: "a", RoundNumber: 3, UserID: "u", Kind: models.KindColor, Target: "black", Amount: dec(4)},
		{ID: "b", RoundNumber: 3, UserID: "u", Kind: models.KindNumber, Target: "8", Amount: dec(1)},
	}
	first, err := Settle(finished(3, 8), wagers)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Settle(finished(3, 8), wagers)
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("settlement changed on replay %d", i)
		}
	}
}

func TestSettleErrors(t *testing.T) {
	if _, err := Settle(&models.Round{Number: 1}, nil); err == nil {
		t.Error("expected error for round without outcome")
	}
	if _, err := Settle(finished(1, 40), nil); err == nil {
		t.Error("expected error for out-of-range slot")
	}
	other := []*models.Wager{{ID: "x", RoundNumber: 2, Kind: models.KindColor, Target: "red", Amount: dec(1)}}
	if _, err := Settle(finished(1, 1), other); err == nil {
		t.Error("expected error for wager of another round")
	}
}

func TestStats(t *testing.T) {
	wagers := []*models.Wager{
		{ID: "1", RoundNumber: 1, UserID: "alice", Kind: models.KindColor, Target: "red", Amount: dec(10), CreatedAt: 100},
		{ID: "2", RoundNumber: 1, UserID: "bob", Kind: models.KindNumber, Target: "5", Amount: dec(3), CreatedAt: 300},
		{ID: "3", RoundNumber: 1, UserID: "alice", Kind: models.KindNumber, Target: "1", Amount: dec(2), CreatedAt: 200},
	}

	open := Stats(wagers, nil)
	if open.TotalWagers != 3 || open.ColorWagers != 1 || open.NumberWagers != 2 || open.Players != 2 {
		t.Errorf("unexpected counts: %+v", open)
	}
	if !open.TotalAmount.Equal(dec(15)) {
		t.Errorf("total amount = %s, want 15", open.TotalAmount)
	}
	if open.LastWagerAt != 300 {
		t.Errorf("last wager at = %d, want 300", open.LastWagerAt)
	}
	if !open.TotalPayout.IsZero() {
		t.Errorf("open round payout = %s, want 0", open.TotalPayout)
	}

	results, err := Settle(finished(1, 1), wagers)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	done := Stats(wagers, results)
	if !done.TotalPayout.Equal(dec(92)) {
		t.Errorf("total payout = %s, want 92", done.TotalPayout)
	}
}
