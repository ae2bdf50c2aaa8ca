package events

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
)

func TestHubDeliversRoundEvents(t *testing.T) {
	hub := NewHub()
	r := chi.NewRouter()
	r.Handle("/ws/rounds", hub)
	server := httptest.NewServer(r)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed, err := Subscribe(ctx, server.URL)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Wait until the hub registered the subscriber before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	slot := 1
	round := &models.Round{Number: 4, TableID: "main", Status: models.RoundFinished, WinningSlot: &slot}
	hub.WagersPlaced([]*models.Wager{
		{RoundNumber: 4, Amount: decimal.NewFromInt(10)},
		{RoundNumber: 4, Amount: decimal.RequireFromString("2.5")},
	})
	hub.RoundFinished(round, make([]models.SettlementResult, 2))

	want := []Event{
		{Type: WagersPlaced, RoundNumber: 4, Wagers: 2, TotalAmount: "12.5"},
		{Type: RoundFinished, RoundNumber: 4, TableID: "main", WinningColor: "red", Wagers: 2},
	}
	for i, w := range want {
		select {
		case ev, ok := <-feed:
			if !ok {
				t.Fatalf("feed closed before event %d", i)
			}
			if ev.Type != w.Type || ev.RoundNumber != w.RoundNumber || ev.Wagers != w.Wagers ||
				ev.TotalAmount != w.TotalAmount || ev.WinningColor != w.WinningColor || ev.TableID != w.TableID {
				t.Errorf("event %d = %+v, want %+v", i, ev, w)
			}
		case <-ctx.Done():
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	hub.RoundOpened(&models.Round{Number: 1})
	if hub.Subscribers() != 0 {
		t.Errorf("expected no subscribers")
	}
}
