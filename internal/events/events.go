// Package events broadcasts round transitions to websocket subscribers.
package events

import (
	"time"

	"github.com/mmynk/roulette/internal/models"
)

// Type names a round event.
type Type string

const (
	RoundOpened   Type = "round_opened"
	RoundClosed   Type = "round_closed"
	RoundFinished Type = "round_finished"
	WagersPlaced  Type = "wagers_placed"
)

// Event is the JSON message sent to subscribers.
type Event struct {
	Type         Type   `json:"type"`
	RoundNumber  int64  `json:"roundNumber"`
	TableID      string `json:"tableId,omitempty"`
	WinningSlot  *int   `json:"winningSlot,omitempty"`
	WinningColor string `json:"winningColor,omitempty"`
	Wagers       int    `json:"wagers,omitempty"`
	TotalAmount  string `json:"totalAmount,omitempty"`
	At           int64  `json:"at"`
}

func roundEvent(t Type, round *models.Round) Event {
	return Event{
		Type:         t,
		RoundNumber:  round.Number,
		TableID:      round.TableID,
		WinningSlot:  round.WinningSlot,
		WinningColor: string(round.WinningColor()),
		At:           time.Now().Unix(),
	}
}
