package events

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var _ game.Observer = (*Hub)(nil)

// Hub fans events out to connected subscribers. It implements game.Observer
// and http.Handler. Publishing never blocks; a subscriber whose buffer is
// full is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*subscriber]struct{})}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues the event for every subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			slog.Warn("Dropping slow event subscriber", "remote", c.conn.RemoteAddr().String())
			h.removeLocked(c)
		}
	}
}

func (h *Hub) removeLocked(c *subscriber) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) remove(c *subscriber) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams events until the peer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}

	c := &subscriber{conn: conn, send: make(chan Event, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Debug("Event subscriber connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop only tracks liveness; subscribers do not send anything.
func (h *Hub) readLoop(c *subscriber) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				slog.Debug("Event write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// RoundOpened publishes a round_opened event.
func (h *Hub) RoundOpened(round *models.Round) { h.Publish(roundEvent(RoundOpened, round)) }

// RoundClosed publishes a round_closed event.
func (h *Hub) RoundClosed(round *models.Round) { h.Publish(roundEvent(RoundClosed, round)) }

// RoundFinished publishes a round_finished event with the outcome and the
// number of settled wagers. Clients sync their balance on it.
func (h *Hub) RoundFinished(round *models.Round, results []models.SettlementResult) {
	ev := roundEvent(RoundFinished, round)
	ev.Wagers = len(results)
	h.Publish(ev)
}

// WagersPlaced publishes one wagers_placed event per accepted batch with
// its count and total stake. Player identities are not broadcast.
func (h *Hub) WagersPlaced(wagers []*models.Wager) {
	if len(wagers) == 0 {
		return
	}
	total := decimal.Zero
	for _, w := range wagers {
		total = total.Add(w.Amount)
	}
	h.Publish(Event{
		Type:        WagersPlaced,
		RoundNumber: wagers[0].RoundNumber,
		Wagers:      len(wagers),
		TotalAmount: total.String(),
		At:          time.Now().Unix(),
	})
}

// Rejected is a no-op; rejected operations are not broadcast.
func (h *Hub) Rejected(string, error) {}
