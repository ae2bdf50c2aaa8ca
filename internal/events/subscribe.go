package events

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Subscribe dials the event feed at baseURL (http or https) and delivers
// events until ctx is done or the connection drops. The channel is closed
// on return of the reader.
func Subscribe(ctx context.Context, baseURL string) (<-chan Event, error) {
	wsURL := strings.Replace(strings.TrimSuffix(baseURL, "/"), "http", "ws", 1) + "/ws/rounds"
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	out := make(chan Event)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					slog.Warn("Event feed closed", "error", err)
				}
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
