package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"echohole/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const maxTotalConns = 10000

// ErrHubFull is returned by Register when the connection cap is reached.
var ErrHubFull = errors.New("server connection limit reached")

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("hub is shut down")

// Hub pushes board events to connected websocket clients. Visit events only
// reach admin clients.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	closed   bool
	shutdown chan struct{}
	done     chan struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "board hub" }

// Register adds a connection for audience.
func (h *Hub) Register(conn *websocket.Conn, audience Audience) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if len(h.clients) >= maxTotalConns {
		return nil, ErrHubFull
	}

	client := newClient(h, conn, audience)
	h.clients[client] = struct{}{}
	observability.WebSocketConnectionsTotal.WithLabelValues(string(audience)).Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send channel.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	observability.WebSocketConnectionsTotal.WithLabelValues(string(client.Audience)).Dec()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func deliverTo(e Event, audience Audience) bool {
	if e.Type == EventNewVisit {
		return audience == AudienceAdmin
	}
	return true
}

// Broadcast sends e to every client whose audience receives it.
func (h *Hub) Broadcast(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("marshal board event", slog.String("type", e.Type), slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if deliverTo(e, c.Audience) {
			c.TrySend(data)
		}
	}
}

// StartWiring forwards events from sub to clients until ctx is cancelled or
// the hub shuts down.
func (h *Hub) StartWiring(ctx context.Context, sub *Subscription) {
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.shutdown:
				return
			case e, ok := <-sub.C:
				if !ok {
					return
				}
				h.Broadcast(e)
			}
		}
	}()
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.shutdown)

	// Closing Send makes each WritePump emit a close frame and exit.
	for client := range h.clients {
		close(client.Send)
		observability.WebSocketConnectionsTotal.WithLabelValues(string(client.Audience)).Dec()
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	close(h.done)
	return nil
}
