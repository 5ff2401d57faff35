package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const writeTimeout = 5 * time.Second

// Hub tracks WebSocket subscribers per user and delivers events to them.
type Hub struct {
	log zerolog.Logger

	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:   log,
		conns: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Register adds a subscriber connection for userID and returns the matching
// unregister func. The caller owns the connection lifecycle.
func (h *Hub) Register(userID string, c *websocket.Conn) func() {
	h.mu.Lock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][c] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.conns[userID], c)
		if len(h.conns[userID]) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Publish sends the event to every connection of every listed user. Write
// failures are logged and skipped; the connection's own read loop notices the
// broken pipe and unregisters it.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", ev.RequestID).Msg("marshal event")
		return
	}

	h.mu.RLock()
	var targets []*websocket.Conn
	for _, userID := range ev.UserIDs {
		for c := range h.conns[userID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	// Fan out concurrently so one slow subscriber cannot delay the rest.
	var g errgroup.Group
	for _, c := range targets {
		g.Go(func() error {
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			defer cancel()
			if err := c.Write(wctx, websocket.MessageText, payload); err != nil {
				h.log.Debug().Err(err).Str("request_id", ev.RequestID).Msg("event write failed")
			}
			return nil
		})
	}
	g.Wait()
}

// SubscriberCount reports how many connections userID currently holds.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
