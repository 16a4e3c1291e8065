package services

import (
	"encoding/json"
	"sync"

	"nutribalance/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type WSClient struct {
	UserID string
	Conn   *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// Write sends one text frame. gorilla connections allow a single writer at
// a time.
func (c *WSClient) Write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, msg)
}

// Ping keeps idle connections open through proxies.
func (c *WSClient) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.PingMessage, nil)
}

// RealtimeHub fans alerts out to every open socket of a user.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[string]map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[string]map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
	metrics.ActiveConnections.WithLabelValues().Inc()
}

// Unregister removes and closes the client. Calling it twice is a no-op.
func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	set := h.clients[c.UserID]
	_, present := set[c]
	if present {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	if !present {
		return
	}

	metrics.ActiveConnections.WithLabelValues().Dec()
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		_ = c.Conn.Close()
	}
	c.mu.Unlock()
}

// Count returns the number of open sockets for userID.
func (h *RealtimeHub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *RealtimeHub) BroadcastAlert(userID string, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode realtime payload")
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Write(msg); err != nil {
			log.Debug().Err(err).Str("user_id", userID).Msg("dropping realtime client")
			h.Unregister(c)
		}
	}
}
