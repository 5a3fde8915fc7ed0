package ws

import (
	"sync"

	"taskflow/internal/domain"
	"taskflow/internal/logger"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections",
		Help: "Open board websocket connections",
	})
	EventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_events_dropped_total",
		Help: "Board events not delivered because a client's buffer was full",
	})
)

func init() {
	prometheus.MustRegister(Connections)
	prometheus.MustRegister(EventsDropped)
}

// Hub tracks open board connections per user and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	Connections.Inc()
	logger.Debug("ws client registered", "user_id", c.UserID)
}

// Unregister removes c and closes its send buffer. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if ok {
		if _, present := set[c]; present {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.UserID)
			}
		} else {
			ok = false
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	c.closeSend()
	Connections.Dec()
	logger.Debug("ws client unregistered", "user_id", c.UserID)
}

// Publish sends ev to every open connection of userID. Clients whose buffer is
// full are dropped rather than blocking the publisher.
func (h *Hub) Publish(userID string, ev domain.BoardEvent) {
	h.mu.RLock()
	set := h.clients[userID]
	if len(set) == 0 {
		h.mu.RUnlock()
		return
	}
	targets := make([]*Client, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	msg, err := sonic.Marshal(ev)
	if err != nil {
		logger.Error("ws encode event failed", "error", err, "type", ev.Type)
		return
	}

	for _, c := range targets {
		if !c.trySend(msg) {
			EventsDropped.Inc()
			logger.Warn("ws client too slow, dropping", "user_id", userID)
			h.Unregister(c)
		}
	}
}

// ConnectionCount returns the number of open connections for userID.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close drops every connection; used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.Unlock()

	for _, c := range all {
		h.Unregister(c)
	}
}
