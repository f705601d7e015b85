package channel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/careconnect/go-patient-alerts/internal/models"
)

// Hub fans alert messages out to connected dashboard sessions. Sessions
// subscribe to a dashboard id; sends to absent or slow sessions never block
// the dispatcher.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[uint64]chan Message // dashboard id -> session id -> feed
	nextID   atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[uint64]chan Message),
	}
}

// Subscribe attaches a session to a dashboard id and returns its feed.
func (h *Hub) Subscribe(dashboardID string) (uint64, chan Message) {
	id := h.nextID.Add(1)
	ch := make(chan Message, 16)

	h.mu.Lock()
	if h.sessions[dashboardID] == nil {
		h.sessions[dashboardID] = make(map[uint64]chan Message)
	}
	h.sessions[dashboardID][id] = ch
	h.mu.Unlock()

	return id, ch
}

func (h *Hub) Unsubscribe(dashboardID string, id uint64) {
	h.mu.Lock()
	if feeds, ok := h.sessions[dashboardID]; ok {
		if ch, ok := feeds[id]; ok {
			close(ch)
			delete(feeds, id)
		}
		if len(feeds) == 0 {
			delete(h.sessions, dashboardID)
		}
	}
	h.mu.Unlock()
}

// Publish delivers a message to every session on the dashboard id, skipping
// sessions whose buffers are full.
func (h *Hub) Publish(dashboardID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.sessions[dashboardID] {
		select {
		case ch <- msg:
		default:
			// Skip slow sessions
		}
	}
}

func (h *Hub) SessionCount(dashboardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[dashboardID])
}

// Close closes every session feed, letting attached streams exit gracefully.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for dashboardID, feeds := range h.sessions {
		for id, ch := range feeds {
			close(ch)
			delete(feeds, id)
		}
		delete(h.sessions, dashboardID)
	}
}

// DashboardSender posts alerts to the in-process dashboard hub. Delivery to
// the hub always succeeds; whether a session is attached to pick it up is the
// dashboard's concern, not the dispatcher's.
type DashboardSender struct {
	hub *Hub
}

func NewDashboardSender(hub *Hub) *DashboardSender {
	return &DashboardSender{hub: hub}
}

func (s *DashboardSender) Send(ctx context.Context, msg Message, address string) error {
	s.hub.Publish(address, msg)
	return nil
}

func (s *DashboardSender) Type() models.Channel {
	return models.ChannelDashboard
}
