// Package live pushes session events (appended messages, typing indicator)
// to connected browser tabs over WebSocket.
package live

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer is how many events a slow tab may lag behind before new
// events are dropped for it.
const subscriberBuffer = 64

// Subscription is one connected tab of a session.
type Subscription struct {
	ID        string
	SessionID string
	events    chan any
}

// Events yields published events. It is closed when the subscription is
// removed or the session is closed.
func (s *Subscription) Events() <-chan any {
	return s.events
}

// Hub tracks live subscriptions per portal session.
type Hub struct {
	mu     sync.RWMutex
	active map[string]map[string]*Subscription
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		active: make(map[string]map[string]*Subscription),
		logger: logger,
	}
}

// Subscribe registers a new tab for the session.
func (h *Hub) Subscribe(sessionID string) *Subscription {
	sub := &Subscription{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		events:    make(chan any, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.active[sessionID]; !exists {
		h.active[sessionID] = make(map[string]*Subscription)
	}
	h.active[sessionID][sub.ID] = sub
	h.logger.Debug("Live subscription registered", "session_id", sessionID, "subscription_id", sub.ID)
	return sub
}

// Unsubscribe removes a tab. It is a no-op if the session was already closed.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.active[sub.SessionID]
	if !ok {
		return
	}
	if current, exists := subs[sub.ID]; exists && current == sub {
		delete(subs, sub.ID)
		close(sub.events)
		if len(subs) == 0 {
			delete(h.active, sub.SessionID)
		}
		h.logger.Debug("Live subscription unregistered", "session_id", sub.SessionID, "subscription_id", sub.ID)
	}
}

// Publish delivers v to every tab of the session without blocking. Tabs whose
// buffer is full miss the event.
func (h *Hub) Publish(sessionID string, v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, sub := range h.active[sessionID] {
		select {
		case sub.events <- v:
		default:
			h.logger.Warn("Live subscriber lagging, event dropped", "session_id", sessionID, "subscription_id", id)
		}
	}
}

// CloseSession ends every subscription of the session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.active[sessionID]
	if !ok {
		return
	}
	for id, sub := range subs {
		close(sub.events)
		h.logger.Info("Live subscription closed", "session_id", sessionID, "subscription_id", id)
	}
	delete(h.active, sessionID)
}

// Count returns the number of tabs subscribed to the session.
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.active[sessionID])
}
