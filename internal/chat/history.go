// Package chat implements the chat surfaces: an append-only message history
// per channel and the send cycle that fills it.
package chat

import (
	"sync"

	"github.com/ashureev/apsfd-portal/internal/domain"
)

// History is an append-only, in-memory message sequence.
type History struct {
	mu       sync.RWMutex
	messages []domain.Message
}

// NewHistory creates a history holding the given initial messages.
func NewHistory(initial ...domain.Message) *History {
	return &History{messages: append([]domain.Message(nil), initial...)}
}

// Append adds a message at the end.
func (h *History) Append(m domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, m)
}

// Messages returns a copy of the sequence in insertion order.
func (h *History) Messages() []domain.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}
