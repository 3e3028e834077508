package domain

import (
	"fmt"
	"time"
)

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatMode selects one of the two chat surfaces.
type ChatMode string

const (
	// ChatGeneral is the general assistant channel.
	ChatGeneral ChatMode = "general"
	// ChatCEI is the confidential information exchange channel.
	ChatCEI ChatMode = "cei"
)

// ChatModes lists every chat surface in display order.
var ChatModes = []ChatMode{ChatGeneral, ChatCEI}

// ParseChatMode validates a chat mode name.
func ParseChatMode(s string) (ChatMode, error) {
	switch ChatMode(s) {
	case ChatGeneral, ChatCEI:
		return ChatMode(s), nil
	}
	return "", fmt.Errorf("unknown chat mode %q", s)
}

// Label is the human-facing name of the surface, used to tag history entries.
func (m ChatMode) Label() string {
	switch m {
	case ChatCEI:
		return "CEI Exchange"
	default:
		return "AI Assistant"
	}
}

// Message is a single chat entry. Messages are immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}
