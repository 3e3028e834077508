// Package session owns the server-side state of each logged-in portal tab.
package session

import (
	"sync"
	"time"

	"github.com/ashureev/apsfd-portal/internal/chat"
	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/training"
	"github.com/ashureev/apsfd-portal/internal/upload"
)

// Session is one authenticated portal session and every surface it owns.
type Session struct {
	ID        string
	Identity  domain.Identity
	CreatedAt time.Time

	chats map[domain.ChatMode]*chat.Surface
	board *training.Board
	queue *upload.Queue

	mu       sync.Mutex
	tab      domain.Tab
	lastSeen time.Time
}

// Chat returns the surface for a channel.
func (s *Session) Chat(mode domain.ChatMode) *chat.Surface {
	return s.chats[mode]
}

// Board returns the training board.
func (s *Session) Board() *training.Board {
	return s.board
}

// Queue returns the upload queue.
func (s *Session) Queue() *upload.Queue {
	return s.queue
}

// Tab returns the selected navigation tab.
func (s *Session) Tab() domain.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

// SetTab selects a tab by name. Unknown names select the general chat.
func (s *Session) SetTab(name string) domain.Tab {
	tab := domain.ParseTab(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
	return tab
}

// LastSeen returns when the session last served a request.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}
