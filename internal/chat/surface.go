package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/google/uuid"
)

// ConnectionWarning is appended as the ai reply when the webhook call fails.
const ConnectionWarning = "⚠️ Connection error with the response server."

// Sender delivers a user message to the reply webhook.
type Sender interface {
	SendChatMessage(ctx context.Context, text, senderID string, mode domain.ChatMode) (string, error)
}

// EventKind identifies a surface event.
type EventKind string

const (
	EventMessage EventKind = "message"
	EventTyping  EventKind = "typing"
)

// Event is published when the surface changes.
type Event struct {
	Kind    EventKind       `json:"type"`
	Mode    domain.ChatMode `json:"mode"`
	Message *domain.Message `json:"message,omitempty"`
	Typing  bool            `json:"typing"`
}

// Listener receives surface events. It must not block.
type Listener func(Event)

// State is the send cycle state of a surface.
type State string

const (
	StateIdle    State = "idle"
	StateSending State = "sending"
)

// Exchange is the pair of messages produced by one send.
type Exchange struct {
	Request domain.Message `json:"request"`
	Reply   domain.Message `json:"reply"`
	Failed  bool           `json:"failed"`
}

// Surface is one chat channel bound to a history.
//
// Sends are serialized: a new send appends its user message and takes its
// place in line in one step, then waits for the previous send to settle
// before issuing its own webhook call. Replies land in the order the sends
// were made.
type Surface struct {
	mode     domain.ChatMode
	senderID string
	history  *History
	gateway  Sender
	listener Listener
	logger   *slog.Logger
	now      func() time.Time

	// seqMu orders the user message append with joining the line.
	seqMu sync.Mutex
	// tail is closed when the most recent send has appended its reply.
	tail chan struct{}

	stateMu sync.Mutex
	pending int
}

// SurfaceOption customizes a Surface.
type SurfaceOption func(*Surface)

// WithListener registers the event listener.
func WithListener(l Listener) SurfaceOption {
	return func(s *Surface) { s.listener = l }
}

// WithClock sets the time source for message timestamps.
func WithClock(now func() time.Time) SurfaceOption {
	return func(s *Surface) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SurfaceOption {
	return func(s *Surface) { s.logger = l }
}

// NewSurface creates a chat surface. senderID is sent to the webhook as the
// message author.
func NewSurface(mode domain.ChatMode, senderID string, history *History, gateway Sender, opts ...SurfaceOption) *Surface {
	s := &Surface{
		mode:     mode,
		senderID: senderID,
		history:  history,
		gateway:  gateway,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the surface's channel.
func (s *Surface) Mode() domain.ChatMode {
	return s.mode
}

// History returns the bound history.
func (s *Surface) History() *History {
	return s.history
}

// State reports whether a send is in flight.
func (s *Surface) State() State {
	if s.Typing() {
		return StateSending
	}
	return StateIdle
}

// Typing reports whether the typing indicator is shown.
func (s *Surface) Typing() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.pending > 0
}

// Send appends text as a user message and then the webhook's reply as an ai
// message. Whitespace-only input is ignored and reports false.
//
// The webhook call is not cancelled with ctx: a reply arriving after the
// caller went away is still appended.
func (s *Surface) Send(ctx context.Context, text string) (Exchange, bool) {
	if strings.TrimSpace(text) == "" {
		return Exchange{}, false
	}

	s.seqMu.Lock()
	req := s.newMessage(text, domain.SenderUser)
	s.history.Append(req)
	prev := s.tail
	done := make(chan struct{})
	s.tail = done
	s.seqMu.Unlock()
	defer close(done)

	s.emit(Event{Kind: EventMessage, Mode: s.mode, Message: &req})
	s.setSending(true)
	defer s.setSending(false)

	if prev != nil {
		<-prev
	}

	replyText, err := s.gateway.SendChatMessage(context.WithoutCancel(ctx), text, s.senderID, s.mode)
	failed := err != nil
	if failed {
		s.logger.Warn("Chat webhook call failed",
			"mode", s.mode,
			"sender", s.senderID,
			"error", err,
		)
		replyText = ConnectionWarning
	}

	reply := s.newMessage(replyText, domain.SenderAI)
	s.history.Append(reply)
	s.emit(Event{Kind: EventMessage, Mode: s.mode, Message: &reply})

	return Exchange{Request: req, Reply: reply, Failed: failed}, true
}

func (s *Surface) setSending(sending bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	before := s.pending > 0
	if sending {
		s.pending++
	} else {
		s.pending--
	}
	if after := s.pending > 0; after != before {
		s.emit(Event{Kind: EventTyping, Mode: s.mode, Typing: after})
	}
}

func (s *Surface) emit(ev Event) {
	if s.listener != nil {
		s.listener(ev)
	}
}

func (s *Surface) newMessage(text string, sender domain.Sender) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: s.now(),
	}
}

// WelcomeMessage builds the greeting that opens a surface after login.
func WelcomeMessage(mode domain.ChatMode, id domain.Identity, now time.Time) domain.Message {
	text := "Welcome to the Information Exchange Center (CEI)."
	if mode == domain.ChatGeneral {
		text = fmt.Sprintf("Hello %s, I am the APSFD assistant. How can I help you today?", id.FirstName())
	}
	return domain.Message{
		ID:        "welcome-" + string(mode),
		Text:      text,
		Sender:    domain.SenderAI,
		Timestamp: now,
	}
}
