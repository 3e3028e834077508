package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/apsfd-portal/internal/chat"
	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/gateway"
	"github.com/ashureev/apsfd-portal/internal/training"
	"github.com/ashureev/apsfd-portal/internal/upload"
	"github.com/google/uuid"
)

// Authenticator checks portal credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (gateway.AuthResult, error)
}

// Repository is the persistent state a session store reads and writes.
type Repository interface {
	ListModules(ctx context.Context) ([]domain.TrainingModule, error)
	RecordAuthEvent(ctx context.Context, event domain.AuthEvent) error
}

// Notifier fans session events out to connected tabs.
type Notifier interface {
	Publish(sessionID string, v any)
	CloseSession(sessionID string)
}

// Store holds live sessions in memory.
type Store struct {
	auth      Authenticator
	sender    chat.Sender
	repo      Repository
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
	noticeTTL time.Duration
	queueCap  int64

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option customizes a Store.
type Option func(*Store)

// WithNotifier routes surface events to live connections.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithUploadNoticeTTL sets how long upload notices stay visible.
func WithUploadNoticeTTL(d time.Duration) Option {
	return func(s *Store) { s.noticeTTL = d }
}

// WithUploadQueueLimit caps the total bytes a session's upload queue holds.
func WithUploadQueueLimit(n int64) Option {
	return func(s *Store) { s.queueCap = n }
}

// NewStore creates an empty session store.
func NewStore(auth Authenticator, sender chat.Sender, repo Repository, opts ...Option) *Store {
	s := &Store{
		auth:      auth,
		sender:    sender,
		repo:      repo,
		logger:    slog.Default(),
		now:       time.Now,
		noticeTTL: upload.DefaultNoticeTTL,
		queueCap:  upload.DefaultMaxQueueBytes,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates the credentials and opens a fresh session. Rejections
// are returned as *gateway.AuthError. Every attempt is audited.
func (s *Store) Login(ctx context.Context, email, password, remoteIP string) (*Session, error) {
	result, err := s.auth.Authenticate(ctx, email, password)
	s.audit(ctx, email, remoteIP, err)
	if err != nil {
		return nil, err
	}

	sess := s.newSession(ctx, result.Identity)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("Session opened",
		"session_id", sess.ID,
		"user_email", sess.Identity.Email,
		"lenient_auth", result.Lenient,
	)
	return sess, nil
}

func (s *Store) audit(ctx context.Context, email, remoteIP string, authErr error) {
	outcome := domain.AuthOutcomeSuccess
	if authErr != nil {
		var ae *gateway.AuthError
		if errors.As(authErr, &ae) {
			outcome = ae.Outcome()
		} else {
			outcome = domain.AuthOutcomeNetwork
		}
	}

	event := domain.AuthEvent{
		Email:     email,
		Outcome:   outcome,
		RemoteIP:  remoteIP,
		CreatedAt: s.now(),
	}
	if err := s.repo.RecordAuthEvent(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("Failed to record auth event", "user_email", email, "outcome", outcome, "error", err)
	}
}

func (s *Store) newSession(ctx context.Context, id domain.Identity) *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Identity:  id,
		CreatedAt: now,
		chats:     make(map[domain.ChatMode]*chat.Surface, len(domain.ChatModes)),
		board:     training.NewBoard(s.catalog(ctx)),
		queue:     upload.NewQueue(
			upload.WithNoticeTTL(s.noticeTTL),
			upload.WithMaxBytes(s.queueCap),
			upload.WithClock(s.now),
		),
		tab:       domain.TabChat,
		lastSeen:  now,
	}

	for _, mode := range domain.ChatModes {
		history := chat.NewHistory(chat.WelcomeMessage(mode, id, now))
		sess.chats[mode] = chat.NewSurface(mode, id.Email, history, s.sender,
			chat.WithListener(s.listener(sess.ID)),
			chat.WithClock(s.now),
			chat.WithLogger(s.logger.With("session_id", sess.ID)),
		)
	}
	return sess
}

// catalog returns the training modules for a new board. The built-in
// catalog is used when the repository is empty or unreadable.
func (s *Store) catalog(ctx context.Context) []domain.TrainingModule {
	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		s.logger.Warn("Failed to load training catalog, using defaults", "error", err)
		return domain.DefaultCatalog()
	}
	if len(modules) == 0 {
		return domain.DefaultCatalog()
	}
	return modules
}

func (s *Store) listener(sessionID string) chat.Listener {
	return func(ev chat.Event) {
		if s.notifier != nil {
			s.notifier.Publish(sessionID, ev)
		}
	}
}

// Get returns the session and marks it as seen, or nil if it does not exist.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	sess := s.sessions[id]
	s.mu.RUnlock()

	if sess != nil {
		sess.touch(s.now())
	}
	return sess
}

// Logout discards the session and everything it owns. Unknown ids are
// ignored.
func (s *Store) Logout(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return
	}
	if s.notifier != nil {
		s.notifier.CloseSession(id)
	}
	s.logger.Info("Session closed", "session_id", id, "user_email", sess.Identity.Email)
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// expired returns the ids of sessions idle for longer than ttl.
func (s *Store) expired(ttl time.Duration) []string {
	cutoff := s.now().Add(-ttl)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}
