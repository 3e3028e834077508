// Package upload implements the file-drop surface: a pending queue that is
// submitted as one batch.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/apsfd-portal/internal/domain"
)

// DefaultNoticeTTL is how long a submit notice stays visible.
const DefaultNoticeTTL = 5 * time.Second

// DefaultMaxQueueBytes bounds the total size of the files one queue holds.
const DefaultMaxQueueBytes int64 = 256 << 20

// User-facing submit notices.
const (
	MsgSubmitted    = "Files sent to the processing workflow."
	MsgSubmitFailed = "Upload failed. Check the webhook configuration."
)

var (
	ErrIndexOutOfRange = errors.New("pending file index out of range")
	ErrUploadInFlight  = errors.New("an upload is already in progress")
	ErrQueueFull       = errors.New("pending files exceed the queue size limit")
)

// Submitter sends a batch of files.
type Submitter interface {
	SubmitFiles(ctx context.Context, files []domain.PendingFile) error
}

// DragEvent is a drag-and-drop event forwarded by the client.
type DragEvent string

const (
	DragEnter DragEvent = "enter"
	DragOver  DragEvent = "over"
	DragLeave DragEvent = "leave"
	DragDrop  DragEvent = "drop"
)

// NoticeKind distinguishes success from failure notices.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a self-dismissing status message.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Text      string     `json:"text"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Snapshot is the observable state of the surface.
type Snapshot struct {
	Files      []domain.PendingFile `json:"files"`
	DragActive bool                 `json:"drag_active"`
	Uploading  bool                 `json:"uploading"`
	Notice     *Notice              `json:"notice,omitempty"`
}

// Queue is the upload surface of one session.
type Queue struct {
	mu         sync.Mutex
	files      []domain.PendingFile
	dragActive bool
	uploading  bool
	notice     *Notice

	noticeTTL time.Duration
	maxBytes  int64
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Queue.
type Option func(*Queue)

// WithNoticeTTL overrides how long notices stay visible.
func WithNoticeTTL(d time.Duration) Option {
	return func(q *Queue) { q.noticeTTL = d }
}

// WithMaxBytes caps the total size of pending files. Zero or less disables
// the cap.
func WithMaxBytes(n int64) Option {
	return func(q *Queue) { q.maxBytes = n }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// NewQueue creates an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		noticeTTL: DefaultNoticeTTL,
		maxBytes:  DefaultMaxQueueBytes,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Add appends files to the queue. The whole batch is refused with
// ErrQueueFull when it would push the queue past its size cap.
func (q *Queue) Add(files ...domain.PendingFile) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.maxBytes > 0 {
		total := q.sizeLocked()
		for _, f := range files {
			total += f.Size
		}
		if total > q.maxBytes {
			return fmt.Errorf("%w: %s of %s", ErrQueueFull, domain.SizeLabel(total), domain.SizeLabel(q.maxBytes))
		}
	}
	q.files = append(q.files, files...)
	return nil
}

// Size returns the total size of the pending files.
func (q *Queue) Size() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sizeLocked()
}

func (q *Queue) sizeLocked() int64 {
	var total int64
	for _, f := range q.files {
		total += f.Size
	}
	return total
}

// Remove drops the entry at index, keeping the order of the rest.
func (q *Queue) Remove(index int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if index < 0 || index >= len(q.files) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	q.files = append(q.files[:index:index], q.files[index+1:]...)
	return nil
}

// Files returns a copy of the pending entries.
func (q *Queue) Files() []domain.PendingFile {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.PendingFile(nil), q.files...)
}

// Len returns the number of pending files.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.files)
}

// Drag updates the drop-zone highlight.
func (q *Queue) Drag(ev DragEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch ev {
	case DragEnter, DragOver:
		q.dragActive = true
	case DragLeave, DragDrop:
		q.dragActive = false
	default:
		return fmt.Errorf("unknown drag event %q", ev)
	}
	return nil
}

// Notice returns the current notice, or nil once it has expired.
func (q *Queue) Notice() *Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.currentNotice()
}

func (q *Queue) currentNotice() *Notice {
	if q.notice == nil || !q.now().Before(q.notice.ExpiresAt) {
		q.notice = nil
		return nil
	}
	n := *q.notice
	return &n
}

// Snapshot returns the surface state.
func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Snapshot{
		Files:      append([]domain.PendingFile(nil), q.files...),
		DragActive: q.dragActive,
		Uploading:  q.uploading,
		Notice:     q.currentNotice(),
	}
}

// Submit sends every pending file in one batch. On success the queue is
// cleared; on failure it is left exactly as it was. An empty queue is a no-op.
func (q *Queue) Submit(ctx context.Context, s Submitter) (*Notice, error) {
	q.mu.Lock()
	if len(q.files) == 0 {
		q.mu.Unlock()
		return nil, nil
	}
	if q.uploading {
		q.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	batch := append([]domain.PendingFile(nil), q.files...)
	q.uploading = true
	q.notice = nil
	q.mu.Unlock()

	err := s.SubmitFiles(ctx, batch)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.uploading = false

	if err != nil {
		q.logger.Warn("File batch submission failed", "count", len(batch), "error", err)
		q.setNotice(NoticeError, MsgSubmitFailed)
		return q.currentNotice(), err
	}

	q.files = nil
	q.setNotice(NoticeSuccess, MsgSubmitted)
	return q.currentNotice(), nil
}

func (q *Queue) setNotice(kind NoticeKind, text string) {
	q.notice = &Notice{Kind: kind, Text: text, ExpiresAt: q.now().Add(q.noticeTTL)}
}
