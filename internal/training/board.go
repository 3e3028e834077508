// Package training holds the per-session course board and its quiz view.
// Quiz answers are never graded: submitting always validates the module.
package training

import (
	"errors"
	"sync"

	"github.com/ashureev/apsfd-portal/internal/domain"
)

var (
	ErrModuleNotFound = errors.New("training module not found")
	ErrModuleLocked   = errors.New("training module is locked")
	ErrNoActiveQuiz   = errors.New("no quiz is open for this module")
)

// Stats summarizes the board.
type Stats struct {
	Validated int `json:"validated"`
	Total     int `json:"total"`
	Points    int `json:"points"`
}

// Board is the training surface of one session.
type Board struct {
	mu      sync.RWMutex
	modules []domain.TrainingModule
	active  *domain.Quiz
}

// NewBoard creates a board from a catalog snapshot. The slice is copied.
func NewBoard(catalog []domain.TrainingModule) *Board {
	return &Board{modules: append([]domain.TrainingModule(nil), catalog...)}
}

// Modules returns a copy of the module list.
func (b *Board) Modules() []domain.TrainingModule {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.TrainingModule(nil), b.modules...)
}

// Stats returns the validated count, total, and accumulated points.
func (b *Board) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Stats{Total: len(b.modules)}
	for _, m := range b.modules {
		if m.Status == domain.ModuleValidated {
			s.Validated++
		}
		s.Points += m.Progress
	}
	return s
}

// ActiveQuiz returns the open quiz, or nil when the list view is shown.
func (b *Board) ActiveQuiz() *domain.Quiz {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.active == nil {
		return nil
	}
	q := *b.active
	return &q
}

// StartQuiz switches to the quiz view for a module. Validated modules may be
// opened again for review; submitting leaves them validated.
func (b *Board) StartQuiz(id int) (*domain.Quiz, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := b.find(id)
	if m == nil {
		return nil, ErrModuleNotFound
	}
	if m.IsLocked() {
		return nil, ErrModuleLocked
	}

	b.active = &domain.Quiz{
		ModuleID:    m.ID,
		ModuleTitle: m.Title,
		Questions:   []domain.QuizQuestion{domain.LiquidityQuestion},
	}
	q := *b.active
	return &q, nil
}

// CancelQuiz returns to the list view without changing any module.
func (b *Board) CancelQuiz() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = nil
}

// SubmitQuiz completes the open quiz. The answers are accepted as given and
// the module becomes validated with full progress.
func (b *Board) SubmitQuiz(id int, _ map[int]string) (domain.TrainingModule, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active == nil || b.active.ModuleID != id {
		return domain.TrainingModule{}, ErrNoActiveQuiz
	}
	m := b.find(id)
	if m == nil {
		return domain.TrainingModule{}, ErrModuleNotFound
	}

	m.Validate()
	b.active = nil
	return *m, nil
}

func (b *Board) find(id int) *domain.TrainingModule {
	for i := range b.modules {
		if b.modules[i].ID == id {
			return &b.modules[i]
		}
	}
	return nil
}
