package training

import (
	"testing"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitQuizValidatesOnlyTarget(t *testing.T) {
	b := NewBoard(domain.DefaultCatalog())
	before := b.Modules()

	quiz, err := b.StartQuiz(2)
	require.NoError(t, err)
	assert.Equal(t, "Internal Audit: Level 1", quiz.ModuleTitle)
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, []string{"10%", "50%", "75%", "100%"}, quiz.Questions[0].Options)

	// Any answer, including a wrong one, validates the module.
	m, err := b.SubmitQuiz(2, map[int]string{0: "10%"})
	require.NoError(t, err)
	assert.Equal(t, 100, m.Progress)
	assert.Equal(t, domain.ModuleValidated, m.Status)
	assert.Nil(t, b.ActiveQuiz())

	want := before
	want[1].Progress = 100
	want[1].Status = domain.ModuleValidated
	if diff := cmp.Diff(want, b.Modules()); diff != "" {
		t.Errorf("modules mismatch (-want +got):\n%s", diff)
	}
}

func TestStartQuizLockedAndUnknown(t *testing.T) {
	b := NewBoard(domain.DefaultCatalog())

	_, err := b.StartQuiz(3)
	assert.ErrorIs(t, err, ErrModuleLocked)

	_, err = b.StartQuiz(99)
	assert.ErrorIs(t, err, ErrModuleNotFound)
	assert.Nil(t, b.ActiveQuiz())
}

func TestValidatedModuleCanBeReviewed(t *testing.T) {
	b := NewBoard(domain.DefaultCatalog())
	require.Equal(t, domain.ModuleValidated, b.Modules()[0].Status)

	quiz, err := b.StartQuiz(1)
	require.NoError(t, err)
	assert.Equal(t, 1, quiz.ModuleID)

	m, err := b.SubmitQuiz(1, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ModuleValidated, m.Status)
	assert.Equal(t, 100, m.Progress)
	assert.Equal(t, Stats{Validated: 1, Total: 4, Points: 155}, b.Stats())
}

func TestSubmitRequiresOpenQuiz(t *testing.T) {
	b := NewBoard(domain.DefaultCatalog())

	_, err := b.SubmitQuiz(4, nil)
	assert.ErrorIs(t, err, ErrNoActiveQuiz)

	_, err = b.StartQuiz(4)
	require.NoError(t, err)
	_, err = b.SubmitQuiz(2, nil)
	assert.ErrorIs(t, err, ErrNoActiveQuiz)

	b.CancelQuiz()
	assert.Nil(t, b.ActiveQuiz())
	_, err = b.SubmitQuiz(4, nil)
	assert.ErrorIs(t, err, ErrNoActiveQuiz)
	assert.Equal(t, domain.ModuleInProgress, b.Modules()[3].Status)
}

func TestStats(t *testing.T) {
	b := NewBoard(domain.DefaultCatalog())
	assert.Equal(t, Stats{Validated: 1, Total: 4, Points: 155}, b.Stats())

	_, err := b.StartQuiz(4)
	require.NoError(t, err)
	_, err = b.SubmitQuiz(4, nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{Validated: 2, Total: 4, Points: 245}, b.Stats())
}

func TestBoardCopiesCatalog(t *testing.T) {
	catalog := domain.DefaultCatalog()
	b := NewBoard(catalog)
	_, err := b.StartQuiz(2)
	require.NoError(t, err)
	_, err = b.SubmitQuiz(2, nil)
	require.NoError(t, err)
	assert.Equal(t, 45, catalog[1].Progress)
}
