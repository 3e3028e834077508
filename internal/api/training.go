package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/identity"
	"github.com/ashureev/apsfd-portal/internal/training"
	"github.com/go-chi/chi/v5"
)

type trainingResponse struct {
	Modules []domain.TrainingModule `json:"modules"`
	Stats   training.Stats          `json:"stats"`
	Quiz    *domain.Quiz            `json:"quiz"`
}

type submitQuizRequest struct {
	Answers map[int]string `json:"answers"`
}

func boardView(b *training.Board) trainingResponse {
	return trainingResponse{Modules: b.Modules(), Stats: b.Stats(), Quiz: b.ActiveQuiz()}
}

func trainingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, training.ErrModuleNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, training.ErrModuleLocked), errors.Is(err, training.ErrNoActiveQuiz):
		Error(w, http.StatusConflict, err.Error())
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}

func moduleID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid module id")
		return 0, false
	}
	return id, true
}

// GetTraining returns the module list, stats, and open quiz.
func (h *Handler) GetTraining(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, boardView(identity.SessionFromContext(r.Context()).Board()))
}

// StartQuiz opens the quiz view for a module.
func (h *Handler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := moduleID(w, r)
	if !ok {
		return
	}
	board := identity.SessionFromContext(r.Context()).Board()
	if _, err := board.StartQuiz(id); err != nil {
		trainingError(w, err)
		return
	}
	JSON(w, http.StatusOK, boardView(board))
}

// CancelQuiz returns to the module list.
func (h *Handler) CancelQuiz(w http.ResponseWriter, r *http.Request) {
	board := identity.SessionFromContext(r.Context()).Board()
	board.CancelQuiz()
	JSON(w, http.StatusOK, boardView(board))
}

// SubmitQuiz validates the module whose quiz is open.
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := moduleID(w, r)
	if !ok {
		return
	}

	var req submitQuizRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	board := identity.SessionFromContext(r.Context()).Board()
	if _, err := board.SubmitQuiz(id, req.Answers); err != nil {
		trainingError(w, err)
		return
	}
	JSON(w, http.StatusOK, boardView(board))
}
