package api

import (
	"net/http"

	"github.com/ashureev/apsfd-portal/internal/chat"
	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/identity"
	"github.com/go-chi/chi/v5"
)

type messagesResponse struct {
	Mode     domain.ChatMode  `json:"mode"`
	Label    string           `json:"label"`
	Messages []domain.Message `json:"messages"`
	Typing   bool             `json:"typing"`
}

type sendRequest struct {
	Text string `json:"text"`
}

func (h *Handler) surface(w http.ResponseWriter, r *http.Request) *chat.Surface {
	mode, err := domain.ParseChatMode(chi.URLParam(r, "mode"))
	if err != nil {
		Error(w, http.StatusNotFound, err.Error())
		return nil
	}
	return identity.SessionFromContext(r.Context()).Chat(mode)
}

// GetMessages returns a chat history and its typing indicator.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	s := h.surface(w, r)
	if s == nil {
		return
	}
	JSON(w, http.StatusOK, messagesResponse{
		Mode:     s.Mode(),
		Label:    s.Mode().Label(),
		Messages: s.History().Messages(),
		Typing:   s.Typing(),
	})
}

// PostMessage sends a message and waits for the reply. Whitespace-only text
// changes nothing and answers 204.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	s := h.surface(w, r)
	if s == nil {
		return
	}

	var req sendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	exchange, sent := s.Send(r.Context(), req.Text)
	if !sent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	JSON(w, http.StatusOK, exchange)
}
