package api

import (
	"net/http"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/history"
	"github.com/ashureev/apsfd-portal/internal/identity"
)

type historyResponse struct {
	Entries   []history.Entry `json:"entries"`
	EmptyText string          `json:"empty_text,omitempty"`
}

// GetHistory returns both chat histories merged, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sess := identity.SessionFromContext(r.Context())
	entries := history.Merge(
		sess.Chat(domain.ChatGeneral).History().Messages(),
		sess.Chat(domain.ChatCEI).History().Messages(),
	)

	resp := historyResponse{Entries: entries}
	if len(entries) == 0 {
		resp.EmptyText = history.EmptyText
	}
	JSON(w, http.StatusOK, resp)
}
