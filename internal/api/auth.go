package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/gateway"
	"github.com/ashureev/apsfd-portal/internal/identity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	domain.Identity
	FirstName string     `json:"first_name"`
	Tab       domain.Tab `json:"tab"`
}

// Login authenticates against the auth webhook and opens a session. A
// session already bound to the request is replaced.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	sess, err := h.sessions.Login(r.Context(), req.Email, req.Password, identity.IPFromRequest(r))
	if err != nil {
		var ae *gateway.AuthError
		if !errors.As(err, &ae) {
			slog.Error("Login failed", "error", err, "user_email", req.Email)
			Error(w, http.StatusInternalServerError, "login failed")
			return
		}
		status := http.StatusUnauthorized
		if ae.Kind != gateway.AuthRefused {
			status = http.StatusBadGateway
		}
		Error(w, status, ae.Message)
		return
	}

	if prev := identity.SessionFromContext(r.Context()); prev != nil {
		h.sessions.Logout(prev.ID)
	}

	if err := h.codec.SetCookie(w, sess.ID, h.cfg.IsDevelopment()); err != nil {
		slog.Error("Failed to issue session cookie", "error", err, "session_id", sess.ID)
		h.sessions.Logout(sess.ID)
		Error(w, http.StatusInternalServerError, "failed to establish session")
		return
	}

	JSON(w, http.StatusOK, meResponse{Identity: sess.Identity, FirstName: sess.Identity.FirstName(), Tab: sess.Tab()})
}

// Logout discards the session and clears the cookie. It succeeds without a
// session too.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := identity.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Logout(sess.ID)
	}
	identity.ClearCookie(w, h.cfg.IsDevelopment())
	JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// GetMe returns the current user's identity.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	sess := identity.SessionFromContext(r.Context())
	JSON(w, http.StatusOK, meResponse{Identity: sess.Identity, FirstName: sess.Identity.FirstName(), Tab: sess.Tab()})
}

type navRequest struct {
	Tab string `json:"tab"`
}

// GetNav returns the selected tab.
func (h *Handler) GetNav(w http.ResponseWriter, r *http.Request) {
	sess := identity.SessionFromContext(r.Context())
	JSON(w, http.StatusOK, map[string]domain.Tab{"tab": sess.Tab()})
}

// PutNav selects a tab. Unknown tabs select the general chat.
func (h *Handler) PutNav(w http.ResponseWriter, r *http.Request) {
	var req navRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := identity.SessionFromContext(r.Context())
	JSON(w, http.StatusOK, map[string]domain.Tab{"tab": sess.SetTab(req.Tab)})
}

type chatModeInfo struct {
	Mode  domain.ChatMode `json:"mode"`
	Label string          `json:"label"`
}

// GetConfig returns the settings the frontend needs before login.
func (h *Handler) GetConfig(w http.ResponseWriter, _ *http.Request) {
	modes := make([]chatModeInfo, 0, len(domain.ChatModes))
	for _, m := range domain.ChatModes {
		modes = append(modes, chatModeInfo{Mode: m, Label: m.Label()})
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"accepted_extensions":  domain.AcceptedUploadExtensions,
		"max_file_size":        domain.MaxUploadFileSize,
		"max_file_size_label":  domain.SizeLabel(domain.MaxUploadFileSize),
		"chat_modes":           modes,
		"upload_notice_ttl_ms": h.cfg.Upload.NoticeTTL.Milliseconds(),
	})
}
