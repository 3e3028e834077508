// Package api provides HTTP handlers for the portal API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ashureev/apsfd-portal/internal/config"
	"github.com/ashureev/apsfd-portal/internal/identity"
	"github.com/ashureev/apsfd-portal/internal/live"
	"github.com/ashureev/apsfd-portal/internal/session"
	"github.com/ashureev/apsfd-portal/internal/upload"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// Handler serves every portal surface.
type Handler struct {
	sessions *session.Store
	uploader upload.Submitter
	hub      *live.Hub
	codec    *identity.Codec
	cfg      *config.Config
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(sessions *session.Store, uploader upload.Submitter, hub *live.Hub, codec *identity.Codec, cfg *config.Config) *Handler {
	return &Handler{
		sessions: sessions,
		uploader: uploader,
		hub:      hub,
		codec:    codec,
		cfg:      cfg,
	}
}

// RegisterRoutes registers the portal routes. identity.Middleware must run
// before them.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/config", h.GetConfig)

		r.Group(func(r chi.Router) {
			r.Use(identity.Require)

			r.Get("/me", h.GetMe)
			r.Get("/nav", h.GetNav)
			r.Put("/nav", h.PutNav)

			r.Get("/chat/{mode}/messages", h.GetMessages)
			r.Post("/chat/{mode}/messages", h.PostMessage)

			r.Get("/training", h.GetTraining)
			r.Delete("/training/quiz", h.CancelQuiz)
			r.Post("/training/{id}/quiz", h.StartQuiz)
			r.Post("/training/{id}/quiz/submit", h.SubmitQuiz)

			r.Get("/upload", h.GetUpload)
			r.Post("/upload/files", h.AddFiles)
			r.Delete("/upload/files/{index}", h.RemoveFile)
			r.Post("/upload/drag", h.Drag)
			r.Post("/upload/submit", h.SubmitUpload)

			r.Get("/history", h.GetHistory)
		})
	})

	r.With(identity.Require).Get("/ws/events", h.Events)
}

// Events streams live session events over WebSocket.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	sess := identity.SessionFromContext(r.Context())
	slog.Info("Live connection request", "session_id", sess.ID, "ip", identity.IPFromRequest(r))
	h.hub.Serve(w, r, sess.ID, h.originPatterns())
}

// originPatterns converts allowed origins to the host patterns the
// WebSocket handshake checks.
func (h *Handler) originPatterns() []string {
	if h.cfg.IsDevelopment() {
		return []string{"*"}
	}
	var patterns []string
	for _, o := range h.cfg.AllowedOrigins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
