// Package gateway performs the outbound webhook calls the portal depends on:
// authentication, chat replies and file submission.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/apsfd-portal/internal/domain"
)

// maxReplyBytes bounds how much of a webhook reply is read.
const maxReplyBytes = 8 << 20

// Endpoints holds the webhook URLs.
type Endpoints struct {
	Auth        string
	ChatGeneral string
	ChatCEI     string
	Upload      string
}

// Chat returns the webhook URL for a chat surface.
func (e Endpoints) Chat(mode domain.ChatMode) string {
	if mode == domain.ChatCEI {
		return e.ChatCEI
	}
	return e.ChatGeneral
}

// Gateway is the HTTP client for the portal's webhooks. Each call is a single
// POST with no retry.
type Gateway struct {
	endpoints Endpoints
	client    *http.Client
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// WithClock sets the time source used for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// New creates a Gateway. A zero timeout leaves requests unbounded.
func New(endpoints Endpoints, timeout time.Duration, opts ...Option) *Gateway {
	g := &Gateway{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func isOK(status int) bool {
	return status >= 200 && status < 300
}

// post sends one request and returns the status code and body.
func (g *Gateway) post(ctx context.Context, name, url, contentType string, body io.Reader, acceptJSON bool) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: build %s request: %w", ErrTransport, name, err)
	}
	req.Header.Set("Content-Type", contentType)
	if acceptJSON {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: post %s: %w", ErrTransport, name, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			g.logger.Debug("gateway: failed to close response body", "endpoint", name, "error", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read %s response: %w", ErrTransport, name, err)
	}

	g.logger.Debug("Webhook call completed",
		"endpoint", name,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return resp.StatusCode, data, nil
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is a successful authentication.
type AuthResult struct {
	Identity domain.Identity
	// Lenient is set when the webhook answered 2xx with a non-JSON body and
	// the login was accepted with placeholder identity fields.
	Lenient bool
}

// Authenticate checks credentials against the auth webhook. Failures are
// returned as *AuthError.
func (g *Gateway) Authenticate(ctx context.Context, email, password string) (AuthResult, error) {
	payload, err := json.Marshal(authRequest{Email: email, Password: password})
	if err != nil {
		return AuthResult{}, fmt.Errorf("encode auth request: %w", err)
	}

	status, body, err := g.post(ctx, "auth", g.endpoints.Auth, "application/json", bytes.NewReader(payload), true)
	if err != nil {
		g.logger.Warn("Authentication request failed", "error", err)
		return AuthResult{}, &AuthError{Kind: AuthNetwork, Message: MsgAuthNetwork, Err: err}
	}
	if !isOK(status) {
		return AuthResult{}, &AuthError{
			Kind:    AuthUnavailable,
			Message: MsgAuthUnavailable,
			Err:     &StatusError{Endpoint: "auth", StatusCode: status},
		}
	}
	return parseAuthReply(body, email)
}

// parseAuthReply interprets a 2xx auth body. A body that is not JSON counts as
// success.
func parseAuthReply(body []byte, email string) (AuthResult, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return AuthResult{
			Identity: domain.Identity{Name: domain.DefaultUserName, Email: email, Role: domain.DefaultUserRole},
			Lenient:  true,
		}, nil
	}

	obj, _ := v.(map[string]any)
	if obj == nil || !truthy(obj["success"]) {
		msg := stringField(obj, "error")
		if msg == "" {
			msg = MsgAuthRefused
		}
		return AuthResult{}, &AuthError{Kind: AuthRefused, Message: msg}
	}

	id := domain.Identity{
		Name:  stringField(obj, "name"),
		Email: stringField(obj, "email"),
		Role:  stringField(obj, "role"),
	}
	if id.Name == "" {
		id.Name = domain.DefaultUserName
	}
	if id.Email == "" {
		id.Email = email
	}
	if id.Role == "" {
		id.Role = domain.DefaultUserRole
	}
	return AuthResult{Identity: id}, nil
}

type chatRequest struct {
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Mode      string `json:"mode"`
	Timestamp string `json:"timestamp"`
}

// isoMillis matches the ISO-8601 form with millisecond precision in UTC.
const isoMillis = "2006-01-02T15:04:05.000Z"

// SendChatMessage posts a user message to the surface's webhook and returns
// the text to display.
func (g *Gateway) SendChatMessage(ctx context.Context, text, senderID string, mode domain.ChatMode) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Message:   text,
		Sender:    senderID,
		Mode:      string(mode),
		Timestamp: g.now().UTC().Format(isoMillis),
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	name := "chat_" + string(mode)
	status, body, err := g.post(ctx, name, g.endpoints.Chat(mode), "application/json", bytes.NewReader(payload), true)
	if err != nil {
		return "", err
	}
	if !isOK(status) {
		return "", &StatusError{Endpoint: name, StatusCode: status}
	}

	reply := DecodeReply(body)
	g.logger.Debug("Chat reply decoded", "mode", mode, "kind", reply.Kind.String())
	return reply.Text(), nil
}
