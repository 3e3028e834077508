package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Endpoints{
		Auth:        srv.URL + "/auth",
		ChatGeneral: srv.URL + "/chat/general",
		ChatCEI:     srv.URL + "/chat/cei",
		Upload:      srv.URL + "/upload",
	}, 0, WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	}))
}

func TestAuthenticateSuccess(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var req authRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "awa@apsfd-togo.tg", req.Email)
		assert.Equal(t, "secret", req.Password)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = io.WriteString(w, `{"success":true,"name":"Awa Mensah","role":"Auditor"}`)
	})

	res, err := gw.Authenticate(context.Background(), "awa@apsfd-togo.tg", "secret")
	require.NoError(t, err)
	assert.False(t, res.Lenient)
	assert.Equal(t, domain.Identity{Name: "Awa Mensah", Email: "awa@apsfd-togo.tg", Role: "Auditor"}, res.Identity)
}

func TestAuthenticatePlainTextBodySucceeds(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "Workflow was started")
	})

	res, err := gw.Authenticate(context.Background(), "kofi@apsfd-togo.tg", "pw")
	require.NoError(t, err)
	assert.True(t, res.Lenient)
	assert.Equal(t, domain.DefaultUserName, res.Identity.Name)
	assert.Equal(t, "kofi@apsfd-togo.tg", res.Identity.Email)
	assert.Equal(t, domain.DefaultUserRole, res.Identity.Role)
}

func TestAuthenticateRefused(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"error":"Account disabled"}`)
	})

	_, err := gw.Authenticate(context.Background(), "a@b.c", "pw")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthRefused, authErr.Kind)
	assert.Equal(t, "Account disabled", authErr.Message)
	assert.Equal(t, domain.AuthOutcomeRefused, authErr.Outcome())
}

func TestAuthenticateRefusedDefaultMessage(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":0}`)
	})

	_, err := gw.Authenticate(context.Background(), "a@b.c", "pw")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, MsgAuthRefused, authErr.Message)
}

func TestAuthenticateNonOK(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	_, err := gw.Authenticate(context.Background(), "a@b.c", "pw")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthUnavailable, authErr.Kind)
	assert.Equal(t, MsgAuthUnavailable, authErr.Message)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestAuthenticateNetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gw := New(Endpoints{Auth: url}, 0)
	_, err := gw.Authenticate(context.Background(), "a@b.c", "pw")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AuthNetwork, authErr.Kind)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestSendChatMessageRequest(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/cei", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, chatRequest{
			Message:   "Client 1042 dossier",
			Sender:    "awa@apsfd-togo.tg",
			Mode:      "cei",
			Timestamp: "2026-03-14T09:26:53.589Z",
		}, req)
		_, _ = io.WriteString(w, `{"output":"Dossier found","text":"ignored"}`)
	})

	text, err := gw.SendChatMessage(context.Background(), "Client 1042 dossier", "awa@apsfd-togo.tg", domain.ChatCEI)
	require.NoError(t, err)
	assert.Equal(t, "Dossier found", text)
}

func TestSendChatMessagePlainText(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "Le ratio recommandé est 20%.")
	})

	text, err := gw.SendChatMessage(context.Background(), "ratio?", "u", domain.ChatGeneral)
	require.NoError(t, err)
	assert.Equal(t, "Le ratio recommandé est 20%.", text)
}

func TestSendChatMessageNonOK(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := gw.SendChatMessage(context.Background(), "hi", "u", domain.ChatGeneral)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "chat_general", statusErr.Endpoint)
}

func TestSubmitFilesMultipart(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		headers := r.MultipartForm.File[UploadField]
		require.Len(t, headers, 2)
		assert.Equal(t, "report.pdf", headers[0].Filename)
		assert.Equal(t, "application/pdf", headers[0].Header.Get("Content-Type"))
		assert.Equal(t, `loans "q1".csv`, headers[1].Filename)

		f, err := headers[1].Open()
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,2\n", string(data))
		w.WriteHeader(http.StatusOK)
	})

	err := gw.SubmitFiles(context.Background(), []domain.PendingFile{
		domain.NewPendingFile("report.pdf", "application/pdf", []byte("%PDF-1.4")),
		domain.NewPendingFile(`loans "q1".csv`, "text/csv", []byte("a,b\n1,2\n")),
	})
	require.NoError(t, err)
}

func TestSubmitFilesFailureAndEmpty(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	gw := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	require.ErrorIs(t, gw.SubmitFiles(context.Background(), nil), ErrNoFiles)
	assert.Equal(t, int32(0), calls.Load())

	err := gw.SubmitFiles(context.Background(), []domain.PendingFile{
		domain.NewPendingFile("a.csv", "text/csv", []byte("x")),
	})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, int32(1), calls.Load())
}
