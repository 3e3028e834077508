package live

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 10 * time.Second

// Serve upgrades the request and streams the session's events to the tab
// until the client goes away or the session is closed. Messages sent by the
// client are ignored.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string, originPatterns []string) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		h.logger.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}

	sub := h.Subscribe(sessionID)
	defer h.Unsubscribe(sub)

	// CloseRead discards client frames and cancels ctx once the peer closes.
	ctx := ws.CloseRead(r.Context())

	reason := h.pump(ctx, ws, sub)
	if closeErr := ws.Close(websocket.StatusNormalClosure, reason); closeErr != nil {
		h.logger.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
	}
	h.logger.Info("Live connection ended", "session_id", sessionID, "reason", reason)
}

func (h *Hub) pump(ctx context.Context, ws *websocket.Conn, sub *Subscription) string {
	for {
		select {
		case <-ctx.Done():
			return "client gone"
		case ev, ok := <-sub.Events():
			if !ok {
				return "session closed"
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, ws, ev)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					h.logger.Debug("WebSocket write error", "error", err, "session_id", sub.SessionID)
				}
				return "write failed"
			}
		}
	}
}
