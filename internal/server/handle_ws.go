package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// handleWSEvents streams the same session events as the SSE endpoint over a
// WebSocket. Messages from the client are ignored. The connection is closed
// with StatusGoingAway when the session ends.
func handleWSEvents(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ch := broker.Subscribe(sess.ID())
		defer broker.Unsubscribe(sess.ID(), ch)

		ctx, cancel := context.WithTimeout(conn.CloseRead(r.Context()), 30*time.Minute)
		defer cancel()

		first, err := stateMessage(sess)
		if err != nil {
			conn.Close(websocket.StatusInternalError, "internal error")
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, first.Data); err != nil {
			logger.Debug("websocket write failed", "session_id", sess.ID(), "error", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				logger.Debug("websocket stream ended", "session_id", sess.ID(), "error", ctx.Err())
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case <-sess.Done():
				conn.Close(websocket.StatusGoingAway, "session closed")
				return
			case msg := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, msg.Data); err != nil {
					logger.Debug("websocket write failed", "session_id", sess.ID(), "error", err)
					return
				}
			}
		}
	}
}
