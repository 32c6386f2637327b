package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/domain"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/logger"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/services"
)

type ChatService interface {
	NewChat(sessionID string) *domain.Chat
	ProcessTurn(ctx context.Context, chat *domain.Chat, text string, consumePending bool, write services.FragmentWriter) error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const closeWriteTimeout = time.Second

type chat struct {
	service ChatService
}

func NewChat(service ChatService) *chat {
	return &chat{service: service}
}

// Connect upgrades the request to a websocket and runs the relay loop for
// the connection's lifetime. Session ids are client-supplied opaque strings
// and are not authenticated; nothing ties an id to a particular connection.
func (c *chat) Connect(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "Upgrading websocket connection", logger.Err(err))
		return
	}
	defer conn.Close()

	if sessionID == "" {
		closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Missing session_id in query parameters.")
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(closeWriteTimeout))
		return
	}

	ctx := r.Context()
	slog.InfoContext(ctx, "Client connected", "sessionID", sessionID)

	c.relay(ctx, conn, sessionID)
}

// relay is the per-connection loop: receive a message, process the turn,
// stream fragments back, repeat. It is strictly sequential; the next turn
// does not start until the previous stream has drained.
func (c *chat) relay(ctx context.Context, conn *websocket.Conn, sessionID string) {
	chat := c.service.NewChat(sessionID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			// Disconnect at a blocking receive is normal termination.
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				slog.WarnContext(ctx, "Reading client message", "sessionID", sessionID, logger.Err(err))
			} else {
				slog.InfoContext(ctx, "Client disconnected", "sessionID", sessionID)
			}
			return
		}

		text, structured := parseChatRequest(raw)

		write := func(fragment string) error {
			return conn.WriteMessage(websocket.TextMessage, []byte(fragment))
		}

		if err := c.service.ProcessTurn(ctx, chat, text, structured, write); err != nil {
			// Disconnect at a blocking send is normal termination too.
			if isDisconnect(err) {
				slog.InfoContext(ctx, "Client disconnected mid-stream", "sessionID", sessionID)
				return
			}

			slog.ErrorContext(ctx, "Processing chat turn", "sessionID", sessionID, logger.Err(err))

			// Best-effort diagnostic before closing; not retried.
			_ = conn.WriteMessage(websocket.TextMessage, []byte("ERROR: "+err.Error()))
			return
		}
	}
}

func isDisconnect(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr) ||
		errors.Is(err, websocket.ErrCloseSent) ||
		errors.Is(err, net.ErrClosed)
}

// parseChatRequest decodes the structured client payload. Input that fails
// to parse degrades to plain text, and such turns never consume a pending
// attachment.
func parseChatRequest(raw []byte) (text string, structured bool) {
	var req domain.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return string(raw), false
	}
	return req.Text, true
}
