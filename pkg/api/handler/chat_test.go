package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/domain"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/services"
)

type fakeChatService struct {
	mu        sync.Mutex
	fragments []string
	turns     []string
	pending   []bool
	failWith  error
}

func (s *fakeChatService) NewChat(sessionID string) *domain.Chat {
	return &domain.Chat{
		SessionID: sessionID,
		Messages:  []domain.ChatMessage{{Role: domain.ChatMessageRoleSystem, Content: "test"}},
	}
}

func (s *fakeChatService) ProcessTurn(_ context.Context, _ *domain.Chat, text string, consumePending bool, write services.FragmentWriter) error {
	s.mu.Lock()
	s.turns = append(s.turns, text)
	s.pending = append(s.pending, consumePending)
	s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}
	for _, fragment := range s.fragments {
		if err := write(fragment); err != nil {
			return err
		}
	}
	return nil
}

func dialWS(t *testing.T, serverURL, query string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + query
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func TestConnect_MissingSessionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(NewChat(&fakeChatService{}).Connect))
	defer server.Close()

	conn := dialWS(t, server.URL, "")
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "expected close 1008, got %v", err)
}

func TestConnect_StreamsFragmentsInOrder(t *testing.T) {
	svc := &fakeChatService{fragments: []string{"He", "llo ", "there"}}
	server := httptest.NewServer(http.HandlerFunc(NewChat(svc).Connect))
	defer server.Close()

	conn := dialWS(t, server.URL, "?session_id=session-1")
	defer conn.Close()

	payload := `{"text":"hello","session_id":"session-1"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))

	assert.Equal(t, "He", readText(t, conn))
	assert.Equal(t, "llo ", readText(t, conn))
	assert.Equal(t, "there", readText(t, conn))

	// the loop keeps serving turns on the same connection
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
	assert.Equal(t, "He", readText(t, conn))

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, []string{"hello", "hello"}, svc.turns)
	assert.Equal(t, []bool{true, true}, svc.pending)
}

func TestConnect_MalformedPayloadDegradesToPlainText(t *testing.T) {
	svc := &fakeChatService{fragments: []string{"ack"}}
	server := httptest.NewServer(http.HandlerFunc(NewChat(svc).Connect))
	defer server.Close()

	conn := dialWS(t, server.URL, "?session_id=session-1")
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not a json payload")))
	assert.Equal(t, "ack", readText(t, conn))

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Equal(t, []string{"not a json payload"}, svc.turns)
	assert.Equal(t, []bool{false}, svc.pending)
}

func TestConnect_TurnErrorReportedThenClosed(t *testing.T) {
	svc := &fakeChatService{failWith: errors.New("upstream exploded")}
	server := httptest.NewServer(http.HandlerFunc(NewChat(svc).Connect))
	defer server.Close()

	conn := dialWS(t, server.URL, "?session_id=session-1")
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"text":"hi","session_id":"session-1"}`)))

	assert.Contains(t, readText(t, conn), "ERROR: ")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection must be closed after the diagnostic")
}
