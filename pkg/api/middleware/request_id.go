package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/logger"
)

// RequestID stamps each request's context with a generated id so log lines
// from the same request (or websocket connection) correlate.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.ContextWithRequestID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
