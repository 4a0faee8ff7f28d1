package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logEntry is planted in the context before the auth layer runs, so inner
// middleware can report the authenticated user back to the logger even though
// context values only flow downward.
type logEntry struct {
	userID string
}

const logEntryKey contextKey = "log_entry"

func reportUserID(ctx context.Context, userID string) {
	if entry, ok := ctx.Value(logEntryKey).(*logEntry); ok {
		entry.userID = userID
	}
}

// Logging logs every request: method, path, user ID, status and duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		entry := &logEntry{}
		r = r.WithContext(context.WithValue(r.Context(), logEntryKey, entry))

		next.ServeHTTP(rec, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"user_id", entry.userID, // empty on unauthenticated routes
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case rec.status >= 500:
			slog.Error("request failed", attrs...)
		case rec.status >= 400:
			slog.Warn("request rejected", attrs...)
		default:
			slog.Info("request ok", attrs...)
		}
	})
}
