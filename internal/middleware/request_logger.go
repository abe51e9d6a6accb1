package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/streamia/backend/internal/logging"
)

// statusRecorder captures the status code and body size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(p []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(p)
	rec.bytes += int64(n)
	return n, err
}

func (rec *statusRecorder) Status() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

// RequestLogger assigns every request an id, stores a request-scoped logger
// on the context, and emits one completion line per request. Panics in
// handlers are recovered and turned into a 500. An inbound X-Request-ID is
// honoured so ids stay stable across the reverse proxy; the id is echoed on
// the response either way.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			reqLogger := base.With(
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)

			ctx := logging.WithLogger(r.Context(), reqLogger)
			ctx = logging.WithRequestID(ctx, requestID)

			rec := &statusRecorder{ResponseWriter: w}

			defer func() {
				if p := recover(); p != nil {
					reqLogger.Error("panic recovered", "panic", p)
					http.Error(rec, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}

				// Probes hit /healthz constantly; keep them out of the info stream.
				level := slog.LevelInfo
				if r.URL.Path == "/healthz" {
					level = slog.LevelDebug
				}
				reqLogger.Log(r.Context(), level, "request completed",
					slog.Int("status", rec.Status()),
					slog.Int64("bytes", rec.bytes),
					slog.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}
