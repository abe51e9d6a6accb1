package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span is a logical unit of work, used by background workers whose jobs
// outlive the HTTP request that queued them.
type Span struct {
	logger *slog.Logger
	start  time.Time
}

// StartSpan derives a child span from the context. The returned context
// carries a logger enriched with trace_id, span_id, and span_name, so
// everything logged inside the span correlates. A context with no trace yet
// gets a fresh trace id.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx)

	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
		ctx = WithTraceID(ctx, traceID)
		logger = logger.With(slog.String("trace_id", traceID))
	}

	spanID := uuid.NewString()
	logger = logger.With(
		slog.String("span_id", spanID),
		slog.String("span_name", name),
	)
	if parent := SpanIDFromContext(ctx); parent != "" {
		logger = logger.With(slog.String("parent_span_id", parent))
	}

	ctx = WithLogger(ctx, logger)
	ctx = WithSpanID(ctx, spanID)

	return ctx, &Span{logger: logger, start: time.Now()}
}

// End emits a completion line with the span's wall-clock duration.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.logger.Info("span completed", slog.Duration("duration", time.Since(s.start)))
}
