package obs

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// RequestID returns the request id stored on ctx, if any.
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

// Time logs the duration of an operation at debug level and its error, if any, at warn level.
// Usage: defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			slog.WarnContext(ctx, "operation failed",
				slog.String(KeyRequestID, reqID),
				slog.String(KeyOp, name),
				slog.Int64(KeyDurationMS, dur.Milliseconds()),
				Error(*errp),
			)
			return
		}
		slog.DebugContext(ctx, "operation done",
			slog.String(KeyRequestID, reqID),
			slog.String(KeyOp, name),
			slog.Int64(KeyDurationMS, dur.Milliseconds()),
		)
	}
}
