package observability

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
)

// WithRequestID stores the request id used to correlate log lines.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns "" when no request id was stored.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithUserID records the authenticated user for log correlation.
// Authorization decisions use auth.UserIDFromContext, not this value.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns "" when no user was recorded.
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// LoggerFromContext returns logger with the request and user ids ctx carries.
// The result is a pointer so it can be logged through directly.
func LoggerFromContext(ctx context.Context, logger zerolog.Logger) *zerolog.Logger {
	lc := logger.With()
	for _, f := range [...]struct {
		name string
		key  ctxKey
	}{{"request_id", requestIDKey}, {"user_id", userIDKey}} {
		if v := stringValue(ctx, f.key); v != "" {
			lc = lc.Str(f.name, v)
		}
	}
	l := lc.Logger()
	return &l
}
