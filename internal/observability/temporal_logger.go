package observability

import (
	"github.com/rs/zerolog"
	"go.temporal.io/sdk/log"
)

var (
	_ log.Logger     = (*TemporalLogger)(nil)
	_ log.WithLogger = (*TemporalLogger)(nil)
)

// TemporalLogger adapts zerolog to the Temporal SDK logger. Entries carry
// "component":"temporal-sdk"; the SDK's key-value pairs become fields.
type TemporalLogger struct {
	zl zerolog.Logger
}

func NewTemporalLogger(logger zerolog.Logger) *TemporalLogger {
	return &TemporalLogger{zl: logger.With().Str("component", "temporal-sdk").Logger()}
}

func emit(e *zerolog.Event, msg string, keyvals []any) {
	e.Fields(keyvals).Msg(msg)
}

func (l *TemporalLogger) Debug(msg string, keyvals ...any) { emit(l.zl.Debug(), msg, keyvals) }
func (l *TemporalLogger) Info(msg string, keyvals ...any)  { emit(l.zl.Info(), msg, keyvals) }
func (l *TemporalLogger) Warn(msg string, keyvals ...any)  { emit(l.zl.Warn(), msg, keyvals) }
func (l *TemporalLogger) Error(msg string, keyvals ...any) { emit(l.zl.Error(), msg, keyvals) }

// With returns a logger that adds keyvals to every entry.
func (l *TemporalLogger) With(keyvals ...any) log.Logger {
	return &TemporalLogger{zl: l.zl.With().Fields(keyvals).Logger()}
}
