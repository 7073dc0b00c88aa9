package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggingConfig selects the level, encoding and destination of service logs.
type LoggingConfig struct {
	Level string
	// Format is json, or console/pretty for human-readable output.
	Format string
	// Output is stdout, stderr or a file path opened for append.
	Output     string
	AddSource  bool
	TimeFormat string
}

// NewLogger builds the process logger and sets the global zerolog level.
// An unusable Output falls back to stderr with a warning.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = cfg.TimeFormat
	if zerolog.TimeFieldFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	w, openErr := openOutput(cfg.Output)
	if human(cfg.Format) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: zerolog.TimeFieldFormat}
	}

	ctx := zerolog.New(w).With().Timestamp()
	if cfg.AddSource {
		ctx = ctx.Caller()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
	logger := ctx.Logger().Level(level)

	if openErr != nil {
		logger.Warn().Err(openErr).Str("output", cfg.Output).Msg("log file unavailable, writing to stderr")
	}
	return logger
}

func human(format string) bool {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return true
	}
	return false
}

func openOutput(dest string) (io.Writer, error) {
	switch strings.ToLower(dest) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr, err
	}
	return f, nil
}

// parseLevel accepts zerolog level names plus "warning". Unknown or empty
// names mean info.
func parseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return zerolog.WarnLevel
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel || level == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return level
}
