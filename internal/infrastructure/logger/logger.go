package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// New creates a new zerolog logger based on config.
func New(cfg Config) zerolog.Logger {
	var output io.Writer = os.Stdout

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	level := parseLevel(cfg.Level)

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Warner surfaces pipeline advisories as warn-level log lines.
type Warner struct {
	logger zerolog.Logger
}

// NewWarner creates a Warner writing through the given logger.
func NewWarner(logger zerolog.Logger) *Warner {
	return &Warner{logger: logger}
}

// Warn logs one advisory with its structured fields.
func (w *Warner) Warn(msg string, fields map[string]any) {
	w.logger.Warn().Fields(fields).Msg(msg)
}
