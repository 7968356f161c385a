// Package logging provides the zerolog-backed implementation of the
// application's run logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/planfab/aps-engine/internal/infrastructure/config"
)

// ZerologRunLogger adapts a zerolog.Logger to the application's
// RunLogger interface
type ZerologRunLogger struct {
	logger zerolog.Logger
}

// NewRunLogger builds a run logger from the logging config
func NewRunLogger(cfg config.LoggingConfig) *ZerologRunLogger {
	var out io.Writer = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}
	if cfg.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	return &ZerologRunLogger{logger: logger}
}

// NewRunLoggerFromZerolog wraps an existing zerolog logger
func NewRunLoggerFromZerolog(logger zerolog.Logger) *ZerologRunLogger {
	return &ZerologRunLogger{logger: logger}
}

// Log emits one structured log event
func (l *ZerologRunLogger) Log(level, message string, metadata map[string]interface{}) {
	event := l.logger.WithLevel(parseLevel(level))
	for key, value := range metadata {
		event = event.Interface(key, value)
	}
	event.Msg(message)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
