// internal/logger/logger.go
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger the services are handed. Using an injected
// logger instead of the zerolog global keeps the core free of process-wide
// mutable state.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	// Use ConsoleWriter for human-readable, colorized output in development
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}
