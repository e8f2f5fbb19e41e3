// Package logtrace provides logging and tracing utilities for the client pipeline.
// It integrates with zerolog for structured logging and tags every logical call with a
// request ID so the round trips of one paginated fetch can be told apart in the log.
package logtrace

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with Unix timestamp format.
// Configures zerolog to output to stderr with timestamps at info level.
func InitLogger() {
	InitLoggerTo(os.Stderr)
}

// InitLoggerTo is InitLogger with an explicit destination.
func InitLoggerTo(w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.DefaultContextLogger = &log.Logger
	log.Logger = zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// SetDebug switches the global logger between debug and info level.
func SetDebug(debug bool) {
	if debug {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
		return
	}
	log.Logger = log.Logger.Level(zerolog.InfoLevel)
}
