// Package logging provides structured logging for histfeed on top of
// zerolog. Retrieval runs emit machine-parseable JSON in pipelines and
// human-readable console lines at an interactive terminal; the format,
// level and destination are chosen once through Configure and every
// package logs through the shared default logger.
//
// Example usage:
//
//	// Log through the default logger
//	logging.Info().Str("symbol", "SPY").Msg("Fetching prices")
//
//	// Tag a context with retrieval metadata, log through it downstream
//	ctx = logging.WithSymbol(ctx, "SPY")
//	ctx = logging.WithProvider(ctx, "alphavantage")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Sub-range fetch failed")
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// defaultLogger is the process-wide logger. Configure replaces it.
	defaultLogger zerolog.Logger

	// Nop discards everything, handy as an injected logger in tests.
	Nop = zerolog.Nop()
)

func init() {
	// Before Configure runs, honor LOG_LEVEL and terminal detection so
	// library consumers that never call Configure still get sane output.
	defaultLogger = NewLoggerFromConfig(envConfig())
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, keeping zerolog's own
// global logger in step.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New creates a JSON logger on w at the current global level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// NewConsole creates a human-readable stderr logger.
func NewConsole() zerolog.Logger {
	return New(consoleWriter(os.Stderr, DefaultConfig()))
}

// NewJSON creates a structured JSON logger on w, stderr when w is nil.
func NewJSON(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return New(w)
}

// With opens a child-logger context on the default logger.
func With() zerolog.Context {
	return defaultLogger.With()
}

// Level returns a copy of the default logger restricted to level.
func Level(level zerolog.Level) zerolog.Logger {
	return defaultLogger.Level(level)
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts an info event on the default logger.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a warning event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error starts an error event on the default logger.
func Error() *zerolog.Event {
	return defaultLogger.Error()
}

// Fatal starts a fatal event on the default logger; the process exits
// after the message is written.
func Fatal() *zerolog.Event {
	return defaultLogger.Fatal()
}

// Panic starts a panic event on the default logger.
func Panic() *zerolog.Event {
	return defaultLogger.Panic()
}

// WithLevel starts an event at an arbitrary level on the default logger.
func WithLevel(level zerolog.Level) *zerolog.Event {
	return defaultLogger.WithLevel(level)
}

// Err starts an error-or-info event carrying err, following zerolog's
// convention of logging nil errors at info level.
func Err(err error) *zerolog.Event {
	return defaultLogger.Err(err)
}
