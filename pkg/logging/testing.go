package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures JSON log output for assertions.
type TestLogger struct {
	Logger *zerolog.Logger
	buf    *bytes.Buffer
}

// NewTestLogger creates a trace-level logger writing into a buffer. The
// global level is widened to trace for the test and restored on cleanup.
func NewTestLogger(tb testing.TB) *TestLogger {
	tb.Helper()

	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	tb.Cleanup(func() {
		zerolog.SetGlobalLevel(prev)
	})

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Logger()

	return &TestLogger{Logger: &logger, buf: buf}
}

// Capture swaps the default logger for a capturing one until the test
// ends, so code that logs through the package-level helpers can be
// asserted on.
func Capture(tb testing.TB) *TestLogger {
	tb.Helper()

	prev := *Default()
	tl := NewTestLogger(tb)
	SetDefault(*tl.Logger)
	tb.Cleanup(func() {
		SetDefault(prev)
	})
	return tl
}

// Silence discards all default-logger output until the test ends.
func Silence(tb testing.TB) {
	tb.Helper()

	prev := *Default()
	SetDefault(zerolog.Nop())
	tb.Cleanup(func() {
		SetDefault(prev)
	})
}

// Output returns everything logged so far.
func (tl *TestLogger) Output() string {
	return tl.buf.String()
}

// Lines splits the captured output into one string per event.
func (tl *TestLogger) Lines() []string {
	out := strings.TrimSpace(tl.Output())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Entries decodes each captured event into a field map, skipping lines
// that are not JSON (console-formatted output).
func (tl *TestLogger) Entries() []map[string]any {
	var entries []map[string]any
	for _, line := range tl.Lines() {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Contains reports whether the captured output contains substr.
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// Count returns the number of captured events.
func (tl *TestLogger) Count() int {
	return len(tl.Lines())
}

// Reset discards everything captured so far.
func (tl *TestLogger) Reset() {
	tl.buf.Reset()
}
