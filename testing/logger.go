package testing

import (
	"slices"
	"sync"
	"testing"

	"github.com/arloliu/seatplan/internal/logger"
	"github.com/arloliu/seatplan/types"
)

// LogEntry is one record kept by a RecordingLogger.
type LogEntry struct {
	Level  string
	Msg    string
	Fields []any
}

// RecordingLogger writes through t.Logf and keeps every entry so tests can
// assert on what a component logged.
//
// The logger must not be used after the test returns.
type RecordingLogger struct {
	out *logger.TestLogger

	mu      sync.Mutex
	entries []LogEntry
}

var _ types.Logger = (*RecordingLogger)(nil)

// NewTestLogger creates a recording logger bound to t.
func NewTestLogger(t testing.TB) *RecordingLogger {
	return &RecordingLogger{out: logger.NewTest(t)}
}

// Entries returns a copy of every entry logged so far.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.entries)
}

// Has reports whether an entry with the given level ("debug", "info", "warn",
// "error") and message was logged.
func (l *RecordingLogger) Has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.ContainsFunc(l.entries, func(e LogEntry) bool {
		return e.Level == level && e.Msg == msg
	})
}

func (l *RecordingLogger) record(level, msg string, kv []any) {
	l.mu.Lock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Fields: slices.Clone(kv)})
	l.mu.Unlock()
}

func (l *RecordingLogger) Debug(msg string, keysAndValues ...any) {
	l.record("debug", msg, keysAndValues)
	l.out.Debug(msg, keysAndValues...)
}

func (l *RecordingLogger) Info(msg string, keysAndValues ...any) {
	l.record("info", msg, keysAndValues)
	l.out.Info(msg, keysAndValues...)
}

func (l *RecordingLogger) Warn(msg string, keysAndValues ...any) {
	l.record("warn", msg, keysAndValues)
	l.out.Warn(msg, keysAndValues...)
}

func (l *RecordingLogger) Error(msg string, keysAndValues ...any) {
	l.record("error", msg, keysAndValues)
	l.out.Error(msg, keysAndValues...)
}

// Fatal records the entry and fails the test.
func (l *RecordingLogger) Fatal(msg string, keysAndValues ...any) {
	l.record("fatal", msg, keysAndValues)
	l.out.Fatal(msg, keysAndValues...)
}
