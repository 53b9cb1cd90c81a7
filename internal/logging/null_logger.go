package logging

import (
	"fmt"
	"sync"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// NullLogger discards all log messages.
type NullLogger struct{}

// NewNullLogger creates a new NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}
func (l *NullLogger) Info(format string, args ...interface{})    {}
func (l *NullLogger) Error(format string, args ...interface{})   {}

// RecordingLogger keeps every formatted message in memory, tagged by level.
// Tests use it to assert on what an operation logged.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// Entry is one recorded log line.
type Entry struct {
	Level   string
	Message string
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Verbose(format string, args ...interface{}) {
	l.record("verbose", format, args)
}

func (l *RecordingLogger) Info(format string, args ...interface{}) {
	l.record("info", format, args)
}

func (l *RecordingLogger) Error(format string, args ...interface{}) {
	l.record("error", format, args)
}

// Entries returns a copy of the recorded lines in order.
func (l *RecordingLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Messages returns the recorded messages of one level.
func (l *RecordingLogger) Messages(level string) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func (l *RecordingLogger) record(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

var (
	_ cnx.Logger = (*NullLogger)(nil)
	_ cnx.Logger = (*RecordingLogger)(nil)
)
