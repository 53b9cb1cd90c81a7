package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// ConsoleLogger writes log lines to a writer, stderr by default.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	out     io.Writer
	verbose bool
	mu      sync.Mutex
}

// NewConsoleLogger creates a ConsoleLogger writing to stderr.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewWriterLogger(os.Stderr, verbose)
}

// NewWriterLogger creates a ConsoleLogger writing to out.
func NewWriterLogger(out io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		out:     out,
		verbose: verbose,
	}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write("[VERBOSE] ", format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write("[ERROR] ", format, args)
}

// IsVerbose reports whether Verbose output is enabled.
func (l *ConsoleLogger) IsVerbose() bool {
	return l.verbose
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	fmt.Fprint(l.out, prefix+msg+"\n")
}

// OrNull returns logger, or a NullLogger when logger is nil.
func OrNull(logger cnx.Logger) cnx.Logger {
	if logger == nil {
		return NewNullLogger()
	}
	return logger
}

var _ cnx.Logger = (*ConsoleLogger)(nil)
