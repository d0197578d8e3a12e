package framework

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used throughout the harness. Both *log.Logger and
// *logrus.Logger satisfy it.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

type prefixedLogger struct {
	target Logger
	prefix string
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.target.Printf(p.prefix+message, args...)
}

// LoggerWithPrefix returns a Logger that prepends prefix to every message before passing it
// to target.
func LoggerWithPrefix(target Logger, prefix string) Logger {
	if target == nil {
		return NullLogger()
	}
	return prefixedLogger{target: target, prefix: prefix}
}

// CapturedMessage is one line of a test's debug output.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger keeps a test's debug output in memory until the test has finished, when the
// test logger decides whether to show it. It is safe for concurrent use. The zero value is
// ready to use.
type CapturingLogger struct {
	mu       sync.Mutex
	messages CapturedOutput

	// Clock, if set, is used instead of time.Now to timestamp messages.
	Clock func() time.Time
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	captured := CapturedMessage{Time: l.now(), Message: fmt.Sprintf(message, args...)}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, captured)
}

// Output returns a snapshot of everything logged so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.messages)
}

func (l *CapturingLogger) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

// Dump writes one line per message, each starting with prefix and the message's timestamp.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n", prefix, m.Time.Format(timestampFormat), m.Message)
	}
}
