// Package logger provides a small logging interface so syswatch components
// can log without being coupled to a specific backend.
package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger defines the interface for logging operations. All methods accept a
// format string and arguments, like fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// envLogger logs to the standard logger. Debug messages are only printed
// when SYSWATCH_DEBUG is set.
type envLogger struct {
	prefix string
}

// NewEnvLogger creates a logger that respects the SYSWATCH_DEBUG environment
// variable. The prefix is prepended to all messages (e.g. "[sampler]").
func NewEnvLogger(prefix string) Logger {
	return &envLogger{prefix: prefix}
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if os.Getenv("SYSWATCH_DEBUG") != "" {
		log.Printf(l.prefix+" "+format, args...)
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	log.Printf(l.prefix+" "+format, args...)
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	log.Printf(l.prefix+" WARN: "+format, args...)
}

func (l *envLogger) Error(format string, args ...interface{}) {
	log.Printf(l.prefix+" ERROR: "+format, args...)
}

// noopLogger discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// Message is a captured log entry.
type Message struct {
	Level   string
	Message string
}

// BufferLogger captures messages for test assertions. Safe for use from
// multiple goroutines since the sampler logs from its tick loop.
type BufferLogger struct {
	mu       sync.Mutex
	messages []Message
}

// NewBufferLogger creates a logger that records messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (l *BufferLogger) append(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, Message{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.append("debug", format, args...)
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.append("info", format, args...)
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.append("warn", format, args...)
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.append("error", format, args...)
}

// Messages returns a copy of everything captured so far.
func (l *BufferLogger) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasLevel reports whether any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages() {
		if m.Level == level {
			return true
		}
	}
	return false
}
