// Package logger provides a simple logging interface for ssv components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// debugForced is flipped by EnableDebug (the --verbose flag).
var debugForced atomic.Bool

// EnableDebug turns on debug output for every env logger, regardless of SSV_DEBUG.
func EnableDebug() {
	debugForced.Store(true)
}

func debugEnabled() bool {
	return debugForced.Load() || os.Getenv("SSV_DEBUG") != ""
}

// envLogger implements Logger on top of logrus.
// Debug messages are only emitted when SSV_DEBUG is set or EnableDebug was called.
type envLogger struct {
	prefix string
	log    *logrus.Logger
}

// NewEnvLogger creates a stderr logger that respects the SSV_DEBUG environment variable.
// The prefix is prepended to all log messages (e.g., "[remove]" or "[keygen]").
func NewEnvLogger(prefix string) Logger {
	return NewWriterLogger(prefix, os.Stderr)
}

// NewWriterLogger is NewEnvLogger with an explicit destination.
func NewWriterLogger(prefix string, w io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	return &envLogger{prefix: prefix, log: l}
}

func (l *envLogger) format(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return msg
	}
	return l.prefix + " " + msg
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if debugEnabled() {
		l.log.Debug(l.format(format, args...))
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	l.log.Info(l.format(format, args...))
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	l.log.Warn(l.format(format, args...))
}

func (l *envLogger) Error(format string, args ...interface{}) {
	l.log.Error(l.format(format, args...))
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
type BufferLogger struct {
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "debug", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "info", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "warn", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "error", Message: fmt.Sprintf(format, args...)})
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.Messages = l.Messages[:0]
}

var defaultLogger = NewEnvLogger("")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultLogger = l
}
