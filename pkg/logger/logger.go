package logger

import (
	"io"
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (as found in wren.yaml) to a Level.
// Unknown names fall back to LevelInfo.
func ParseLevel(name string) Level {
	switch name {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	case "silent", "SILENT", "off":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// Logger provides structured logging with configurable levels
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	SetLevel(level Level)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value any
}

// F is a convenience function for creating fields
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// charmLogger implements Logger on top of charmbracelet/log
type charmLogger struct {
	mu    sync.Mutex
	level Level
	base  *charmlog.Logger
}

// NewLogger creates a new logger with the specified level and output
func NewLogger(level Level, out io.Writer) Logger {
	if out == nil {
		out = os.Stdout
	}
	base := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "wren",
	})
	l := &charmLogger{base: base}
	l.SetLevel(level)
	return l
}

// NewDefaultLogger creates a logger with Info level writing to stderr
func NewDefaultLogger() Logger {
	return NewLogger(LevelInfo, os.Stderr)
}

// NewSilentLogger creates a logger that outputs nothing
func NewSilentLogger() Logger {
	return NewLogger(LevelSilent, io.Discard)
}

// SetLevel sets the minimum logging level
func (l *charmLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.base.SetLevel(toCharm(level))
}

// WithFields returns a new logger with additional fields
func (l *charmLogger) WithFields(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &charmLogger{
		level: l.level,
		base:  l.base.With(keyvals(fields)...),
	}
}

// Debug logs a debug message
func (l *charmLogger) Debug(msg string, fields ...Field) {
	if l.enabled(LevelDebug) {
		l.base.Debug(msg, keyvals(fields)...)
	}
}

// Info logs an info message
func (l *charmLogger) Info(msg string, fields ...Field) {
	if l.enabled(LevelInfo) {
		l.base.Info(msg, keyvals(fields)...)
	}
}

// Warn logs a warning message
func (l *charmLogger) Warn(msg string, fields ...Field) {
	if l.enabled(LevelWarn) {
		l.base.Warn(msg, keyvals(fields)...)
	}
}

// Error logs an error message
func (l *charmLogger) Error(msg string, fields ...Field) {
	if l.enabled(LevelError) {
		l.base.Error(msg, keyvals(fields)...)
	}
}

func (l *charmLogger) enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level != LevelSilent && level >= l.level
}

func toCharm(level Level) charmlog.Level {
	switch level {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError, LevelSilent:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func keyvals(fields []Field) []any {
	if len(fields) == 0 {
		return nil
	}
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

// Global default logger
var defaultLogger = NewDefaultLogger()

// SetDefault sets the global default logger
func SetDefault(l Logger) {
	defaultLogger = l
}

// Default returns the global default logger
func Default() Logger {
	return defaultLogger
}

// Convenience functions using the default logger
func Debug(msg string, fields ...Field) {
	defaultLogger.Debug(msg, fields...)
}

func Info(msg string, fields ...Field) {
	defaultLogger.Info(msg, fields...)
}

func Warn(msg string, fields ...Field) {
	defaultLogger.Warn(msg, fields...)
}

func Error(msg string, fields ...Field) {
	defaultLogger.Error(msg, fields...)
}
