// Package logging provides leveled, structured logging with correlation IDs
// carried in a context.Context. It is a thin layer over logrus that keeps a
// printf-style API for call sites.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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
	default:
		return "UNKNOWN"
	}
}

func (l Level) logrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// ParseLevel parses a log level string. Unknown values map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// contextKey is used for storing values in context.
type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	fieldsKey        contextKey = "log_fields"
)

// CorrelationIDField is the field name correlation IDs are logged under.
const CorrelationIDField = "correlation_id"

// Entry is the shape of a JSON log line.
type Entry struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger is a structured logger with level support.
// Loggers derived with WithField share output, level and format with their parent.
type Logger struct {
	base  *logrus.Logger
	entry *logrus.Entry
}

var defaultLogger = New()

// New creates a logger writing to stderr. LOG_LEVEL and LOG_FORMAT=json
// set the initial level and format.
func New() *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")).logrus())

	l := &Logger{base: base, entry: logrus.NewEntry(base)}
	l.SetJSON(os.Getenv("LOG_FORMAT") == "json")
	return l
}

// SetOutput sets the output destination for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.base.SetOutput(w)
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.base.SetLevel(level.logrus())
}

// GetLevel returns the minimum log level.
func (l *Logger) GetLevel() Level {
	switch l.base.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return LevelError
	default:
		return LevelInfo
	}
}

// SetJSON switches between JSON and human-readable output.
func (l *Logger) SetJSON(enabled bool) {
	if enabled {
		l.base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			DataKey:         "fields",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "ts",
				logrus.FieldKeyMsg:  "msg",
			},
		})
		return
	}
	l.base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
}

// Configure applies a level and a format ("json" or "text").
func (l *Logger) Configure(level, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		l.SetJSON(false)
	case "json":
		l.SetJSON(true)
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", format)
	}
	l.SetLevel(ParseLevel(level))
	return nil
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{base: l.base, entry: l.entry.WithField(key, value)}
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{base: l.base, entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithError returns a new logger carrying err in the "error" field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{base: l.base, entry: l.entry.WithError(err)}
}

func (l *Logger) log(ctx context.Context, level Level, format string, args ...interface{}) {
	entry := l.entry
	if ctx != nil {
		if id, ok := ctx.Value(correlationIDKey).(string); ok && id != "" {
			entry = entry.WithField(CorrelationIDField, id)
		}
		if fields, ok := ctx.Value(fieldsKey).(map[string]interface{}); ok && len(fields) > 0 {
			entry = entry.WithFields(logrus.Fields(fields))
		}
	}
	entry.Logf(level.logrus(), format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(context.Background(), LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(context.Background(), LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(context.Background(), LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(context.Background(), LevelError, format, args...)
}

// DebugContext logs a debug message with context.
func (l *Logger) DebugContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelDebug, format, args...)
}

// InfoContext logs an info message with context.
func (l *Logger) InfoContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelInfo, format, args...)
}

// WarnContext logs a warning message with context.
func (l *Logger) WarnContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelWarn, format, args...)
}

// ErrorContext logs an error message with context.
func (l *Logger) ErrorContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelError, format, args...)
}

// --- Context helpers ---

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// GetCorrelationID retrieves the correlation ID from context.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithLogFields returns a new context with additional log fields.
func WithLogFields(ctx context.Context, fields map[string]interface{}) context.Context {
	existing := make(map[string]interface{})
	if ctxFields, ok := ctx.Value(fieldsKey).(map[string]interface{}); ok {
		for k, v := range ctxFields {
			existing[k] = v
		}
	}
	for k, v := range fields {
		existing[k] = v
	}
	return context.WithValue(ctx, fieldsKey, existing)
}

// --- Package-level functions using default logger ---

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Debug logs a debug message using the default logger.
func Debug(format string, args ...interface{}) {
	defaultLogger.log(context.Background(), LevelDebug, format, args...)
}

// Info logs an info message using the default logger.
func Info(format string, args ...interface{}) {
	defaultLogger.log(context.Background(), LevelInfo, format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...interface{}) {
	defaultLogger.log(context.Background(), LevelWarn, format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...interface{}) {
	defaultLogger.log(context.Background(), LevelError, format, args...)
}

// DebugContext logs a debug message with context using the default logger.
func DebugContext(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.log(ctx, LevelDebug, format, args...)
}

// InfoContext logs an info message with context using the default logger.
func InfoContext(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.log(ctx, LevelInfo, format, args...)
}

// WarnContext logs a warning message with context using the default logger.
func WarnContext(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.log(ctx, LevelWarn, format, args...)
}

// ErrorContext logs an error message with context using the default logger.
func ErrorContext(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.log(ctx, LevelError, format, args...)
}
