package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"
)

// SlogLogger implements Logger writing JSON records to an arbitrary writer.
// It backs tests and one-off tools that do not need CentralLogger routing.
type SlogLogger struct {
	logger   *slog.Logger
	level    slog.Level
	module   string
	timezone *time.Location
	fields   []Field
}

// NewSlogLogger creates a new slog-based logger with JSON output
func NewSlogLogger(writer io.Writer, level LogLevel, timezone *time.Location) *SlogLogger {
	if writer == nil {
		writer = os.Stdout
	}
	if timezone == nil {
		timezone = time.UTC
	}

	lvl := parseSlogLevel(level)
	return &SlogLogger{
		logger:   slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: lvl})),
		level:    lvl,
		timezone: timezone,
	}
}

// Module returns a logger scoped to a specific module
func (l *SlogLogger) Module(name string) Logger {
	if l == nil {
		return nil
	}

	moduleName := name
	if l.module != "" {
		moduleName = l.module + "." + name
	}

	clone := *l
	clone.module = moduleName
	clone.fields = slices.Clone(l.fields)
	return &clone
}

func (l *SlogLogger) Trace(msg string, fields ...Field) { l.logAt(traceLevelValue, msg, fields) }
func (l *SlogLogger) Debug(msg string, fields ...Field) { l.logAt(slog.LevelDebug, msg, fields) }
func (l *SlogLogger) Info(msg string, fields ...Field)  { l.logAt(slog.LevelInfo, msg, fields) }
func (l *SlogLogger) Warn(msg string, fields ...Field)  { l.logAt(slog.LevelWarn, msg, fields) }
func (l *SlogLogger) Error(msg string, fields ...Field) { l.logAt(slog.LevelError, msg, fields) }

// Log logs a message with explicit level
func (l *SlogLogger) Log(level LogLevel, msg string, fields ...Field) {
	l.logAt(parseSlogLevel(level), msg, fields)
}

// With returns a new logger with accumulated fields
func (l *SlogLogger) With(fields ...Field) Logger {
	if l == nil {
		return nil
	}
	clone := *l
	clone.fields = slices.Concat(l.fields, fields)
	return &clone
}

// WithContext returns a logger carrying the trace ID from ctx, if any
func (l *SlogLogger) WithContext(ctx context.Context) Logger {
	if l == nil {
		return nil
	}
	if traceID := getTraceIDFromContext(ctx); traceID != "" {
		return l.With(String(traceIDKey, traceID))
	}
	return l
}

// Flush is a no-op; the caller owns the writer
func (l *SlogLogger) Flush() error {
	return nil
}

func (l *SlogLogger) logAt(level slog.Level, msg string, fields []Field) {
	if l == nil || level < l.level {
		return
	}
	emit(l.logger, level, l.module, msg, l.fields, fields)
}
