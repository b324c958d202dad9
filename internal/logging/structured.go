// Package logging provides the structured slog-based logger shared by every
// component, plus context propagation for trace and intent identifiers.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// StructuredLogger wraps slog with request/intent contextual information.
type StructuredLogger struct {
	slogger   *slog.Logger
	component string
}

// ContextKey is the type for context keys used by this package.
type ContextKey string

const (
	TraceIDKey    ContextKey = "trace_id"
	IntentIDKey   ContextKey = "intent_id"
	DataCenterKey ContextKey = "datacenter"
	HTTPMethodKey ContextKey = "http_method"
	HTTPPathKey   ContextKey = "http_path"
)

// LoggerConfig holds configuration for the structured logger.
type LoggerConfig struct {
	Component string
	Level     slog.Level
	AddSource bool
}

// NewStructuredLogger creates a new structured logger.
func NewStructuredLogger(config *LoggerConfig) *StructuredLogger {
	opts := &slog.HandlerOptions{
		Level:     config.Level,
		AddSource: config.AddSource,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return &StructuredLogger{
		slogger:   slog.New(handler),
		component: config.Component,
	}
}

// WithComponent returns a logger scoped to a specific component name.
func (l *StructuredLogger) WithComponent(component string) *StructuredLogger {
	return &StructuredLogger{slogger: l.slogger, component: component}
}

func (l *StructuredLogger) Info(ctx context.Context, msg string, fields ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, fields...)
}

func (l *StructuredLogger) Debug(ctx context.Context, msg string, fields ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, fields...)
}

func (l *StructuredLogger) Warn(ctx context.Context, msg string, fields ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, fields...)
}

func (l *StructuredLogger) Error(ctx context.Context, msg string, err error, fields ...slog.Attr) {
	if err != nil {
		fields = append(fields, slog.String("error", err.Error()))
	}
	l.log(ctx, slog.LevelError, msg, fields...)
}

// LogHTTP logs an inbound/outbound HTTP request-response pair.
func (l *StructuredLogger) LogHTTP(ctx context.Context, method, path string, status int, duration time.Duration, fields ...slog.Attr) {
	httpFields := []slog.Attr{
		slog.String("http_method", method),
		slog.String("http_path", path),
		slog.Int("http_status", status),
		slog.Int64("duration_ms", duration.Milliseconds()),
	}
	httpFields = append(httpFields, fields...)

	level := slog.LevelInfo
	if status >= 400 {
		level = slog.LevelWarn
	}
	if status >= 500 {
		level = slog.LevelError
	}
	l.log(ctx, level, fmt.Sprintf("%s %s", method, path), httpFields...)
}

func (l *StructuredLogger) log(ctx context.Context, level slog.Level, msg string, fields ...slog.Attr) {
	allFields := append(l.extractContextFields(ctx), fields...)
	l.slogger.LogAttrs(ctx, level, msg, allFields...)
}

func (l *StructuredLogger) extractContextFields(ctx context.Context) []slog.Attr {
	fields := []slog.Attr{slog.String("component", l.component)}
	if traceID := getStringFromContext(ctx, TraceIDKey); traceID != "" {
		fields = append(fields, slog.String("trace_id", traceID))
	}
	if intentID := getStringFromContext(ctx, IntentIDKey); intentID != "" {
		fields = append(fields, slog.String("intent_id", intentID))
	}
	if dc := getStringFromContext(ctx, DataCenterKey); dc != "" {
		fields = append(fields, slog.String("datacenter", dc))
	}
	return fields
}

func getStringFromContext(ctx context.Context, key ContextKey) string {
	if value := ctx.Value(key); value != nil {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}

// WithTraceID adds a trace ID to the context, generating one if empty.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		traceID = uuid.New().String()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithIntentID adds the Intent IRI's local ID to the context.
func WithIntentID(ctx context.Context, intentID string) context.Context {
	return context.WithValue(ctx, IntentIDKey, intentID)
}

// WithDataCenter adds the target datacenter identifier to the context.
func WithDataCenter(ctx context.Context, dc string) context.Context {
	return context.WithValue(ctx, DataCenterKey, dc)
}
