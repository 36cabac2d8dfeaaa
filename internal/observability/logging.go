// Package observability carries request-scoped logging context through
// the call tree: the request id and authenticated user travel in the
// context and are attached to every log record emitted with the
// *Context helpers.
package observability

import (
	"context"
	"log/slog"
)

// LogContext holds structured logging context information.
type LogContext struct {
	RequestID string
	User      string
	Job       string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithUser adds the authenticated username to the context.
func WithUser(ctx context.Context, user string) context.Context {
	lc := extractLogContext(ctx)
	lc.User = user
	return context.WithValue(ctx, logContextKey, lc)
}

// WithJob adds a background job name to the context.
func WithJob(ctx context.Context, job string) context.Context {
	lc := extractLogContext(ctx)
	lc.Job = job
	return context.WithValue(ctx, logContextKey, lc)
}

// RequestIDFrom returns the request id carried by ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	return extractLogContext(ctx).RequestID
}

// UserFrom returns the authenticated username carried by ctx, or "".
func UserFrom(ctx context.Context) string {
	return extractLogContext(ctx).User
}

// extractLogContext retrieves or creates a LogContext from the context.
func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// getLogAttrs returns slog attributes from the context's LogContext.
func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.RequestID != "" {
		attrs = append(attrs, slog.String("request.id", lc.RequestID))
	}
	if lc.User != "" {
		attrs = append(attrs, slog.String("user", lc.User))
	}
	if lc.Job != "" {
		attrs = append(attrs, slog.String("job", lc.Job))
	}

	return attrs
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelInfo, msg, allAttrs...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelWarn, msg, allAttrs...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelError, msg, allAttrs...)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	contextAttrs := getLogAttrs(ctx)
	allAttrs := append(contextAttrs, attrs...)
	slog.LogAttrs(ctx, slog.LevelDebug, msg, allAttrs...)
}
