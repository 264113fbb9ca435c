package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextKey is the type for context keys
type ContextKey string

// RequestIDKey is the context key for request ID
const RequestIDKey ContextKey = "request_id"

// WithRequestID returns a copy of ctx carrying id as its request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// NewRequestContext stamps a freshly generated request ID on ctx.
func NewRequestContext(ctx context.Context) context.Context {
	return WithRequestID(ctx, uuid.New().String())
}

// GetRequestID returns the request ID on ctx, or "".
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithContext creates a logger carrying the request_id stored in ctx, if any.
func WithContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	if id := GetRequestID(ctx); id != "" {
		return l.With(zap.String("request_id", id))
	}
	return l
}
