package logger

import (
	"context"
	"sync/atomic"
)

type ctxKey struct{}

var defaultLogger atomic.Pointer[Logger]

// SetDefault replaces the logger FromContext returns for contexts that carry
// none, such as background work started outside an HTTP request.
func SetDefault(l Logger) {
	defaultLogger.Store(&l)
}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// AddFields stores a child of the context logger carrying fields, so later
// log lines for the same request include them without repeating them.
func AddFields(ctx context.Context, fields ...Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	return WithContext(ctx, FromContext(ctx).With(fields...))
}

// FromContext returns the logger stored in ctx, else the default logger.
// Before SetDefault is called the default discards everything.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return *l
	}
	return NewNop()
}
