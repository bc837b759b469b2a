package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey keeps context values private to this package.
type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
)

// WithLogger stores logger in the context. Downstream code retrieves it
// with FromContext or Ctx, so a retrieval run can thread one tagged logger
// through every layer it touches.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the default logger when
// ctx carries none.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx is shorthand for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithRequestID tags the context and its logger with a request ID so every
// event of one Get call shares a correlation key.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return WithField(ctx, "request_id", requestID)
}

// RequestID returns the request ID stored by WithRequestID, or empty.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithField returns a context whose logger carries one extra field.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := appendField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithFields returns a context whose logger carries all given fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	zctx := FromContext(ctx).With()
	for key, value := range fields {
		zctx = appendField(zctx, key, value)
	}
	logger := zctx.Logger()
	return WithLogger(ctx, &logger)
}

// WithSymbol tags the context logger with the ticker symbol being
// processed.
func WithSymbol(ctx context.Context, symbol string) context.Context {
	return WithField(ctx, "symbol", symbol)
}

// WithProvider tags the context logger with the data provider in use.
func WithProvider(ctx context.Context, providerID string) context.Context {
	return WithField(ctx, "provider", providerID)
}

// WithOperation tags the context logger with the operation name, e.g.
// "price_fetch" or "cache_load".
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// WithError tags the context logger with err. A nil err leaves the context
// untouched.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return WithField(ctx, "error", err)
}
