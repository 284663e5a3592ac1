package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	tenantIDKey
	userIDKey
)

// WithContext attaches a logger to the context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the attached logger or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request id on the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithIdentity records the tenant and acting user on the context
func WithIdentity(ctx context.Context, tenantID, userID string) context.Context {
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	return context.WithValue(ctx, userIDKey, userID)
}

// RequestID returns the request id, or ""
func RequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// TenantID returns the tenant id, or ""
func TenantID(ctx context.Context) string { return stringValue(ctx, tenantIDKey) }

// UserID returns the acting user id, or ""
func UserID(ctx context.Context) string { return stringValue(ctx, userIDKey) }

func stringValue(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// Fields returns the request-scoped fields present on ctx: trace and span ids
// of the active span plus request, tenant and user ids.
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()))
	}
	for _, kv := range []struct {
		name string
		key  ctxKey
	}{{"request_id", requestIDKey}, {"tenant_id", tenantIDKey}, {"user_id", userIDKey}} {
		if v := stringValue(ctx, kv.key); v != "" {
			fields = append(fields, zap.String(kv.name, v))
		}
	}
	return fields
}

// L returns the context's logger enriched with Fields(ctx).
//
//	logger.L(ctx).Info("submission approved", zap.String("submission_id", id))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds Fields(ctx) to base
func Enrich(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	if fields := Fields(ctx); len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}
