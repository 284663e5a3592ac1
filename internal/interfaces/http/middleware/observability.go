package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request with otelgin. Health checks are
// not traced.
func Tracing(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	opts = append(opts, otelgin.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/health"
	}))
	return otelgin.Middleware(serviceName, opts...)
}

// SpanAttributes copies request id and identity onto the active span. It
// belongs after Authenticate.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			attrs := []attribute.KeyValue{attribute.String("request_id", GetRequestID(c))}
			if id, ok := GetIdentity(c); ok {
				attrs = append(attrs,
					attribute.String("tenant_id", id.TenantID.String()),
					attribute.String("user_id", id.UserID))
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}

var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetrics records request count and latency by route, method and status class
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(httpDurationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	inflight, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create active requests counter: %w", err)
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		method := attribute.String("http.method", c.Request.Method)
		inflight.Add(ctx, 1, metric.WithAttributes(method))
		defer inflight.Add(ctx, -1, metric.WithAttributes(method))

		c.Next()

		attrs := metric.WithAttributes(
			method,
			attribute.String("http.route", routeOf(c)),
			attribute.String("http.status_class", StatusClass(c.Writer.Status())),
		)
		requests.Add(ctx, 1, attrs)
		duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}, nil
}

// StatusClass groups a status code as "2xx", "4xx" and so on
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// Profiling attaches route and method pyroscope labels to the goroutines
// serving a request. Health and docs endpoints are skipped.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || strings.HasPrefix(path, "/swagger") {
			c.Next()
			return
		}
		labels := pyroscope.Labels("route", routeOf(c), "method", c.Request.Method)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
