package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	httpTracer             = otel.Tracer("spendlog/http")
	httpMeter              = otel.Meter("spendlog/http")
	httpRequestDuration, _ = httpMeter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	httpRequestTotal, _ = httpMeter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total HTTP requests"),
	)
	httpResponseSize, _ = httpMeter.Int64Histogram("http.server.response.body.size",
		metric.WithDescription("Response body size, mostly telling exports apart from API calls"),
		metric.WithUnit("By"),
	)
)

// Tracing creates OpenTelemetry spans and records HTTP metrics for each request.
// Metrics are labelled with the route pattern reported by Router rather than
// the raw path, so ids in /api/expenses/{id} do not explode label cardinality.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := httpTracer.Start(r.Context(), r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)
		defer span.End()

		ctx, slot := withRouteSlot(ctx)

		start := time.Now()
		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r.WithContext(ctx))
		elapsed := time.Since(start)

		status := wrapped.statusOrOK()
		route := routeName(slot)

		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.Int("http.response.status_code", status),
			attribute.String("http.route", route),
			attribute.Int64("http.response.body.size", wrapped.bytes),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		attrs := metric.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		httpRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
		httpRequestTotal.Add(ctx, 1, attrs)
		httpResponseSize.Record(ctx, wrapped.bytes, attrs)
	})
}
