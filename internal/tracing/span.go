package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikpietanze/Pressr/internal/metrics"
)

// StartRunSpan starts a span covering a whole load test run.
func StartRunSpan(ctx context.Context, tracer trace.Tracer, requests, concurrency int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "load test run")
	span.SetAttributes(
		attribute.Int("pressr.requests", requests),
		attribute.Int("pressr.concurrency", concurrency),
	)
	return ctx, span
}

// EndRunSpan finishes the run span with the headline numbers.
func EndRunSpan(span trace.Span, s metrics.Summary) {
	span.SetAttributes(
		attribute.Int64("pressr.total", s.Total),
		attribute.Int64("pressr.failures", s.Failures),
		attribute.Float64("pressr.requests_per_sec", s.RequestsPerSec),
	)
	span.SetStatus(codes.Ok, "")
	span.End()
}

// StartAttemptSpan starts a client span for one request attempt.
func StartAttemptSpan(ctx context.Context, tracer trace.Tracer, method, target string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", target),
	)
	return ctx, span
}

// EndAttemptSpan finishes an attempt span from its outcome.
func EndAttemptSpan(span trace.Span, o metrics.Outcome) {
	if o.Status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", o.Status))
	}
	if o.Failed() {
		span.SetAttributes(attribute.String("pressr.error_kind", string(o.Kind)))
		span.SetStatus(codes.Error, o.Detail)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
