package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "cpfregistry"

// CreateChildSpan starts a span under whatever span ctx carries.
func CreateChildSpan(ctx context.Context, name string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddSpanError marks the span as failed. Use it for server side failures only.
func AddSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddSpanRejection notes a request refused for a caller mistake. The span status stays unset.
func AddSpanRejection(span trace.Span, err error, status int) {
	span.AddEvent("request.rejected", trace.WithAttributes(
		attribute.String("rejection.reason", err.Error()),
		attribute.Int("http.status_code", status),
	))
}

// TraceIDs returns the trace and span ids carried by ctx, or empty strings.
func TraceIDs(ctx context.Context) (traceID string, spanID string) {
	sc := trace.SpanContextFromContext(ctx)

	if !sc.IsValid() {
		return "", ""
	}

	return sc.TraceID().String(), sc.SpanID().String()
}
