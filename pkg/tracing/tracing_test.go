package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)

	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
	})

	return recorder
}

func TestSpanOutcomes(t *testing.T) {
	recorder := setupRecorder(t)

	_, failed := CreateChildSpan(context.Background(), "handler.user.GetAllUsers", nil)
	AddSpanError(failed, errors.New("database is locked"))
	failed.End()

	_, rejected := CreateChildSpan(context.Background(), "handler.user.CreateUser", nil)
	AddSpanRejection(rejected, errors.New("CPF already created"), 409)
	rejected.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "request.rejected", spans[1].Events()[0].Name)
}

func TestTraceIDs(t *testing.T) {
	setupRecorder(t)

	traceID, spanID := TraceIDs(context.Background())
	assert.Empty(t, traceID)
	assert.Empty(t, spanID)

	ctx, span := CreateChildSpan(context.Background(), "service.user.find_all", nil)
	defer span.End()

	traceID, spanID = TraceIDs(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), spanID)
}
