package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestNewTracerNoEndpoint(t *testing.T) {
	tracer, shutdown := NewTracer(TraceConfig{ServiceName: "recall-test"})
	if tracer == nil {
		t.Fatal("NewTracer returned nil")
	}
	defer shutdown(context.Background())

	ctx, span := tracer.Start(context.Background(), "test_operation")
	if ctx == nil {
		t.Error("Start returned nil context")
	}
	span.End()
}

func TestTracerStartWithAttributes(t *testing.T) {
	tracer, shutdown := NewTracer(TraceConfig{})
	defer shutdown(context.Background())

	_, span := tracer.Start(context.Background(), "retrieve",
		attribute.String("view", "timeline"),
		attribute.Int("seeds", 5),
	)
	span.End()
}

func TestTracerRecordError(t *testing.T) {
	tracer, shutdown := NewTracer(TraceConfig{})
	defer shutdown(context.Background())

	_, span := tracer.Start(context.Background(), "op")
	defer span.End()

	// Both error and nil paths must not panic on a no-op span.
	tracer.RecordError(span, errors.New("boom"))
	tracer.RecordError(span, nil)
}
