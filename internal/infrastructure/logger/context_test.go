package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func TestWithContext_AndFromContext(t *testing.T) {
	base := zap.NewNop()
	ctx := WithContext(context.Background(), base)

	assert.Equal(t, base, FromContext(ctx))
}

func TestFromContext_NoLogger(t *testing.T) {
	logger := FromContext(context.Background())

	// Absent logger falls back to a no-op, never nil
	assert.NotNil(t, logger)
}

func TestWithRequestID(t *testing.T) {
	base := zap.NewNop()

	ctx, enriched := WithRequestID(context.Background(), base, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.NotNil(t, enriched)
	assert.Equal(t, enriched, FromContext(ctx))
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestWithAgentID(t *testing.T) {
	base := zap.NewNop()

	ctx, enriched := WithAgentID(context.Background(), base, "a3f6f9d2")

	assert.Equal(t, "a3f6f9d2", GetAgentID(ctx))
	assert.NotNil(t, enriched)
}

func TestGetAgentID_Missing(t *testing.T) {
	assert.Empty(t, GetAgentID(context.Background()))
}

func TestWithTraceContext_NoSpan(t *testing.T) {
	base := zap.NewNop()

	enriched := WithTraceContext(context.Background(), base)

	// Without a span, should return the same logger
	assert.Equal(t, base, enriched)
}

func TestWithTraceContext_InvalidSpanContext(t *testing.T) {
	tp := noop.NewTracerProvider()
	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "test-span")
	defer span.End()

	base := zap.NewNop()

	enriched := WithTraceContext(ctx, base)
	assert.Equal(t, base, enriched)
}

func TestWithTraceContext_ValidSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "test-span")
	defer span.End()

	base := zap.NewNop()

	enriched := WithTraceContext(ctx, base)
	assert.NotEqual(t, base, enriched)
}
