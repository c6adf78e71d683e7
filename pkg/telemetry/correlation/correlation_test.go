package correlation

import (
	"context"
	"testing"
	"time"

	obscontext "github.com/smallbiznis/workhub/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestStampKeepsExistingKeys(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := WithID(context.Background(), "cid-1")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))

	md := Stamp(ctx, map[string]any{"coupon_code": "SAVE10", "recorded_at": "keep"}, at)

	assert.Equal(t, "cid-1", md["correlation_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", md["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", md["span_id"])
	assert.Equal(t, "keep", md["recorded_at"])
	assert.Equal(t, "SAVE10", md["coupon_code"])
}

func TestStampReusesRequestID(t *testing.T) {
	ctx := obscontext.WithRequestID(context.Background(), "req-42")
	md := Stamp(ctx, nil, time.Now())
	assert.Equal(t, "req-42", md["correlation_id"])
}

func TestStampGeneratesCorrelationID(t *testing.T) {
	md := Stamp(context.Background(), nil, time.Now())
	assert.Len(t, md["correlation_id"], 26)
	assert.NotContains(t, md, "trace_id")
}
