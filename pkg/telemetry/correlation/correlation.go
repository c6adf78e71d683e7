// Package correlation joins persisted records back to the request that wrote
// them.
package correlation

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	obscontext "github.com/smallbiznis/workhub/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
)

type key struct{}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(key{}).(string); ok {
		return id
	}
	return ""
}

func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, key{}, id)
}

// Ensure returns ctx carrying a correlation id. The HTTP request id is reused
// when present, otherwise a ULID is minted.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := obscontext.RequestIDFromContext(ctx)
	if id == "" {
		id = ulid.Make().String()
	}
	return WithID(ctx, id), id
}

// Stamp adds correlation_id, trace_id, span_id and recorded_at to metadata.
// Keys already set by the caller win.
func Stamp(ctx context.Context, metadata map[string]any, at time.Time) map[string]any {
	if metadata == nil {
		metadata = map[string]any{}
	}
	ctx, id := Ensure(ctx)
	setIfAbsent(metadata, "correlation_id", id)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		setIfAbsent(metadata, "trace_id", sc.TraceID().String())
		setIfAbsent(metadata, "span_id", sc.SpanID().String())
	}
	setIfAbsent(metadata, "recorded_at", at.UTC().Format(time.RFC3339))
	return metadata
}

func setIfAbsent(metadata map[string]any, k, v string) {
	if _, ok := metadata[k]; !ok {
		metadata[k] = v
	}
}
