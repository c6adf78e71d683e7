package context

import (
	"context"
	"strings"
)

type ctxKey string

const (
	requestIDKey   ctxKey = "request_id"
	principalIDKey ctxKey = "principal_id"
	workspaceIDKey ctxKey = "workspace_id"
)

// WithRequestID stores the request correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, requestIDKey)
}

// WithPrincipal stores the resolved principal id for log enrichment.
func WithPrincipal(ctx context.Context, principalID string) context.Context {
	return withString(ctx, principalIDKey, principalID)
}

func PrincipalFromContext(ctx context.Context) string {
	return stringFrom(ctx, principalIDKey)
}

func WithWorkspace(ctx context.Context, workspaceID string) context.Context {
	return withString(ctx, workspaceIDKey, workspaceID)
}

func WorkspaceFromContext(ctx context.Context) string {
	return stringFrom(ctx, workspaceIDKey)
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
