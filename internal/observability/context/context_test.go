package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestScopedValues(t *testing.T) {
	ctx := WithRequestID(context.Background(), " req-1 ")
	ctx = WithPrincipal(ctx, "42")
	ctx = WithWorkspace(ctx, "")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "42", PrincipalFromContext(ctx))
	assert.Empty(t, WorkspaceFromContext(ctx))
}
