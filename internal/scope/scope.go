package scope

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// ErrUnresolved is returned when no principal can be determined for a request.
var ErrUnresolved = errors.New("principal_unresolved")

// Scope is the (principal, workspace) pair a settings read or write targets.
// It is built once per request and passed explicitly to services.
type Scope struct {
	PrincipalID snowflake.ID
	WorkspaceID *snowflake.ID
	Operator    bool
}

// Valid reports whether a principal was resolved.
func (s Scope) Valid() bool {
	return s.PrincipalID != 0
}

// Normalized drops the workspace for operator scopes.
func (s Scope) Normalized() Scope {
	if s.Operator {
		s.WorkspaceID = nil
	}
	return s
}

// WithoutWorkspace returns the tenant-wide variant of the scope.
func (s Scope) WithoutWorkspace() Scope {
	s.WorkspaceID = nil
	return s
}

// Workspace returns the workspace id or zero when tenant-wide.
func (s Scope) Workspace() snowflake.ID {
	if s.WorkspaceID == nil {
		return 0
	}
	return *s.WorkspaceID
}

type scopeKey struct{}

func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

func FromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok && s.Valid()
}

// For builds a scope from explicit identifiers. A zero workspace is tenant-wide.
func For(principalID, workspaceID snowflake.ID) Scope {
	s := Scope{PrincipalID: principalID}
	if workspaceID != 0 {
		ws := workspaceID
		s.WorkspaceID = &ws
	}
	return s
}
