package scope

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/workhub/internal/config"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Request carries what the hosting layer knows about the caller.
type Request struct {
	// Actor is the authenticated principal, nil for anonymous requests.
	Actor *principaldomain.User
	// PrincipalID overrides principal inference when set.
	PrincipalID *snowflake.ID
	// WorkspaceID overrides the current workspace when set.
	WorkspaceID     *snowflake.ID
	IgnoreWorkspace bool
}

type ResolverParams struct {
	fx.In

	Log  *zap.Logger
	Cfg  config.Config
	Repo principaldomain.Repository
}

type Resolver struct {
	log  *zap.Logger
	mode string
	repo principaldomain.Repository
}

func NewResolver(p ResolverParams) *Resolver {
	return &Resolver{
		log:  p.Log.Named("scope.resolver"),
		mode: p.Cfg.Mode,
		repo: p.Repo,
	}
}

// Resolve infers the target principal and workspace.
//
// An explicit principal wins. Otherwise staff act for the tenant that created
// them and everyone else acts for themselves. Anonymous callers fall back to
// the operator in SaaS mode or the single tenant otherwise. The operator is
// never workspace scoped; tenants default to their current workspace.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Scope, error) {
	principal, err := r.principal(ctx, req)
	if err != nil {
		return Scope{}, err
	}
	if principal == nil {
		return Scope{}, ErrUnresolved
	}

	s := Scope{PrincipalID: principal.ID, Operator: principal.IsOperator()}
	switch {
	case s.Operator, req.IgnoreWorkspace:
		s.WorkspaceID = nil
	case req.WorkspaceID != nil:
		ws := *req.WorkspaceID
		s.WorkspaceID = &ws
	default:
		s.WorkspaceID = currentWorkspace(req.Actor, principal)
	}
	return s, nil
}

func (r *Resolver) principal(ctx context.Context, req Request) (*principaldomain.User, error) {
	if req.PrincipalID != nil && *req.PrincipalID != 0 {
		return r.repo.FindByID(ctx, *req.PrincipalID)
	}

	if req.Actor != nil {
		if req.Actor.IsStaff() {
			if req.Actor.CreatedBy == nil {
				r.log.Warn("staff principal without creator", zap.String("principal_id", req.Actor.ID.String()))
				return nil, nil
			}
			return r.repo.FindByID(ctx, *req.Actor.CreatedBy)
		}
		return req.Actor, nil
	}

	if r.mode == config.ModeSingle {
		return r.repo.FindSingleTenant(ctx)
	}
	return r.repo.FindOperator(ctx)
}

// currentWorkspace prefers the actor's selection so staff land in the
// workspace they switched to, then the principal's own.
func currentWorkspace(actor, principal *principaldomain.User) *snowflake.ID {
	if actor != nil && actor.CurrentWorkspaceID != nil && *actor.CurrentWorkspaceID != 0 {
		ws := *actor.CurrentWorkspaceID
		return &ws
	}
	if principal.CurrentWorkspaceID != nil && *principal.CurrentWorkspaceID != 0 {
		ws := *principal.CurrentWorkspaceID
		return &ws
	}
	return nil
}
