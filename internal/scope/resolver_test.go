package scope

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/workhub/internal/config"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	principalrepo "github.com/smallbiznis/workhub/internal/principal/repository"
	dbpkg "github.com/smallbiznis/workhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	resolver *Resolver
	operator *principaldomain.User
	tenant   *principaldomain.User
	staff    *principaldomain.User
	ws       snowflake.ID
}

func newFixture(t *testing.T, mode string) fixture {
	t.Helper()
	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&principaldomain.User{}, &principaldomain.Workspace{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	repo := principalrepo.NewRepository(db)
	ctx := context.Background()

	f := fixture{ws: node.Generate()}
	if mode == config.ModeSaaS {
		f.operator = &principaldomain.User{ID: node.Generate(), Name: "Operator", Email: "op@example.com", Type: principaldomain.UserTypeSuperAdmin}
		require.NoError(t, repo.CreateUser(ctx, f.operator))
	}
	f.tenant = &principaldomain.User{ID: node.Generate(), Name: "Acme", Email: "acme@example.com", Type: principaldomain.UserTypeCompany, CurrentWorkspaceID: &f.ws}
	require.NoError(t, repo.CreateUser(ctx, f.tenant))
	f.staff = &principaldomain.User{ID: node.Generate(), Name: "Ann", Email: "ann@example.com", Type: "staff", CreatedBy: &f.tenant.ID}
	require.NoError(t, repo.CreateUser(ctx, f.staff))

	f.resolver = NewResolver(ResolverParams{Log: zap.NewNop(), Cfg: config.Config{Mode: mode}, Repo: repo})
	return f
}

func TestResolveAnonymousUsesOperatorWithoutWorkspace(t *testing.T) {
	f := newFixture(t, config.ModeSaaS)
	ws := snowflake.ID(99)

	s, err := f.resolver.Resolve(context.Background(), Request{WorkspaceID: &ws})
	require.NoError(t, err)
	assert.Equal(t, f.operator.ID, s.PrincipalID)
	assert.True(t, s.Operator)
	assert.Nil(t, s.WorkspaceID)
}

func TestResolveAnonymousSingleTenantMode(t *testing.T) {
	f := newFixture(t, config.ModeSingle)

	s, err := f.resolver.Resolve(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, f.tenant.ID, s.PrincipalID)
	require.NotNil(t, s.WorkspaceID)
	assert.Equal(t, f.ws, *s.WorkspaceID)
}

func TestResolveStaffActsForCreator(t *testing.T) {
	f := newFixture(t, config.ModeSaaS)

	s, err := f.resolver.Resolve(context.Background(), Request{Actor: f.staff})
	require.NoError(t, err)
	assert.Equal(t, f.tenant.ID, s.PrincipalID)
	assert.False(t, s.Operator)
	require.NotNil(t, s.WorkspaceID)
	assert.Equal(t, f.ws, *s.WorkspaceID)
}

func TestResolveTenantWorkspaceOverrides(t *testing.T) {
	f := newFixture(t, config.ModeSaaS)
	other := snowflake.ID(7)

	explicit, err := f.resolver.Resolve(context.Background(), Request{Actor: f.tenant, WorkspaceID: &other})
	require.NoError(t, err)
	assert.Equal(t, other, explicit.Workspace())

	wide, err := f.resolver.Resolve(context.Background(), Request{Actor: f.tenant, WorkspaceID: &other, IgnoreWorkspace: true})
	require.NoError(t, err)
	assert.Nil(t, wide.WorkspaceID)
}

func TestResolveUnresolved(t *testing.T) {
	f := newFixture(t, config.ModeSaaS)
	orphan := &principaldomain.User{ID: 123, Type: "staff"}

	_, err := f.resolver.Resolve(context.Background(), Request{Actor: orphan})
	assert.ErrorIs(t, err, ErrUnresolved)

	missing := snowflake.ID(404)
	_, err = f.resolver.Resolve(context.Background(), Request{PrincipalID: &missing})
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestScopeContextRoundTrip(t *testing.T) {
	ctx := WithScope(context.Background(), For(5, 6))
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, snowflake.ID(5), s.PrincipalID)
	assert.Equal(t, snowflake.ID(6), s.Workspace())

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
