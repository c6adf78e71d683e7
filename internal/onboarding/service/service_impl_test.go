package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/workhub/internal/clock"
	"github.com/smallbiznis/workhub/internal/config"
	onboardingdomain "github.com/smallbiznis/workhub/internal/onboarding/domain"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	principalrepo "github.com/smallbiznis/workhub/internal/principal/repository"
	"github.com/smallbiznis/workhub/internal/scope"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	settingsrepo "github.com/smallbiznis/workhub/internal/settings/repository"
	settingsservice "github.com/smallbiznis/workhub/internal/settings/service"
	dbpkg "github.com/smallbiznis/workhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	node       *snowflake.Node
	svc        onboardingdomain.Service
	settings   settingsdomain.Service
	principals principaldomain.Repository
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&principaldomain.User{}, &principaldomain.Workspace{}, &settingsdomain.Setting{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	principals := principalrepo.NewRepository(db)
	settings := settingsservice.NewService(settingsservice.ServiceParams{
		Log:        zap.NewNop(),
		Cfg:        config.Config{Installed: true},
		DB:         db,
		GenID:      node,
		Repo:       settingsrepo.NewRepository(db),
		Principals: principals,
		Defaults:   settingsservice.NewDefaultsProvider(config.NewStaticOverlay(nil)),
	})
	svc := NewService(ServiceParams{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Principals: principals,
		Settings:   settings,
	})
	return testEnv{node: node, svc: svc, settings: settings, principals: principals}
}

func TestCreateTenantCopiesOperatorPresentation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	op := &principaldomain.User{ID: env.node.Generate(), Name: "Operator", Email: "op@example.com", Type: principaldomain.UserTypeSuperAdmin}
	require.NoError(t, env.principals.CreateUser(ctx, op))
	opScope := scope.Scope{PrincipalID: op.ID, Operator: true}
	_, err := env.settings.UpdateMany(ctx, opScope, settingsdomain.UpdateManyRequest{Values: map[string]string{
		"title_text":      "Acme Cloud",
		"dateFormat":      "d/m/Y",
		"defaultCurrency": "EUR",
	}})
	require.NoError(t, err)

	res, err := env.svc.CreateTenant(ctx, onboardingdomain.CreateTenantRequest{
		Name:  "Blue Harbor Studio",
		Email: " Owner@BlueHarbor.io ",
	})
	require.NoError(t, err)

	assert.Equal(t, "owner@blueharbor.io", res.Tenant.Email)
	assert.Equal(t, principaldomain.UserTypeCompany, res.Tenant.Type)
	assert.Equal(t, "blue-harbor-studio", res.Tenant.Slug)
	assert.NotEmpty(t, res.Tenant.ReferralCode)
	assert.Equal(t, onboardingdomain.DefaultWorkspaceName, res.Workspace.Name)
	assert.Equal(t, res.Tenant.ID, res.Workspace.CreatedBy)

	stored, err := env.principals.FindByID(ctx, res.Tenant.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CurrentWorkspaceID)
	assert.Equal(t, res.Workspace.ID, *stored.CurrentWorkspaceID)

	got := env.settings.Resolve(ctx, scope.For(res.Tenant.ID, res.Workspace.ID))
	assert.Equal(t, "Acme Cloud", got["title_text"])
	assert.Equal(t, "d/m/Y", got["dateFormat"])
	_, copied := got["defaultCurrency"]
	assert.False(t, copied)
}

func TestCreateTenantWithoutOperatorSeedsDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.CreateTenant(ctx, onboardingdomain.CreateTenantRequest{
		Name:          "Solo",
		Email:         "solo@example.com",
		WorkspaceName: "Main Office",
	})
	require.NoError(t, err)
	assert.Equal(t, "main-office", res.Workspace.Slug)

	got := env.settings.Resolve(ctx, scope.For(res.Tenant.ID, res.Workspace.ID))
	assert.Equal(t, "Y-m-d", got["dateFormat"])
	assert.Equal(t, "USD", got["defaultCurrency"])
}

func TestCreateTenantRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.CreateTenant(ctx, onboardingdomain.CreateTenantRequest{Name: "First", Email: "first@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  onboardingdomain.CreateTenantRequest
		want error
	}{
		{"missing name", onboardingdomain.CreateTenantRequest{Email: "x@example.com"}, onboardingdomain.ErrInvalidRequest},
		{"bad email", onboardingdomain.CreateTenantRequest{Name: "X", Email: "not-an-email"}, onboardingdomain.ErrInvalidRequest},
		{"duplicate email", onboardingdomain.CreateTenantRequest{Name: "Dup", Email: "FIRST@example.com"}, principaldomain.ErrEmailTaken},
		{"unknown referral", onboardingdomain.CreateTenantRequest{Name: "Ref", Email: "ref@example.com", ReferralCode: "NOPE"}, onboardingdomain.ErrInvalidReferralCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.CreateTenant(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	referred, err := env.svc.CreateTenant(ctx, onboardingdomain.CreateTenantRequest{
		Name:         "Referred",
		Email:        "referred@example.com",
		ReferralCode: first.Tenant.ReferralCode,
	})
	require.NoError(t, err)
	assert.Equal(t, first.Tenant.ReferralCode, referred.Tenant.UsedReferralCode)
}
