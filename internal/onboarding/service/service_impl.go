package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/workhub/internal/clock"
	obsmetrics "github.com/smallbiznis/workhub/internal/observability/metrics"
	onboardingdomain "github.com/smallbiznis/workhub/internal/onboarding/domain"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	dbpkg "github.com/smallbiznis/workhub/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParams struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Principals principaldomain.Repository
	Settings   settingsdomain.Service
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	principals principaldomain.Repository
	settings   settingsdomain.Service
	metrics    *obsmetrics.Metrics
	validate   *validator.Validate
}

func NewService(p ServiceParams) onboardingdomain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("onboarding.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		principals: p.Principals,
		settings:   p.Settings,
		metrics:    p.Metrics,
		validate:   validator.New(),
	}
}

func (s *service) CreateTenant(ctx context.Context, req onboardingdomain.CreateTenantRequest) (*onboardingdomain.Result, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.WorkspaceName = strings.TrimSpace(req.WorkspaceName)
	req.ReferralCode = strings.TrimSpace(req.ReferralCode)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", onboardingdomain.ErrInvalidRequest, err)
	}
	if req.WorkspaceName == "" {
		req.WorkspaceName = onboardingdomain.DefaultWorkspaceName
	}

	var result *onboardingdomain.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		principals := s.principals.WithTx(tx)

		existing, err := principals.FindByEmail(ctx, req.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return principaldomain.ErrEmailTaken
		}
		if req.ReferralCode != "" {
			referrer, err := principals.FindByReferralCode(ctx, req.ReferralCode)
			if err != nil {
				return err
			}
			if referrer == nil {
				return onboardingdomain.ErrInvalidReferralCode
			}
		}

		now := s.clock.Now()
		tenantID := s.genID.Generate()
		tenant := &principaldomain.User{
			ID:               tenantID,
			Name:             req.Name,
			Email:            req.Email,
			Type:             principaldomain.UserTypeCompany,
			Slug:             slug.Make(req.Name),
			ReferralCode:     strings.ToUpper(tenantID.Base36()),
			UsedReferralCode: req.ReferralCode,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := principals.CreateUser(ctx, tenant); err != nil {
			if dbpkg.IsDuplicateKeyErr(err) {
				return principaldomain.ErrEmailTaken
			}
			return err
		}

		creator := tenant.ID
		ws := &principaldomain.Workspace{
			ID:        s.genID.Generate(),
			Name:      req.WorkspaceName,
			Slug:      slug.Make(req.WorkspaceName),
			CreatedBy: creator,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := principals.CreateWorkspace(ctx, ws); err != nil {
			return err
		}
		if err := principals.SetCurrentWorkspace(ctx, tenant.ID, ws.ID); err != nil {
			return err
		}
		tenant.CurrentWorkspaceID = &ws.ID

		wsID := ws.ID
		if err := s.settings.WithTx(tx).CopySettingsFromOperator(ctx, tenant.ID, &wsID); err != nil {
			return fmt.Errorf("seed tenant settings: %w", err)
		}

		result = &onboardingdomain.Result{Tenant: tenant, Workspace: ws}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTenantOnboarded(ctx)
	s.log.Info("tenant onboarded",
		zap.String("tenant_id", result.Tenant.ID.String()),
		zap.String("workspace_id", result.Workspace.ID.String()),
	)
	return result, nil
}
