package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/workhub/internal/clock"
	"github.com/smallbiznis/workhub/internal/config"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultTenantName    = "Main"
	defaultWorkspaceName = "Default"
	defaultTenantEmail   = "owner@workhub.local"
)

var (
	defaultCommissionPercentage = decimal.NewFromInt(10)
	defaultThresholdAmount      = decimal.NewFromInt(50)
)

// Module provides the startup Seeder.
var Module = fx.Module("seed",
	fx.Provide(NewSeeder),
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	Clock      clock.Clock
	Principals principaldomain.Repository
	Settings   settingsdomain.Service
	Referrals  referraldomain.Repository
}

// Seeder bootstraps the principals every installation needs. Each step is
// idempotent so it runs on every startup.
type Seeder struct {
	log        *zap.Logger
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	clock      clock.Clock
	principals principaldomain.Repository
	settings   settingsdomain.Service
	referrals  referraldomain.Repository
}

func NewSeeder(p Params) *Seeder {
	return &Seeder{
		log:        p.Log.Named("seed"),
		cfg:        p.Cfg,
		db:         p.DB,
		genID:      p.GenID,
		clock:      p.Clock,
		principals: p.Principals,
		settings:   p.Settings,
		referrals:  p.Referrals,
	}
}

// Run seeds the operator in SaaS mode, or the single tenant otherwise.
func (s *Seeder) Run(ctx context.Context) error {
	if s.db == nil {
		return errors.New("seed database handle is required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.cfg.IsSaaS() {
			return s.ensureOperator(ctx, tx)
		}
		return s.ensureSingleTenant(ctx, tx)
	})
}

func (s *Seeder) ensureOperator(ctx context.Context, tx *gorm.DB) error {
	principals := s.principals.WithTx(tx)
	op, err := principals.FindOperator(ctx)
	if err != nil {
		return err
	}
	if op == nil {
		now := s.clock.Now()
		op = &principaldomain.User{
			ID:        s.genID.Generate(),
			Name:      s.cfg.OperatorName,
			Email:     strings.ToLower(s.cfg.OperatorEmail),
			Type:      principaldomain.UserTypeSuperAdmin,
			Slug:      slug.Make(s.cfg.OperatorName),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := principals.CreateUser(ctx, op); err != nil {
			return err
		}
		s.log.Info("operator seeded", zap.String("operator_id", op.ID.String()))
	}

	if err := s.settings.WithTx(tx).CreateDefaultSettings(ctx, op.ID, nil); err != nil {
		return err
	}
	return s.ensureReferralSettings(ctx, tx, op.ID)
}

func (s *Seeder) ensureReferralSettings(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID) error {
	repo := s.referrals.WithTx(tx)
	existing, err := repo.FindSettings(ctx)
	if err != nil || existing != nil {
		return err
	}
	now := s.clock.Now()
	return repo.SaveSettings(ctx, &referraldomain.ReferralSetting{
		ID:                   s.genID.Generate(),
		OwnerID:              ownerID,
		IsEnabled:            false,
		CommissionPercentage: defaultCommissionPercentage,
		ThresholdAmount:      defaultThresholdAmount,
		CreatedAt:            now,
		UpdatedAt:            now,
	})
}

func (s *Seeder) ensureSingleTenant(ctx context.Context, tx *gorm.DB) error {
	principals := s.principals.WithTx(tx)
	tenant, err := principals.FindSingleTenant(ctx)
	if err != nil {
		return err
	}
	if tenant != nil {
		return nil
	}

	now := s.clock.Now()
	tenantID := s.genID.Generate()
	tenant = &principaldomain.User{
		ID:           tenantID,
		Name:         defaultTenantName,
		Email:        defaultTenantEmail,
		Type:         principaldomain.UserTypeCompany,
		Slug:         slug.Make(defaultTenantName),
		ReferralCode: strings.ToUpper(tenantID.Base36()),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := principals.CreateUser(ctx, tenant); err != nil {
		return err
	}
	ws := &principaldomain.Workspace{
		ID:        s.genID.Generate(),
		Name:      defaultWorkspaceName,
		Slug:      slug.Make(defaultWorkspaceName),
		CreatedBy: tenant.ID,
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

	settings := s.settings.WithTx(tx)
	if err := settings.CreateDefaultSettings(ctx, tenant.ID, nil); err != nil {
		return err
	}
	wsID := ws.ID
	if err := settings.CreateDefaultSettings(ctx, tenant.ID, &wsID); err != nil {
		return err
	}
	s.log.Info("single tenant seeded",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("workspace_id", ws.ID.String()),
	)
	return nil
}
