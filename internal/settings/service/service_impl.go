package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/workhub/internal/config"
	obsmetrics "github.com/smallbiznis/workhub/internal/observability/metrics"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	"github.com/smallbiznis/workhub/internal/scope"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParams struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	Repo       settingsdomain.Repository
	Principals principaldomain.Repository
	Defaults   settingsdomain.DefaultsProvider
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	installed  bool
	db         *gorm.DB
	genID      *snowflake.Node
	repo       settingsdomain.Repository
	principals principaldomain.Repository
	defaults   settingsdomain.DefaultsProvider
	metrics    *obsmetrics.Metrics
}

func NewService(p ServiceParams) settingsdomain.Service {
	return &Service{
		log:        p.Log.Named("settings.service"),
		installed:  p.Cfg.Installed,
		db:         p.DB,
		genID:      p.GenID,
		repo:       p.Repo,
		principals: p.Principals,
		defaults:   p.Defaults,
		metrics:    p.Metrics,
	}
}

func (s *Service) WithTx(tx *gorm.DB) settingsdomain.Service {
	clone := *s
	clone.db = tx
	clone.repo = s.repo.WithTx(tx)
	clone.principals = s.principals.WithTx(tx)
	return &clone
}

func (s *Service) Resolve(ctx context.Context, sc scope.Scope) map[string]string {
	out := map[string]string{}
	if !s.installed || !sc.Valid() {
		return out
	}
	sc = sc.Normalized()

	rows, err := s.repo.List(ctx, sc.PrincipalID, sc.WorkspaceID)
	if err != nil {
		s.log.Warn("resolve settings failed",
			zap.String("principal_id", sc.PrincipalID.String()),
			zap.Error(err),
		)
		return out
	}
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out
}

func (s *Service) Get(ctx context.Context, sc scope.Scope, key string, def *string) (string, bool) {
	if value, ok := s.Resolve(ctx, sc)[key]; ok {
		return value, true
	}
	if def != nil {
		return *def, true
	}
	return s.defaults.Default(key)
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, req settingsdomain.UpdateRequest) (*settingsdomain.Setting, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, settingsdomain.ErrInvalidKey
	}
	if !sc.Valid() {
		return nil, settingsdomain.ErrPrincipalUnresolved
	}
	sc = target(sc, req.IgnoreWorkspace)

	row, err := s.upsert(ctx, sc, key, req.Value)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSettingsUpdate(ctx, s.repo.Table(), 1)
	return row, nil
}

func (s *Service) UpdateMany(ctx context.Context, sc scope.Scope, req settingsdomain.UpdateManyRequest) ([]settingsdomain.Setting, error) {
	if !sc.Valid() {
		return nil, settingsdomain.ErrPrincipalUnresolved
	}
	sc = target(sc, req.IgnoreWorkspace)

	keys := make([]string, 0, len(req.Values))
	for key := range req.Values {
		if strings.TrimSpace(key) == "" {
			return nil, settingsdomain.ErrInvalidKey
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []settingsdomain.Setting
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txSvc := s.WithTx(tx).(*Service)
		out = make([]settingsdomain.Setting, 0, len(keys))
		for _, key := range keys {
			row, err := txSvc.upsert(ctx, sc, key, req.Values[key])
			if err != nil {
				return err
			}
			out = append(out, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSettingsUpdate(ctx, s.repo.Table(), len(out))
	return out, nil
}

// upsert is last-write-wins on (owner, workspace, key).
func (s *Service) upsert(ctx context.Context, sc scope.Scope, key, value string) (*settingsdomain.Setting, error) {
	return s.repo.Upsert(ctx, &settingsdomain.Setting{
		ID:          s.genID.Generate(),
		OwnerID:     sc.PrincipalID,
		WorkspaceID: sc.WorkspaceID,
		Key:         key,
		Value:       value,
	})
}

func (s *Service) CreateDefaultSettings(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID) error {
	return s.insertMissing(ctx, ownerID, workspaceID, s.defaults.All())
}

func (s *Service) CopySettingsFromOperator(ctx context.Context, tenantID snowflake.ID, workspaceID *snowflake.ID) error {
	operator, err := s.principals.FindOperator(ctx)
	if err != nil {
		return err
	}
	if operator == nil {
		s.log.Info("no operator principal, seeding static defaults",
			zap.String("tenant_id", tenantID.String()),
		)
		return s.CreateDefaultSettings(ctx, tenantID, workspaceID)
	}

	rows, err := s.repo.ListKeys(ctx, operator.ID, nil, settingsdomain.PresentationKeys)
	if err != nil {
		return err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return s.insertMissing(ctx, tenantID, workspaceID, values)
}

// insertMissing writes only keys the scope does not already have, so
// bootstrapping twice is harmless.
func (s *Service) insertMissing(ctx context.Context, ownerID snowflake.ID, workspaceID *snowflake.ID, values map[string]string) error {
	if ownerID == 0 {
		return settingsdomain.ErrPrincipalUnresolved
	}
	existing, err := s.repo.List(ctx, ownerID, workspaceID)
	if err != nil {
		return err
	}
	present := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		present[row.Key] = struct{}{}
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		if _, ok := present[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	rows := make([]settingsdomain.Setting, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, settingsdomain.Setting{
			ID:          s.genID.Generate(),
			OwnerID:     ownerID,
			WorkspaceID: workspaceID,
			Key:         key,
			Value:       values[key],
		})
	}
	if err := s.repo.BulkInsert(ctx, rows); err != nil {
		return err
	}
	s.metrics.RecordSettingsUpdate(ctx, s.repo.Table(), len(rows))
	return nil
}

func target(sc scope.Scope, ignoreWorkspace bool) scope.Scope {
	sc = sc.Normalized()
	if ignoreWorkspace {
		sc = sc.WithoutWorkspace()
	}
	return sc
}
