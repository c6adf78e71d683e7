package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/workhub/internal/config"
	obsmetrics "github.com/smallbiznis/workhub/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/workhub/internal/paymentmethod/domain"
	"github.com/smallbiznis/workhub/internal/scope"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	GenID   *snowflake.Node
	Repo    settingsdomain.Repository `name:"payment_settings"`
	Metrics *obsmetrics.Metrics       `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	installed bool
	genID     *snowflake.Node
	repo      settingsdomain.Repository
	sealer    *Sealer
	metrics   *obsmetrics.Metrics
}

func New(p Params) paymentdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("paymentmethod.service"),
		installed: p.Cfg.Installed,
		genID:     p.GenID,
		repo:      p.Repo,
		sealer:    NewSealer(p.Cfg.PaymentSettingsSecret),
		metrics:   p.Metrics,
	}
}

// resolve follows the same exact (owner, workspace) rule as general settings.
func (s *Service) resolve(ctx context.Context, sc scope.Scope) (map[string]string, error) {
	out := map[string]string{}
	if !s.installed || !sc.Valid() {
		return out, nil
	}
	sc = sc.Normalized()
	rows, err := s.repo.List(ctx, sc.PrincipalID, sc.WorkspaceID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (s *Service) project(d paymentdomain.Descriptor, values map[string]string) paymentdomain.Config {
	cfg := paymentdomain.Config{
		Method:  d.Key,
		Name:    d.Name,
		Enabled: paymentdomain.IsEnabledValue(values[d.EnabledKey()]),
		Fields:  make(map[string]string, len(d.Fields)),
	}
	for _, f := range d.Fields {
		raw, ok := values[f.Key]
		if !ok {
			continue
		}
		if f.Secret {
			plain, err := s.sealer.Open(raw)
			if err != nil {
				s.log.Warn("cannot open sealed payment value",
					zap.String("method", d.Key),
					zap.String("field", f.Key),
				)
				continue
			}
			raw = plain
		}
		cfg.Fields[f.Key] = raw
	}
	return cfg
}

func (s *Service) GetConfig(ctx context.Context, method string, sc scope.Scope) (paymentdomain.Config, error) {
	d, ok := paymentdomain.Lookup(method)
	if !ok {
		return paymentdomain.Config{}, paymentdomain.ErrUnknownMethod
	}
	values, err := s.resolve(ctx, sc)
	if err != nil {
		return paymentdomain.Config{}, err
	}
	return s.project(d, values), nil
}

func (s *Service) GetEnabled(ctx context.Context, sc scope.Scope) (map[string]paymentdomain.Config, error) {
	values, err := s.resolve(ctx, sc)
	if err != nil {
		return nil, err
	}
	out := map[string]paymentdomain.Config{}
	for _, d := range paymentdomain.Methods() {
		cfg := s.project(d, values)
		if cfg.Enabled {
			out[d.Key] = cfg
		}
	}
	return out, nil
}

// Validate checks required fields for non-emptiness and never fails hard.
func (s *Service) Validate(method string, cfg paymentdomain.Config) paymentdomain.ValidationResult {
	return Validate(method, cfg)
}

func Validate(method string, cfg paymentdomain.Config) paymentdomain.ValidationResult {
	d, ok := paymentdomain.Lookup(method)
	if !ok {
		return paymentdomain.ValidationResult{Valid: false, Errors: []string{"Unknown payment method: " + method}}
	}
	errs := []string{}
	for _, f := range d.RequiredFields() {
		if strings.TrimSpace(cfg.Fields[f.Key]) == "" {
			errs = append(errs, f.Label+" is required")
		}
	}
	return paymentdomain.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func (s *Service) UpdateConfig(ctx context.Context, method string, req paymentdomain.UpdateConfigRequest, sc scope.Scope) (paymentdomain.Config, error) {
	d, ok := paymentdomain.Lookup(method)
	if !ok {
		return paymentdomain.Config{}, paymentdomain.ErrUnknownMethod
	}
	if !sc.Valid() {
		return paymentdomain.Config{}, paymentdomain.ErrPrincipalUnresolved
	}
	for key := range req.Fields {
		if _, ok := d.Field(key); !ok {
			return paymentdomain.Config{}, paymentdomain.ErrUnknownField
		}
	}
	sc = sc.Normalized()
	if req.IgnoreWorkspace {
		sc = sc.WithoutWorkspace()
	}

	current, err := s.GetConfig(ctx, method, sc)
	if err != nil {
		return paymentdomain.Config{}, err
	}
	merged := current
	merged.Fields = make(map[string]string, len(current.Fields)+len(req.Fields))
	for k, v := range current.Fields {
		merged.Fields[k] = v
	}
	for k, v := range req.Fields {
		merged.Fields[k] = strings.TrimSpace(v)
	}
	if req.Enabled != nil {
		merged.Enabled = *req.Enabled
	}
	if merged.Enabled {
		if result := Validate(method, merged); !result.Valid {
			return paymentdomain.Config{}, &paymentdomain.ValidationError{Method: method, Errors: result.Errors}
		}
	}

	writes := make(map[string]string, len(req.Fields)+1)
	for key, value := range req.Fields {
		f, _ := d.Field(key)
		stored := strings.TrimSpace(value)
		if f.Secret {
			if stored, err = s.sealer.Seal(stored); err != nil {
				return paymentdomain.Config{}, err
			}
		}
		writes[key] = stored
	}
	if req.Enabled != nil {
		writes[d.EnabledKey()] = settingsdomain.Encode(*req.Enabled)
	}

	keys := make([]string, 0, len(writes))
	for key := range writes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, key := range keys {
			_, err := repo.Upsert(ctx, &settingsdomain.Setting{
				ID:          s.genID.Generate(),
				OwnerID:     sc.PrincipalID,
				WorkspaceID: sc.WorkspaceID,
				Key:         key,
				Value:       writes[key],
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return paymentdomain.Config{}, err
	}

	s.metrics.RecordSettingsUpdate(ctx, s.repo.Table(), len(keys))
	s.log.Info("payment method updated",
		zap.String("method", method),
		zap.String("principal_id", sc.PrincipalID.String()),
		zap.Bool("enabled", merged.Enabled),
	)
	return merged, nil
}
