package db

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"github.com/smallbiznis/workhub/internal/config"
	obslogger "github.com/smallbiznis/workhub/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprom "gorm.io/plugin/prometheus"
)

// Module provides the shared *gorm.DB.
var Module = fx.Module("db",
	fx.Provide(New),
)

// New opens the configured database, installs tracing and metrics plugins and
// applies pool limits.
func New(lc fx.Lifecycle, appCfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	cfg := FromAppConfig(appCfg)

	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig()),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.Name))); err != nil {
		return nil, err
	}
	if err := conn.Use(gormprom.New(gormprom.Config{
		DBName:          cfg.Name,
		RefreshInterval: 15,
		StartServer:     false,
	})); err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("closing database connections")
				return sqlDB.Close()
			},
		})
	}

	log.Info("database connected",
		zap.String("type", cfg.Type),
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name),
	)
	return conn, nil
}
