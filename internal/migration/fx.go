package migration

import (
	"context"

	"github.com/smallbiznis/workhub/internal/config"
	"github.com/smallbiznis/workhub/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, seeder *seed.Seeder, log *zap.Logger) error {
		if !cfg.Installed {
			log.Info("installation pending, skipping migrations")
			return nil
		}
		if err := Migrate(conn, cfg.DBType); err != nil {
			return err
		}
		return seeder.Run(context.Background())
	}),
)
