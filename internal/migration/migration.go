package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	invoicedomain "github.com/smallbiznis/workhub/internal/invoice/domain"
	plandomain "github.com/smallbiznis/workhub/internal/plan/domain"
	principaldomain "github.com/smallbiznis/workhub/internal/principal/domain"
	referraldomain "github.com/smallbiznis/workhub/internal/referral/domain"
	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table owned by the application, in dependency order.
func Models() []any {
	return []any{
		&principaldomain.User{},
		&principaldomain.Workspace{},
		&settingsdomain.Setting{},
		&settingsdomain.PaymentSetting{},
		&plandomain.Plan{},
		&plandomain.Coupon{},
		&plandomain.PlanOrder{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&invoicedomain.InvoicePayment{},
		&referraldomain.ReferralSetting{},
		&referraldomain.Referral{},
		&referraldomain.PayoutRequest{},
	}
}

// Migrate brings the schema up to date. Postgres runs the embedded SQL
// migrations; mysql and sqlite fall back to gorm AutoMigrate.
func Migrate(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if dbType != "postgres" {
		if err := conn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}
