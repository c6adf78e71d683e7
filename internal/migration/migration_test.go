package migration

import (
	"io/fs"
	"strings"
	"testing"

	settingsdomain "github.com/smallbiznis/workhub/internal/settings/domain"
	dbpkg "github.com/smallbiznis/workhub/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestMigrateSQLiteCreatesTables(t *testing.T) {
	db, err := dbpkg.NewTest()
	require.NoError(t, err)

	require.NoError(t, Migrate(db, "sqlite"))
	for _, table := range []string{"users", "workspaces", "settings", "payment_settings", "plans", "coupons", "plan_orders", "invoices", "invoice_items", "invoice_payments", "referrals", "payout_requests", "referral_settings"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&settingsdomain.Setting{}, "idx_settings_scope_key"))
}
