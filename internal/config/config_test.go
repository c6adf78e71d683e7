package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNormalizeMode(t *testing.T) {
	assert.Equal(t, ModeSingle, normalizeMode("Single-Tenant"))
	assert.Equal(t, ModeSingle, normalizeMode("standalone"))
	assert.Equal(t, ModeSaaS, normalizeMode(""))
	assert.Equal(t, ModeSaaS, normalizeMode("whatever"))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_MODE", "single")
	t.Setenv("APP_INSTALLED", "false")
	t.Setenv("RATE_LIMIT_PRICING_RATE", "4.5")
	t.Setenv("OPERATOR_EMAIL", " Root@Example.com ")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "HTTP")

	cfg := Load()
	assert.False(t, cfg.IsSaaS())
	assert.False(t, cfg.Installed)
	assert.Equal(t, 4.5, cfg.RateLimit.PricingRate)
	assert.Equal(t, "root@example.com", cfg.OperatorEmail)
	assert.Equal(t, "debug", cfg.Telemetry.LogLevel)
	assert.Equal(t, "http", cfg.Telemetry.OtelProtocol)
	assert.Equal(t, "json", cfg.Telemetry.LogFormat)
}

func TestOverlayHolderReadsDefaultsSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  dateFormat: d/m/Y\n  color: theme-4\n"), 0o600))

	holder, err := NewOverlayHolder(Config{SettingsOverlayPath: path}, zap.NewNop())
	require.NoError(t, err)

	values := holder.Get()
	// viper lowercases keys
	assert.Equal(t, "d/m/Y", values["dateformat"])
	assert.Equal(t, "theme-4", values["color"])
}

func TestOverlayHolderMissingFile(t *testing.T) {
	holder, err := NewOverlayHolder(Config{SettingsOverlayPath: filepath.Join(t.TempDir(), "absent.yml")}, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, holder.Get())

	var nilHolder *OverlayHolder
	assert.Nil(t, nilHolder.Get())
}

func TestOverlayHolderReloadsAndLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  color: theme-4\n"), 0o600))

	core, logs := observer.New(zap.InfoLevel)
	holder, err := NewOverlayHolder(Config{SettingsOverlayPath: path}, zap.New(core))
	require.NoError(t, err)
	require.Equal(t, "theme-4", holder.Get()["color"])

	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  color: theme-5\n"), 0o600))
	assert.Eventually(t, func() bool {
		return holder.Get()["color"] == "theme-5" &&
			logs.FilterMessage("settings overlay reloaded").Len() > 0
	}, 5*time.Second, 20*time.Millisecond)
}
