package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the application Config and the settings overlay.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewOverlayHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Mode        string
	Environment string
	HTTPAddr    string

	// Installed is false while the one-time installer is still running and
	// the settings tables may not exist yet.
	Installed bool

	OperatorEmail string
	OperatorName  string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	PaymentSettingsSecret string
	SettingsOverlayPath   string

	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// TelemetryConfig drives logging, tracing and OTLP metric export.
type TelemetryConfig struct {
	LogLevel      string
	LogFormat     string
	OtelEnabled   bool
	OtelEndpoint  string
	OtelProtocol  string
	SamplingRatio float64
}

// RateLimitConfig configures the redis-backed limiter and locks.
type RateLimitConfig struct {
	Enabled          bool
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	PricingRate      float64
	PricingBurst     int
	PayoutLockTTLSec int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:               getenv("APP_SERVICE", "workhub"),
		AppVersion:            getenv("APP_VERSION", "0.1.0"),
		Mode:                  normalizeMode(getenv("APP_MODE", ModeSaaS)),
		Environment:           getenv("ENVIRONMENT", "development"),
		HTTPAddr:              getenv("HTTP_ADDR", ":8080"),
		Installed:             getenvBool("APP_INSTALLED", true),
		OperatorEmail:         strings.ToLower(strings.TrimSpace(getenv("OPERATOR_EMAIL", "superadmin@example.com"))),
		OperatorName:          getenv("OPERATOR_NAME", "Super Admin"),
		DBType:                getenv("DATABASE_TYPE", "postgres"),
		DBHost:                getenv("DATABASE_HOST", "localhost"),
		DBPort:                getenv("DATABASE_PORT", "5432"),
		DBName:                getenv("DATABASE_NAME", "workhub"),
		DBUser:                getenv("DATABASE_USER", "postgres"),
		DBPassword:            getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:             getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:         getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:         getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime:     getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime:     getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		PaymentSettingsSecret: strings.TrimSpace(getenv("PAYMENT_SETTINGS_SECRET", "")),
		SettingsOverlayPath:   strings.TrimSpace(getenv("SETTINGS_OVERLAY_PATH", "")),
		RateLimit: RateLimitConfig{
			Enabled:          getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:        strings.TrimSpace(getenv("REDIS_ADDR", "")),
			RedisPassword:    getenv("REDIS_PASSWORD", ""),
			RedisDB:          getenvInt("REDIS_DB", 0),
			PricingRate:      getenvFloat("RATE_LIMIT_PRICING_RATE", 2),
			PricingBurst:     getenvInt("RATE_LIMIT_PRICING_BURST", 10),
			PayoutLockTTLSec: getenvInt("PAYOUT_LOCK_TTL_SECONDS", 10),
		},
		Telemetry: TelemetryConfig{
			LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:     strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:   getenvBool("OTEL_ENABLED", false),
			OtelEndpoint:  strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")),
			OtelProtocol:  strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
	}

	return cfg
}

const (
	// ModeSaaS runs with a single platform operator and many tenants.
	ModeSaaS = "saas"
	// ModeSingle runs a single tenant without an operator.
	ModeSingle = "single"
)

func (c Config) IsSaaS() bool {
	return c.Mode == ModeSaaS
}

func normalizeMode(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case ModeSingle, "single-tenant", "standalone":
		return ModeSingle
	default:
		return ModeSaaS
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
