package observability

import (
	"strings"

	"github.com/smallbiznis/workhub/internal/config"
)

// Config is the observability view of the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	name := strings.TrimSpace(cfg.AppName)
	if name == "" {
		name = "workhub"
	}
	t := cfg.Telemetry
	return Config{
		ServiceName:          name,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             t.LogLevel,
		LogFormat:            t.LogFormat,
		OtelEnabled:          t.OtelEnabled,
		OtelExporterEndpoint: t.OtelEndpoint,
		OtelExporterProtocol: t.OtelProtocol,
		OtelSamplingRatio:    t.SamplingRatio,
	}
}

// Debug enables verbose request logs for debug level or local environments.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}
