package logger

import (
	"context"
	"fmt"
	"strings"
	"time"

	obscontext "github.com/smallbiznis/workhub/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the zap logger.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	Level       string
	Format      string
	Debug       bool
}

// Sampling keeps the first 100 identical entries per second, then every 100th.
const (
	sampleTick       = time.Second
	sampleFirst      = 100
	sampleThereafter = 100
)

// New builds the process logger, replaces the zap globals and flushes on stop.
func New(lc fx.Lifecycle, cfg Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "json"
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		zapCfg.Encoding = "console"
	}
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.Sampling = nil

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	if err := zapCfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, sampleTick, sampleFirst, sampleThereafter)
		}),
	}
	if cfg.Debug {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	log, err := zapCfg.Build(opts...)
	if err != nil {
		return nil, err
	}

	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "workhub"
	}
	log = log.With(
		zap.String("service", service),
		zap.String("env", strings.TrimSpace(cfg.Environment)),
		zap.String("version", strings.TrimSpace(cfg.Version)),
	)
	zap.ReplaceGlobals(log)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				_ = log.Sync()
				return nil
			},
		})
	}
	return log, nil
}

// FromContext returns the global logger with the request fields of ctx.
func FromContext(ctx context.Context) *zap.Logger {
	return WithContext(ctx, zap.L())
}

// WithContext adds request id, principal, workspace and trace ids. Empty
// values are left out.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil || base == nil {
		return base
	}

	var fields []zap.Field
	add := func(key, value string) {
		if value != "" {
			fields = append(fields, zap.String(key, value))
		}
	}
	add("request_id", obscontext.RequestIDFromContext(ctx))
	add("principal_id", obscontext.PrincipalFromContext(ctx))
	add("workspace_id", obscontext.WorkspaceFromContext(ctx))
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		add("trace_id", sc.TraceID().String())
		add("span_id", sc.SpanID().String())
	}

	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
