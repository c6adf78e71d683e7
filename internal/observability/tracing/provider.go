package tracing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the tracer provider.
type Config struct {
	Enabled          bool
	ServiceName      string
	ServiceVersion   string
	Environment      string
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// NewProvider builds the global tracer provider. When tracing is disabled
// the provider still exists so spans are created but never exported.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(cfg.SamplingRatio)))),
	}

	if cfg.Enabled {
		exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("tracing initialized",
			zap.Bool("export", cfg.Enabled),
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		}
		return otlptracehttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
		}
		return otlptracegrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

func clampRatio(ratio float64) float64 {
	switch {
	case ratio <= 0:
		return 0
	case ratio >= 1:
		return 1
	default:
		return ratio
	}
}

// ExtractContext pulls the upstream trace context out of carrier headers.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

var forbiddenAttributeKeys = map[attribute.Key]struct{}{
	"email":         {},
	"secret":        {},
	"api_key":       {},
	"password":      {},
	"authorization": {},
}

// SafeAttributes drops attributes that could carry credentials or PII.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, blocked := forbiddenAttributeKeys[attr.Key]; blocked {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError keeps only the error text that is safe to attach to a span.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if idx := strings.Index(msg, ":"); idx > 0 {
		msg = msg[:idx]
	}
	return errors.New(strings.TrimSpace(msg))
}
