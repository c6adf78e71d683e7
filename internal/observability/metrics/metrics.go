package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

const exportInterval = 10 * time.Second

// Metrics holds the business counters. A nil *Metrics records nothing.
type Metrics struct {
	settingsUpdates  metric.Int64Counter
	planOrders       metric.Int64Counter
	payoutRequests   metric.Int64Counter
	invoicePayments  metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
	tenantsOnboarded metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("metrics resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{OnStop: provider.Shutdown})
	}
	log.Info("otlp metrics export enabled",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
		zap.Duration("interval", exportInterval),
	)

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "workhub"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.settingsUpdates, err = meter.Int64Counter("workhub_settings_updates_total"); err != nil {
		return nil, err
	}
	if m.planOrders, err = meter.Int64Counter("workhub_plan_orders_total"); err != nil {
		return nil, err
	}
	if m.payoutRequests, err = meter.Int64Counter("workhub_payout_requests_total"); err != nil {
		return nil, err
	}
	if m.invoicePayments, err = meter.Int64Counter("workhub_invoice_payments_total"); err != nil {
		return nil, err
	}
	if m.rateLimitDenied, err = meter.Int64Counter("workhub_rate_limit_denied_total"); err != nil {
		return nil, err
	}
	if m.tenantsOnboarded, err = meter.Int64Counter("workhub_tenants_onboarded_total"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordSettingsUpdate counts persisted settings writes by table.
func (m *Metrics) RecordSettingsUpdate(ctx context.Context, table string, count int) {
	if m == nil || count <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("table", strings.TrimSpace(table)))
	m.settingsUpdates.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

// RecordPlanOrder counts plan order transitions.
func (m *Metrics) RecordPlanOrder(ctx context.Context, status, billingCycle string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("status", strings.TrimSpace(status)),
		attribute.String("billing_cycle", strings.TrimSpace(billingCycle)),
	)
	m.planOrders.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPayoutRequest counts payout requests by outcome.
func (m *Metrics) RecordPayoutRequest(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.payoutRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordInvoicePayment(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.invoicePayments.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordTenantOnboarded(ctx context.Context) {
	if m == nil {
		return
	}
	m.tenantsOnboarded.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"table":         {},
	"status":        {},
	"billing_cycle": {},
	"endpoint":      {},
	"status_code":   {},
	"reason":        {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
