package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("status", "pending"),
		attribute.String("principal_id", "456"),
		attribute.String("billing_cycle", "monthly"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("status"), attrs[0].Key)
	assert.Equal(t, attribute.Key("billing_cycle"), attrs[1].Key)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordPlanOrder(context.Background(), "succeeded", "monthly")
		m.RecordPayoutRequest(context.Background(), "pending")
		m.RecordTenantOnboarded(context.Background())
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "workhub-test"}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordSettingsUpdate(context.Background(), "settings", 3)
		m.RecordInvoicePayment(context.Background(), "paid")
		m.RecordRateLimitDenied(context.Background(), "pricing", "bucket_empty")
	})
}
