package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestDisabledProviders(t *testing.T) {
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, Config{}, 0, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestProcurementMetrics_RecordTransition(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewProcurementMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordTransition(ctx, "product", "ship", OutcomeRefused, 3*time.Millisecond)
	m.RecordTransition(ctx, "product", "ship", OutcomeRefused, time.Millisecond)
	m.RecordTransition(ctx, "product", "ship", OutcomeApplied, time.Millisecond)
	m.RecordNumberCollision(ctx, "PO/PRD")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if data, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(3), sums["procurement.order.transitions"])
	assert.Equal(t, int64(1), sums["procurement.numbering.collisions"])
}

func TestProcurementMetrics_NilIsNoop(t *testing.T) {
	var m *ProcurementMetrics
	assert.NotPanics(t, func() {
		m.RecordTransition(context.Background(), "service", "approve", OutcomeApplied, time.Second)
		m.RecordReport(context.Background(), "overview", time.Second)
	})
}
