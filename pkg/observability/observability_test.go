package observability

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.Equal(t, "genui", config.ServiceName)
	require.Equal(t, "development", config.Environment)
	require.Equal(t, "localhost:4317", config.OTLPEndpoint)
	require.False(t, config.Enabled)
	require.False(t, config.Insecure)
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderWithNilConfig(t *testing.T) {
	p, err := New(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestShutdown_ReturnsProviderErrors(t *testing.T) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	p := &Provider{meterProvider: mp, logger: slog.Default()}

	require.NoError(t, p.Shutdown(context.Background()))

	err := p.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sdkmetric.ErrReaderShutdown)
	assert.Contains(t, err.Error(), "metric provider")
}

func TestTrackOperation(t *testing.T) {
	p, err := New(context.Background(), nil)
	require.NoError(t, err)

	ctx, finish := p.TrackOperation(context.Background(), "genui.test",
		attribute.String("test.key", "test.value"))
	require.NotNil(t, ctx)
	finish(nil)

	_, finish = p.TrackOperation(context.Background(), "genui.test.error")
	finish(errors.New("boom"))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewMetrics(mp.Meter("genui-test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordChunk(ctx)
	m.RecordChunk(ctx)
	m.RecordReplay(ctx, 5, 2, 1)
	m.RecordReplay(ctx, 0, 0, 0)
	m.RecordNormalize(ctx, OutcomeOK, 3*time.Millisecond)
	m.RecordNormalize(ctx, OutcomeTooLarge, time.Millisecond)
	m.RecordRepair(ctx, "gallery")

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["genui.stream.chunks"]))
	assert.Equal(t, int64(5), sumOf(t, got["genui.patches.applied"]))
	assert.Equal(t, int64(2), sumOf(t, got["genui.patches.ignored"]))
	assert.Equal(t, int64(1), sumOf(t, got["genui.fragments.dropped"]))
	assert.Equal(t, int64(2), sumOf(t, got["genui.normalize.total"]))
	assert.Equal(t, int64(1), sumOf(t, got["genui.repairs.total"]))

	total := got["genui.normalize.total"].Data.(metricdata.Sum[int64])
	outcomes := map[string]int64{}
	for _, dp := range total.DataPoints {
		v, ok := dp.Attributes.Value("outcome")
		require.True(t, ok)
		outcomes[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{OutcomeOK: 1, OutcomeTooLarge: 1}, outcomes)

	hist, ok := got["genui.normalize.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordChunk(ctx)
		m.RecordReplay(ctx, 1, 1, 1)
		m.RecordNormalize(ctx, OutcomeSchema, time.Second)
		m.RecordRepair(ctx, "prune")
	})
}
