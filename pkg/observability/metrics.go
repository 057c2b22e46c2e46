package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Normalize outcomes recorded on genui.normalize.total.
const (
	OutcomeOK       = "ok"
	OutcomeSchema   = "schema"
	OutcomeTooLarge = "too_large"
)

// Metrics holds the genui instruments. The nil value records nothing.
type Metrics struct {
	chunks         metric.Int64Counter
	patchesApplied metric.Int64Counter
	patchesIgnored metric.Int64Counter
	dropped        metric.Int64Counter
	normalizeTotal metric.Int64Counter
	repairs        metric.Int64Counter
	duration       metric.Float64Histogram
}

// NewMetrics creates the genui instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.chunks, err = meter.Int64Counter("genui.stream.chunks",
		metric.WithDescription("Text chunks appended to stream sessions"),
		metric.WithUnit("{chunk}"),
	); err != nil {
		return nil, fmt.Errorf("create chunks counter: %w", err)
	}
	if m.patchesApplied, err = meter.Int64Counter("genui.patches.applied",
		metric.WithDescription("Patches that changed tree or data state"),
		metric.WithUnit("{patch}"),
	); err != nil {
		return nil, fmt.Errorf("create applied counter: %w", err)
	}
	if m.patchesIgnored, err = meter.Int64Counter("genui.patches.ignored",
		metric.WithDescription("Patches dropped by routing rules"),
		metric.WithUnit("{patch}"),
	); err != nil {
		return nil, fmt.Errorf("create ignored counter: %w", err)
	}
	if m.dropped, err = meter.Int64Counter("genui.fragments.dropped",
		metric.WithDescription("Balanced fragments that were not patch objects"),
		metric.WithUnit("{fragment}"),
	); err != nil {
		return nil, fmt.Errorf("create dropped counter: %w", err)
	}
	if m.normalizeTotal, err = meter.Int64Counter("genui.normalize.total",
		metric.WithDescription("Normalization runs by outcome"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, fmt.Errorf("create normalize counter: %w", err)
	}
	if m.repairs, err = meter.Int64Counter("genui.repairs.total",
		metric.WithDescription("Repairs applied during normalization by kind"),
		metric.WithUnit("{repair}"),
	); err != nil {
		return nil, fmt.Errorf("create repairs counter: %w", err)
	}
	if m.duration, err = meter.Float64Histogram("genui.normalize.duration",
		metric.WithDescription("Normalization latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return m, nil
}

// RecordChunk counts one appended stream chunk.
func (m *Metrics) RecordChunk(ctx context.Context) {
	if m == nil {
		return
	}
	m.chunks.Add(ctx, 1)
}

// RecordReplay records the result of replaying a transcript.
func (m *Metrics) RecordReplay(ctx context.Context, applied, ignored, dropped int) {
	if m == nil {
		return
	}
	if applied > 0 {
		m.patchesApplied.Add(ctx, int64(applied))
	}
	if ignored > 0 {
		m.patchesIgnored.Add(ctx, int64(ignored))
	}
	if dropped > 0 {
		m.dropped.Add(ctx, int64(dropped))
	}
}

// RecordNormalize records one normalization run.
func (m *Metrics) RecordNormalize(ctx context.Context, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.normalizeTotal.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

// RecordRepair counts one repair of the given kind.
func (m *Metrics) RecordRepair(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.repairs.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
