package stream

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/time/rate"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/observability"
)

const transcript = `Here is your dashboard:
{"op":"set","path":"/root","value":"main"}
{"op":"add","path":"/elements/main","value":{"key":"main","type":"Stack","props":{"direction":"vertical"},"children":["title"]}}
{"op":"add","path":"/elements/title","value":{"key":"title","type":"Heading","props":{"text":"Sales \"Q3\" {draft}"},"children":[]}}
{"op":"set","path":"/data/filters/status","value":"active"}
{"op":"set","path":"/elements/title/props/level","value":"h2"}
{"op":"set","path":"/nowhere","value":1}
{broken json}
{"note":"no op here"}
`

func TestSession_AppendPartialThenRest(t *testing.T) {
	ctx := context.Background()
	s := NewSession()

	snap := s.Append(ctx, `{"op":"set","path":"/root","valu`)
	assert.Equal(t, 0, snap.Patches)
	assert.Equal(t, `{"op":"set","path":"/root","valu`, snap.Remainder)
	assert.Equal(t, "", snap.Tree.Root)

	snap = s.Append(ctx, `e":"main"}`)
	assert.Equal(t, 1, snap.Patches)
	assert.Equal(t, "main", snap.Tree.Root)
	assert.Equal(t, "", snap.Remainder)
}

func TestSession_Counters(t *testing.T) {
	s := NewSession()
	snap := s.Append(context.Background(), transcript)

	assert.Equal(t, 6, snap.Patches)
	assert.Equal(t, 5, snap.Applied)
	assert.Equal(t, 2, snap.Ignored)
	assert.Equal(t, 1, snap.Dropped)
	assert.Equal(t, `Sales "Q3" {draft}`, snap.Tree.Elements["title"].Props["text"])
	assert.Equal(t, "h2", snap.Tree.Elements["title"].Props["level"])
	assert.Equal(t, map[string]any{"filters": map[string]any{"status": "active"}}, snap.Data)
}

func TestSession_ChunkingInvariance(t *testing.T) {
	ctx := context.Background()
	whole := NewSession().Append(ctx, transcript)

	for _, size := range []int{1, 2, 7, 64, len(transcript)} {
		s := NewSession()
		var last Snapshot
		require.NoError(t, s.Feed(ctx, strings.NewReader(transcript), size, func(snap Snapshot) {
			last = snap
		}))
		if diff := cmp.Diff(whole, last); diff != "" {
			t.Errorf("chunk size %d: snapshot mismatch (-whole +chunked):\n%s", size, diff)
		}
		assert.Equal(t, transcript, s.Buffer())
	}
}

func TestSession_Reset(t *testing.T) {
	ctx := context.Background()
	s := NewSession(WithID("msg-1"))
	assert.Equal(t, "msg-1", s.ID())

	s.Append(ctx, transcript)
	s.Reset(ctx)

	snap := s.Snapshot()
	assert.Equal(t, "", snap.Tree.Root)
	assert.Empty(t, snap.Tree.Elements)
	assert.Empty(t, snap.Data)
	assert.Equal(t, "", s.Buffer())

	snap = s.Append(ctx, `{"op":"set","path":"/root","value":"next"}`)
	assert.Equal(t, "next", snap.Tree.Root)
	assert.Equal(t, 1, snap.Patches)
}

func TestSession_SnapshotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewSession()
	snap := s.Append(ctx, transcript)

	snap.Tree.Elements["title"].Props["text"] = "mutated"
	snap.Data["filters"] = "gone"

	again := s.Snapshot()
	assert.Equal(t, `Sales "Q3" {draft}`, again.Tree.Elements["title"].Props["text"])
	assert.Equal(t, map[string]any{"status": "active"}, again.Data["filters"])
}

func TestSession_ConcurrentSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewSession()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, ch := range transcript {
			s.Append(ctx, string(ch))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			snap := s.Snapshot()
			assert.NotNil(t, snap.Tree)
		}
	}()
	wg.Wait()

	assert.Equal(t, "main", s.Snapshot().Tree.Root)
}

func TestFeed_Errors(t *testing.T) {
	s := NewSession()
	assert.Error(t, s.Feed(context.Background(), strings.NewReader("x"), 0, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Feed(ctx, strings.NewReader(transcript), 8, nil), context.Canceled)
}

func TestFeed_WithLimiter(t *testing.T) {
	s := NewSession(WithLimiter(rate.NewLimiter(rate.Inf, 1)))
	calls := 0
	require.NoError(t, s.Feed(context.Background(), strings.NewReader(transcript), 32, func(Snapshot) { calls++ }))
	assert.Equal(t, (len(transcript)+31)/32, calls)
	assert.Equal(t, "main", s.Snapshot().Tree.Root)
}

func TestSession_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	metrics, err := observability.NewMetrics(mp.Meter("stream-test"))
	require.NoError(t, err)

	s := NewSession(WithMetrics(metrics))
	require.NoError(t, s.Feed(context.Background(), strings.NewReader(transcript), 16, nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64((len(transcript)+15)/16), totals["genui.stream.chunks"])
	assert.Equal(t, int64(5), totals["genui.patches.applied"])
	assert.Equal(t, int64(2), totals["genui.patches.ignored"])
	assert.Equal(t, int64(1), totals["genui.fragments.dropped"])
}
