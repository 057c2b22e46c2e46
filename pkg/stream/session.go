// Package stream holds the consumer side of a streamed UI: a Session
// accumulates generator text and re-derives the tree and data model from
// scratch on every chunk, so the result depends only on the text received
// and never on how it was chunked.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/observability"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/patch"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/uitree"
)

// Snapshot is the derived state after the text received so far.
type Snapshot struct {
	Tree *uitree.Tree `json:"tree"`
	Data uitree.Data  `json:"data"`
	// Patches is the number of complete patch objects extracted.
	Patches int `json:"patches"`
	// Applied counts patches that were routed to the tree or data model.
	Applied int `json:"applied"`
	// Ignored counts unroutable patches plus objects without an op.
	Ignored int `json:"ignored"`
	// Dropped counts unparsable {...} spans.
	Dropped   int    `json:"dropped"`
	Remainder string `json:"remainder,omitempty"`
}

func emptySnapshot() Snapshot {
	return Snapshot{Tree: uitree.NewTree(), Data: uitree.NewData()}
}

func (s Snapshot) clone() Snapshot {
	s.Tree = s.Tree.Clone()
	s.Data = uitree.CloneData(s.Data)
	return s
}

// Session owns one message's text buffer and derived state. It is safe to
// Append from one goroutine while another takes snapshots.
type Session struct {
	id      string
	logger  *slog.Logger
	metrics *observability.Metrics
	limiter *rate.Limiter

	mu   sync.Mutex
	buf  strings.Builder
	snap Snapshot
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records chunk and patch counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithID sets the session ID used in logs and spans.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithLimiter paces Feed: one token is taken per chunk read.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Session) { s.limiter = l }
}

// NewSession returns an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:   uuid.NewString(),
		snap: emptySnapshot(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "stream", "session", s.id)
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Append adds chunk to the buffer and replays every patch in it from the
// empty state.
func (s *Session) Append(ctx context.Context, chunk string) Snapshot {
	_, span := otel.Tracer("genui").Start(ctx, "stream.append")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.WriteString(chunk)
	scan := patch.Scan(s.buf.String())
	tree, data, stats := patch.Replay(scan.Patches)

	prev := s.snap
	s.snap = Snapshot{
		Tree:      tree,
		Data:      data,
		Patches:   len(scan.Patches),
		Applied:   stats.Applied,
		Ignored:   stats.Ignored + scan.Ignored,
		Dropped:   scan.Dropped,
		Remainder: scan.Remainder,
	}

	s.metrics.RecordChunk(ctx)
	s.metrics.RecordReplay(ctx,
		s.snap.Applied-prev.Applied,
		s.snap.Ignored-prev.Ignored,
		s.snap.Dropped-prev.Dropped,
	)
	if s.snap.Dropped > prev.Dropped {
		s.logger.DebugContext(ctx, "dropped malformed fragment", "dropped", s.snap.Dropped)
	}
	span.SetAttributes(
		attribute.String("genui.session", s.id),
		attribute.Int("genui.patches", s.snap.Patches),
		attribute.Int("genui.buffer_bytes", s.buf.Len()),
	)
	return s.snap.clone()
}

// Reset discards the buffer and derived state, as when a new message starts.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	s.snap = emptySnapshot()
	s.logger.DebugContext(ctx, "session reset")
}

// Snapshot returns a copy of the current derived state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Buffer returns the accumulated text.
func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Feed reads r in chunks of at most chunkSize bytes, appending each to s and
// passing the resulting snapshot to onSnapshot (which may be nil). It stops
// at EOF, on a read error, or when ctx is done.
func (s *Session) Feed(ctx context.Context, r io.Reader, chunkSize int, onSnapshot func(Snapshot)) error {
	if chunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if s.limiter != nil {
				if werr := s.limiter.Wait(ctx); werr != nil {
					return werr
				}
			}
			snap := s.Append(ctx, string(buf[:n]))
			if onSnapshot != nil {
				onSnapshot(snap)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
	}
}
