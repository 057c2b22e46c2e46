// Package normalize is the one-shot gate between an untrusted generator and
// the renderer. A complete candidate tree (canonical or legacy nested shape)
// and its data model are coerced, repaired, given placeholder data for
// unbound references, then validated against the catalog and a size bound.
//
// Only the last two steps can fail. Everything before them is best effort
// and reported as a list of Repair entries.
package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/canonicalize"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/catalog"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/observability"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/uitree"
)

const (
	// DefaultMaxBytes bounds the canonical size of a normalized tree.
	DefaultMaxBytes = 48 * 1024
	// DefaultMaxDepth bounds legacy nesting; deeper nodes are dropped.
	DefaultMaxDepth = 12
)

// Normalizer repairs and validates candidate trees. It holds no per-call
// state and is safe for concurrent use.
type Normalizer struct {
	cat      *catalog.Catalog
	maxBytes int
	maxDepth int
	newKey   func(typeName string) string
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMaxBytes sets the size bound. Non-positive values keep the default.
func WithMaxBytes(n int) Option {
	return func(nz *Normalizer) {
		if n > 0 {
			nz.maxBytes = n
		}
	}
}

// WithMaxDepth sets the legacy nesting ceiling. Non-positive values keep the default.
func WithMaxDepth(n int) Option {
	return func(nz *Normalizer) {
		if n > 0 {
			nz.maxDepth = n
		}
	}
}

// WithKeyFunc replaces the generator of fresh element keys. Collisions with
// existing keys are resolved by suffixing.
func WithKeyFunc(fn func(typeName string) string) Option {
	return func(nz *Normalizer) {
		if fn != nil {
			nz.newKey = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(nz *Normalizer) {
		if l != nil {
			nz.logger = l
		}
	}
}

// WithMetrics records normalization outcomes and repairs.
func WithMetrics(m *observability.Metrics) Option {
	return func(nz *Normalizer) { nz.metrics = m }
}

// New creates a Normalizer over cat.
func New(cat *catalog.Catalog, opts ...Option) *Normalizer {
	nz := &Normalizer{
		cat:      cat,
		maxBytes: DefaultMaxBytes,
		maxDepth: DefaultMaxDepth,
		newKey:   randomKey,
		logger:   slog.Default().With("component", "normalize"),
	}
	for _, opt := range opts {
		opt(nz)
	}
	return nz
}

func randomKey(typeName string) string {
	prefix := strings.ToLower(typeName)
	if prefix == "" {
		prefix = "el"
	}
	return prefix + "-" + uuid.NewString()[:8]
}

// Result is a tree that passed validation.
type Result struct {
	Tree    *uitree.Tree `json:"tree"`
	Data    uitree.Data  `json:"data"`
	Bytes   int          `json:"bytes"`
	Hash    string       `json:"hash"`
	Repairs []Repair     `json:"repairs,omitempty"`
}

// Normalize coerces, repairs, fills and validates a candidate tree.
// candidateTree may be a decoded JSON value (object or array) or any value
// that marshals to one; candidateData may be nil. Failures are *TreeError.
func (nz *Normalizer) Normalize(ctx context.Context, candidateTree, candidateData any) (*Result, error) {
	ctx, span := otel.Tracer("genui").Start(ctx, "normalize")
	defer span.End()
	start := time.Now()

	r := &run{
		nz:   nz,
		ctx:  ctx,
		tree: uitree.NewTree(),
		data: uitree.NewData(),
	}
	if d, ok := toGeneric(candidateData).(map[string]any); ok {
		r.data = d
	}

	r.coerceShape(toGeneric(candidateTree))
	r.coerceProps()
	r.repairStructure()
	r.synthesizeData()

	res, err := r.finish()
	outcome := observability.OutcomeOK
	if err != nil {
		outcome = observability.OutcomeSchema
		var te *TreeError
		if errors.As(err, &te) && te.Code == CodeTooLarge {
			outcome = observability.OutcomeTooLarge
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		nz.logger.WarnContext(ctx, "tree rejected", "error", err, "repairs", len(r.repairs))
	} else {
		nz.logger.DebugContext(ctx, "tree normalized",
			"root", res.Tree.Root,
			"elements", len(res.Tree.Elements),
			"bytes", res.Bytes,
			"repairs", len(res.Repairs),
		)
	}
	span.SetAttributes(
		attribute.String("genui.outcome", outcome),
		attribute.Int("genui.repairs", len(r.repairs)),
	)
	nz.metrics.RecordNormalize(ctx, outcome, time.Since(start))
	return res, err
}

// NormalizeJSON decodes and normalizes. Undecodable tree input becomes an
// empty tree (and so fails validation); undecodable data becomes {}.
func (nz *Normalizer) NormalizeJSON(ctx context.Context, treeJSON, dataJSON []byte) (*Result, error) {
	var tree any
	if err := json.Unmarshal(treeJSON, &tree); err != nil {
		nz.logger.WarnContext(ctx, "candidate tree is not JSON", "error", err)
		tree = nil
	}
	var data any
	if len(strings.TrimSpace(string(dataJSON))) > 0 {
		if err := json.Unmarshal(dataJSON, &data); err != nil {
			nz.logger.WarnContext(ctx, "candidate data is not JSON", "error", err)
			data = nil
		}
	}
	return nz.Normalize(ctx, tree, data)
}

// run is the state of one Normalize call.
type run struct {
	nz      *Normalizer
	ctx     context.Context
	tree    *uitree.Tree
	data    uitree.Data
	repairs []Repair
}

func (r *run) finish() (*Result, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	canonical, err := canonicalize.JCS(r.tree)
	if err != nil {
		return nil, schemaErr("", "tree is not serializable: %v", err)
	}
	if len(canonical) > r.nz.maxBytes {
		return nil, &TreeError{
			Code:    CodeTooLarge,
			Message: fmt.Sprintf("serialized tree is %d bytes, limit is %d", len(canonical), r.nz.maxBytes),
		}
	}
	return &Result{
		Tree:    r.tree,
		Data:    r.data,
		Bytes:   len(canonical),
		Hash:    canonicalize.HashBytes(canonical),
		Repairs: r.repairs,
	}, nil
}

// freshKey returns a key for a synthesized or legacy element that is not
// already in use.
func (r *run) freshKey(typeName string) string {
	return r.uniqueKey(typeName, r.taken)
}

func (r *run) uniqueKey(typeName string, taken func(string) bool) string {
	base := r.nz.newKey(typeName)
	if base == "" {
		base = "el"
	}
	key := base
	for i := 2; taken(key); i++ {
		key = fmt.Sprintf("%s-%d", base, i)
	}
	return key
}

func (r *run) taken(key string) bool {
	_, ok := r.tree.Elements[key]
	return ok
}

func elementPath(key string, rest ...string) string {
	return uitree.JoinPointer(append([]string{"elements", key}, rest...)...)
}
