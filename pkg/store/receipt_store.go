// Package store persists render receipts: a record of every tree that
// passed normalization, keyed by a render ID and by the canonical hash of
// the tree. Postgres and SQLite (lite mode) implementations share one
// interface.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/canonicalize"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/normalize"
)

// ErrNotFound is returned when no receipt matches.
var ErrNotFound = errors.New("receipt not found")

// Receipt records one validated UI payload.
type Receipt struct {
	RenderID  string          `json:"render_id"`
	TreeHash  string          `json:"tree_hash"`
	Root      string          `json:"root"`
	Elements  int             `json:"elements"`
	Bytes     int             `json:"bytes"`
	Repairs   int             `json:"repairs"`
	Tree      json.RawMessage `json:"tree"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewReceipt builds a receipt for a normalization result. Tree and data are
// stored in canonical form.
func NewReceipt(res *normalize.Result) (*Receipt, error) {
	tree, err := canonicalize.JCS(res.Tree)
	if err != nil {
		return nil, fmt.Errorf("canonicalize tree: %w", err)
	}
	data, err := canonicalize.JCS(res.Data)
	if err != nil {
		return nil, fmt.Errorf("canonicalize data: %w", err)
	}
	return &Receipt{
		RenderID:  uuid.NewString(),
		TreeHash:  res.Hash,
		Root:      res.Tree.Root,
		Elements:  len(res.Tree.Elements),
		Bytes:     res.Bytes,
		Repairs:   len(res.Repairs),
		Tree:      tree,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ReceiptStore defines the interface for persisting and retrieving render receipts.
type ReceiptStore interface {
	Store(ctx context.Context, r *Receipt) error
	Get(ctx context.Context, renderID string) (*Receipt, error)
	// GetByHash returns the most recent receipt for a tree hash.
	GetByHash(ctx context.Context, treeHash string) (*Receipt, error)
	List(ctx context.Context, limit int) ([]*Receipt, error)
}

// PostgresReceiptStore is a durable SQL-based implementation.
type PostgresReceiptStore struct {
	db *sql.DB
}

func NewPostgresReceiptStore(db *sql.DB) *PostgresReceiptStore {
	return &PostgresReceiptStore{db: db}
}

// Init creates the receipts table if needed.
func (s *PostgresReceiptStore) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS render_receipts (
			render_id TEXT PRIMARY KEY,
			tree_hash TEXT NOT NULL,
			root TEXT NOT NULL,
			elements INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			repairs INTEGER NOT NULL DEFAULT 0,
			tree JSONB NOT NULL,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS render_receipts_tree_hash ON render_receipts (tree_hash);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create render_receipts: %w", err)
	}
	return nil
}

const pgColumns = `render_id, tree_hash, root, elements, bytes, repairs, tree, data, created_at`

func (s *PostgresReceiptStore) Store(ctx context.Context, r *Receipt) error {
	query := `INSERT INTO render_receipts (` + pgColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (render_id) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query,
		r.RenderID,
		r.TreeHash,
		r.Root,
		r.Elements,
		r.Bytes,
		r.Repairs,
		[]byte(r.Tree),
		[]byte(r.Data),
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

func (s *PostgresReceiptStore) Get(ctx context.Context, renderID string) (*Receipt, error) {
	query := `SELECT ` + pgColumns + ` FROM render_receipts WHERE render_id = $1`
	return scanReceipt(s.db.QueryRowContext(ctx, query, renderID))
}

func (s *PostgresReceiptStore) GetByHash(ctx context.Context, treeHash string) (*Receipt, error) {
	query := `SELECT ` + pgColumns + ` FROM render_receipts WHERE tree_hash = $1 ORDER BY created_at DESC LIMIT 1`
	return scanReceipt(s.db.QueryRowContext(ctx, query, treeHash))
}

func (s *PostgresReceiptStore) List(ctx context.Context, limit int) ([]*Receipt, error) {
	query := `SELECT ` + pgColumns + ` FROM render_receipts ORDER BY created_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var receipts []*Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return receipts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row scanner) (*Receipt, error) {
	var (
		r    Receipt
		tree []byte
		data []byte
	)
	err := row.Scan(&r.RenderID, &r.TreeHash, &r.Root, &r.Elements, &r.Bytes, &r.Repairs, &tree, &data, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.Tree = json.RawMessage(tree)
	r.Data = json.RawMessage(data)
	return &r, nil
}
