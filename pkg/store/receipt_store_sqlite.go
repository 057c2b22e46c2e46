package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (creating if needed) the lite mode database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return db, nil
}

type SQLiteReceiptStore struct {
	db *sql.DB
}

// NewSQLiteReceiptStore wraps db and creates the receipts table.
func NewSQLiteReceiptStore(db *sql.DB) (*SQLiteReceiptStore, error) {
	s := &SQLiteReceiptStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteReceiptStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS render_receipts (
		render_id TEXT PRIMARY KEY,
		tree_hash TEXT NOT NULL,
		root TEXT NOT NULL,
		elements INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		repairs INTEGER NOT NULL DEFAULT 0,
		tree TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS render_receipts_tree_hash ON render_receipts (tree_hash);`
	if _, err := s.db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to migrate render_receipts: %w", err)
	}
	return nil
}

// Fixed-width so text order is time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteColumns = `render_id, tree_hash, root, elements, bytes, repairs, tree, data, created_at`

func (s *SQLiteReceiptStore) Store(ctx context.Context, r *Receipt) error {
	query := `INSERT OR IGNORE INTO render_receipts (` + sqliteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		r.RenderID, r.TreeHash, r.Root, r.Elements, r.Bytes, r.Repairs,
		string(r.Tree), string(r.Data), r.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

func (s *SQLiteReceiptStore) Get(ctx context.Context, renderID string) (*Receipt, error) {
	query := `SELECT ` + sqliteColumns + ` FROM render_receipts WHERE render_id = ?`
	return scanSQLiteReceipt(s.db.QueryRowContext(ctx, query, renderID))
}

func (s *SQLiteReceiptStore) GetByHash(ctx context.Context, treeHash string) (*Receipt, error) {
	query := `SELECT ` + sqliteColumns + ` FROM render_receipts WHERE tree_hash = ? ORDER BY created_at DESC LIMIT 1`
	return scanSQLiteReceipt(s.db.QueryRowContext(ctx, query, treeHash))
}

func (s *SQLiteReceiptStore) List(ctx context.Context, limit int) ([]*Receipt, error) {
	query := `SELECT ` + sqliteColumns + ` FROM render_receipts ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var receipts []*Receipt
	for rows.Next() {
		r, err := scanSQLiteReceipt(rows)
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

// SQLite keeps timestamps and JSON as text.
func scanSQLiteReceipt(row scanner) (*Receipt, error) {
	var (
		r         Receipt
		tree      string
		data      string
		createdAt string
	)
	err := row.Scan(&r.RenderID, &r.TreeHash, &r.Root, &r.Elements, &r.Bytes, &r.Repairs, &tree, &data, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.Tree = []byte(tree)
	r.Data = []byte(data)
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
