package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/store"

	_ "github.com/lib/pq" // Postgres Driver
)

// openReceiptStore connects to Postgres when DATABASE_URL is set and falls
// back to lite mode (SQLite under the data directory) otherwise. The
// returned func closes the database.
func (rt *runtime) openReceiptStore(ctx context.Context) (store.ReceiptStore, func(), error) {
	if rt.cfg.LiteMode() {
		path := rt.cfg.SQLitePath()
		rt.logger.InfoContext(ctx, "lite mode: using sqlite", "path", path)
		db, err := store.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewSQLiteReceiptStore(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to init sqlite receipt store: %w", err)
		}
		return s, func() { _ = db.Close() }, nil
	}

	db, err := sql.Open("postgres", rt.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("DB ping failed: %w", err)
	}
	s := store.NewPostgresReceiptStore(db)
	if err := s.Init(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to init receipt store: %w", err)
	}
	rt.logger.InfoContext(ctx, "postgres: connected")
	return s, func() { _ = db.Close() }, nil
}
