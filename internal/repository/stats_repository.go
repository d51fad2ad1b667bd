// Package repository persists bot state across restarts.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/iconidentify/xrelay/internal/domain"
)

// StatsRepository stores the delivery counters in a single-row SQLite
// table. Writes are serialized by the database; concurrent flushes from
// multiple message handlers are safe.
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository opens (and if needed creates) the stats database.
func NewStatsRepository(path string) (*StatsRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS stats (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			messages_handled INTEGER NOT NULL DEFAULT 0,
			media_downloaded INTEGER NOT NULL DEFAULT 0
		);
		INSERT OR IGNORE INTO stats (id) VALUES (1);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &StatsRepository{db: db}, nil
}

// Load reads the persisted counters into a fresh Stats record.
func (r *StatsRepository) Load(ctx context.Context) (*domain.Stats, error) {
	var messages, media int64
	err := r.db.QueryRowContext(ctx,
		`SELECT messages_handled, media_downloaded FROM stats WHERE id = 1`,
	).Scan(&messages, &media)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	return domain.NewStats(messages, media), nil
}

// Save writes the current counter values.
func (r *StatsRepository) Save(ctx context.Context, stats *domain.Stats) error {
	messages, media := stats.Snapshot()

	_, err := r.db.ExecContext(ctx,
		`UPDATE stats SET messages_handled = ?, media_downloaded = ? WHERE id = 1`,
		messages, media,
	)
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

// Reset zeroes the persisted counters.
func (r *StatsRepository) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE stats SET messages_handled = 0, media_downloaded = 0 WHERE id = 1`,
	)
	if err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *StatsRepository) Close() error {
	return r.db.Close()
}
