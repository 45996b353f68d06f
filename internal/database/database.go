// Discograph - Artist Catalog Service
// Copyright 2026 M. Bellows (mbellows)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbellows/discograph

// Package database provides the DuckDB-backed artist repository.
//
// The store holds two tables: artists (one row per artist) and songs
// (one row per song title, owned by an artist). Song rows carry an
// explicit position so the insertion order of a songs list survives
// the round-trip. There is no FK cascade; deletes remove songs and the
// artist row inside one transaction.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver registration

	"github.com/mbellows/discograph/internal/config"
	"github.com/mbellows/discograph/internal/logging"
)

// DB wraps the DuckDB connection pool and exposes the artist repository.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens (or creates) the DuckDB database at cfg.Path and prepares
// the schema. The caller owns the returned handle and must Close it.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases.
	// 0750 per gosec G301.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Msg("Database opened")

	return db, nil
}

// configureConnectionPool sets connection pool parameters.
//
// DuckDB is an embedded database, so connections are cheap, but a
// bounded pool keeps concurrent query parallelism in line with CPU.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// initialize creates the schema if it does not exist.
func (db *DB) initialize() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS artists (
			id         VARCHAR PRIMARY KEY,
			name       VARCHAR NOT NULL,
			image_url  VARCHAR,
			genre      VARCHAR,
			bio        VARCHAR,
			popularity INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS songs (
			artist_id VARCHAR NOT NULL,
			position  INTEGER NOT NULL,
			title     VARCHAR NOT NULL,
			UNIQUE (artist_id, title)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artists_name ON artists(name)`,
		`CREATE INDEX IF NOT EXISTS idx_artists_popularity ON artists(popularity)`,
		`CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(artist_id)`,
	}

	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	return nil
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint flushes the write-ahead log into the database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	return err
}

// Close checkpoints and closes the database connection pool. The checkpoint
// is best effort; a failure is logged and does not block the close.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	return db.conn.Close()
}

// Conn exposes the underlying pool for tests.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}
