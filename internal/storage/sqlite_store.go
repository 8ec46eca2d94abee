package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS blobs (
	alias      TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps blobs in a single table of an embedded sqlite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &SQLiteStore{db: db, path: filepath.Clean(path)}, nil
}

func (s *SQLiteStore) Location() string { return "sqlite:" + s.path }

func (s *SQLiteStore) Put(ctx context.Context, alias string, data []byte) error {
	if err := validateAlias(alias); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (alias, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(alias) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		alias, data, time.Now().Unix(),
	)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, alias string) ([]byte, error) {
	if err := validateAlias(alias); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE alias = ?`, alias).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *SQLiteStore) Delete(ctx context.Context, alias string) error {
	if err := validateAlias(alias); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE alias = ?`, alias)
	return err
}

func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}
