// Package pgx is a SnapshotStore backed by PostgreSQL.
package pgx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `CREATE TABLE IF NOT EXISTS index_snapshots (
	key        TEXT PRIMARY KEY,
	size       INTEGER NOT NULL,
	blob       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// SnapshotDBStorage keeps snapshots in the index_snapshots table.
type SnapshotDBStorage struct {
	conn   pgxIConn
	closer func()

	schemaOnce sync.Once
	schemaErr  error
}

var _ store.SnapshotStore = (*SnapshotDBStorage)(nil)

// NewSnapshotDBStorageWithConnection uses an existing connection. Closing the
// storage leaves the connection open.
func NewSnapshotDBStorageWithConnection(conn pgxIConn) *SnapshotDBStorage {
	return &SnapshotDBStorage{conn: conn}
}

// Connect opens a pool for databaseURL. The pool is closed with the storage.
func Connect(ctx context.Context, databaseURL string) (*SnapshotDBStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	s := NewSnapshotDBStorageWithConnection(pool)
	s.closer = pool.Close
	return s, nil
}

func (s *SnapshotDBStorage) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		if _, err := s.conn.Exec(ctx, createTable); err != nil {
			s.schemaErr = fmt.Errorf("creating snapshot table: %w", err)
			return
		}
		logger.Debug("[Store] Snapshot table ready")
	})
	return s.schemaErr
}

func (s *SnapshotDBStorage) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return store.ErrEmptyKey
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.conn.Exec(ctx,
		`INSERT INTO index_snapshots (key, size, blob) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET size = EXCLUDED.size, blob = EXCLUDED.blob, updated_at = now()`,
		key, len(data), data,
	)
	if err != nil {
		return fmt.Errorf("storing snapshot %q: %w", key, err)
	}
	return nil
}

func (s *SnapshotDBStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var blob []byte
	err := s.conn.QueryRow(ctx, `SELECT blob FROM index_snapshots WHERE key = $1`, key).Scan(&blob)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot %q: %w", key, err)
	}
	return blob, nil
}

func (s *SnapshotDBStorage) Close() error {
	if s.closer != nil {
		s.closer()
	}
	return nil
}
