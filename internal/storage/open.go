// Package storage opens the snapshot store selected by the configuration and
// reads score documents from object storage.
package storage

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/scorelink/internal/config"
	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/store"
	"github.com/OFFIS-RIT/scorelink/pkg/store/pgx"
	"github.com/OFFIS-RIT/scorelink/pkg/store/sqlite"
)

// Open returns the snapshot store for cfg.Store.
func Open(ctx context.Context, cfg *config.Config) (store.SnapshotStore, error) {
	logger.Debug("[Store] Opening snapshot store", "kind", cfg.Store.Kind)

	switch cfg.Store.Kind {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorePostgres:
		s, err := pgx.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreS3:
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.Store.Bucket, cfg.Store.Prefix), nil
	default:
		return nil, fmt.Errorf("%w: store kind %q", config.ErrInvalidConfig, cfg.Store.Kind)
	}
}
