// Package store persists index snapshots as compressed, checksummed packs.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("snapshot not found")
	ErrChecksum  = errors.New("snapshot checksum mismatch")
	ErrEmptyKey  = errors.New("snapshot key is empty")
	ErrCorrupted = errors.New("snapshot pack is corrupted")
)

// SnapshotStore keeps opaque snapshot blobs under string keys. Put replaces
// an existing blob.
type SnapshotStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}
