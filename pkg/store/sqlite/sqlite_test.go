package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/scorelink/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "snapshots.db")

	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Put(ctx, "", nil), store.ErrEmptyKey)

	require.NoError(t, s.Put(ctx, "b", []byte("first")))
	require.NoError(t, s.Put(ctx, "a", []byte("other")))
	require.NoError(t, s.Put(ctx, "b", []byte("second")))

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err = reopened.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("other"), got)
}

func TestStorePack(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "packs.db"))
	require.NoError(t, err)
	defer s.Close()

	blob, err := store.EncodePack(map[string]int{"last-id-value": 7})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "doc-1", blob))

	raw, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	var v map[string]int
	_, err = store.DecodePack(raw, &v)
	require.NoError(t, err)
	assert.Equal(t, 7, v["last-id-value"])
}
