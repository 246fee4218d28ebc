package storage

import (
	"context"
	"testing"

	"github.com/prismsearch/prism/internal/perr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	path := NewShardPath("blog", BackendVector, 0, 3)
	data := []byte("hello prism")

	require.NoError(t, s.Write(ctx, path, data))

	got, err := s.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	exists, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, path))

	exists, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStore_ReadMissingIsNotFound(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	_, err := s.Read(context.Background(), NewShardPath("blog", BackendVector, 0, 1))
	require.Error(t, err)
	assert.True(t, perr.IsNotFound(err))
}

func TestLocalStore_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	under := []Path{
		NewShardPath("c", BackendVector, 0, 1),
		NewShardPath("c", BackendVector, 0, 2),
		NewShardPath("c", BackendVector, 0, 3),
	}
	for _, p := range under {
		require.NoError(t, s.Write(ctx, p, []byte("x")))
	}
	unrelated := NewShardPath("c", BackendVector, 1, 1)
	require.NoError(t, s.Write(ctx, unrelated, []byte("y")))

	require.NoError(t, s.DeletePrefix(ctx, "c/vector/0"))

	list, err := s.List(ctx, "c/vector/0")
	require.NoError(t, err)
	assert.Empty(t, list)

	stillThere, err := s.Exists(ctx, unrelated)
	require.NoError(t, err)
	assert.True(t, stillThere)
}
