package vector

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackendConfig() BackendConfig {
	return BackendConfig{
		NumShards:  4,
		Params:     testParams(),
		SealDocs:   1000,
		Compaction: CompactionConfig{DeleteRatioThreshold: 0.5, MinSegments: 1},
	}
}

func TestBackend_ShardRoutingIsStable(t *testing.T) {
	b, err := NewBackend(testBackendConfig())
	require.NoError(t, err)

	first := b.shardFor("doc-42").ID()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, b.shardFor("doc-42").ID())
	}
}

func TestBackend_IndexAndSearch(t *testing.T) {
	ctx := context.Background()
	b, err := NewBackend(testBackendConfig())
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("doc-%d", i)
		vec := []float32{float32(i), 0, 0}
		require.NoError(t, b.Index(ctx, id, vec, Fields{"i": i}))
	}

	results, err := b.Search(ctx, []float32{0, 0, 0}, 5, 0)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestBackend_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b, err := NewBackend(testBackendConfig())
	require.NoError(t, err)

	require.NoError(t, b.Index(ctx, "a", []float32{1, 0, 0}, nil))
	require.NoError(t, b.Delete(ctx, "a"))
	require.NoError(t, b.Delete(ctx, "a")) // second delete is a no-op, not an error
	require.NoError(t, b.Delete(ctx, "never-indexed"))

	assert.False(t, b.Contains("a"))
}

func TestBackend_Stats(t *testing.T) {
	ctx := context.Background()
	b, err := NewBackend(testBackendConfig())
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		require.NoError(t, b.Index(ctx, fmt.Sprintf("doc-%d", i), []float32{float32(i), 0, 0}, nil))
	}
	require.NoError(t, b.Delete(ctx, "doc-0"))

	stats := b.Stats()
	assert.Equal(t, 4, stats.NumShards)
	assert.Equal(t, 6, stats.TotalCount)
	assert.Equal(t, 5, stats.LiveCount)
}

func TestBackend_MergeAllShards(t *testing.T) {
	ctx := context.Background()
	b, err := NewBackend(testBackendConfig())
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		require.NoError(t, b.Index(ctx, fmt.Sprintf("doc-%d", i), []float32{float32(i), 0, 0}, nil))
	}

	require.NoError(t, b.MergeAllShards())

	stats := b.Stats()
	assert.Equal(t, 8, stats.LiveCount)
}

func TestNewBackend_RejectsNonPositiveShardCount(t *testing.T) {
	_, err := NewBackend(BackendConfig{NumShards: 0, Params: testParams()})
	assert.Error(t, err)
}
