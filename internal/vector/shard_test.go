package vector

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShard_SealsOnThreshold(t *testing.T) {
	s := NewShard(0, testParams(), 2, CompactionConfig{DeleteRatioThreshold: 0.5, MinSegments: 1})

	require.NoError(t, s.Index("a", []float32{1, 0, 0}, nil))
	require.NoError(t, s.Index("b", []float32{0, 1, 0}, nil))
	// third write crosses the threshold and should rotate a new active segment
	require.NoError(t, s.Index("c", []float32{0, 0, 1}, nil))

	assert.Len(t, s.sealed, 1)
	assert.True(t, s.sealed[0].IsSealed())
	assert.Equal(t, 3, s.TotalCount())
}

func TestShard_SearchMergesAcrossSegments(t *testing.T) {
	s := NewShard(0, testParams(), 1, CompactionConfig{DeleteRatioThreshold: 0.5, MinSegments: 1})

	require.NoError(t, s.Index("a", []float32{1, 0, 0}, nil))
	require.NoError(t, s.Index("b", []float32{0, 1, 0}, nil)) // seals the first segment

	results, err := s.Search([]float32{1, 0, 0}, 2, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestShard_DeleteFindsDocInSealedSegment(t *testing.T) {
	s := NewShard(0, testParams(), 1, CompactionConfig{DeleteRatioThreshold: 0.5, MinSegments: 1})
	require.NoError(t, s.Index("a", []float32{1, 0, 0}, nil))
	require.NoError(t, s.Index("b", []float32{0, 1, 0}, nil)) // seals segment holding "a"

	s.Delete("a")
	assert.False(t, s.Contains("a"))
}

func TestShard_CompactPreservesLiveEntries(t *testing.T) {
	s := NewShard(0, testParams(), 1, CompactionConfig{DeleteRatioThreshold: 0.4, MinSegments: 1})

	// Each Index call after the first seals the prior active segment, so
	// five writes produce four single-doc sealed segments (a-d) plus an
	// active segment holding e.
	ids := []string{"a", "b", "c", "d", "e"}
	vecs := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}, {1, 0, 1}}
	for i, id := range ids {
		require.NoError(t, s.Index(id, vecs[i], nil))
	}
	s.Delete("a")
	s.Delete("b")

	require.NoError(t, s.Compact())

	assert.False(t, s.Contains("a"))
	assert.False(t, s.Contains("b"))
	assert.True(t, s.Contains("c"))
	assert.True(t, s.Contains("d"))
}

func TestShard_MergeAllShardsCollapsesToOneSegment(t *testing.T) {
	s := NewShard(0, testParams(), 1, CompactionConfig{DeleteRatioThreshold: 0.5, MinSegments: 1})
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("d%d", i)
		require.NoError(t, s.Index(id, []float32{float32(i), 0, 0}, nil))
	}

	require.NoError(t, s.MergeAllShards())

	assert.Len(t, s.sealed, 1)
	assert.Equal(t, 4, s.LiveCount())
}

func TestShard_CompactRequiresStoredVectors(t *testing.T) {
	params := testParams()
	params.StoreVectors = false
	s := NewShard(0, params, 1, CompactionConfig{DeleteRatioThreshold: 0.1, MinSegments: 1})
	require.NoError(t, s.Index("a", []float32{1, 0, 0}, nil))
	require.NoError(t, s.Index("b", []float32{0, 1, 0}, nil))
	s.Delete("a")

	err := s.Compact()
	assert.Error(t, err)
}
