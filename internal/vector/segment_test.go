package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		Dimensions:     3,
		Metric:         MetricCosine,
		M:              16,
		EfConstruction: 100,
		EfSearch:       50,
		StoreVectors:   true,
	}
}

func TestSegment_AddSearchRoundTrip(t *testing.T) {
	seg := NewSegment(0, testParams())
	require.NoError(t, seg.Add("a", []float32{1, 0, 0}, Fields{"x": 1}))
	require.NoError(t, seg.Add("b", []float32{0, 1, 0}, Fields{"x": 2}))

	results, err := seg.Search([]float32{1, 0, 0}, 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestSegment_DeleteIsTombstoneOnly(t *testing.T) {
	seg := NewSegment(0, testParams())
	require.NoError(t, seg.Add("a", []float32{1, 0, 0}, nil))
	seg.Delete("a")

	assert.False(t, seg.Contains("a"))
	assert.Equal(t, 0, seg.LiveCount())
	assert.Equal(t, 1, seg.TotalCount()) // node stays in the graph (P2)
}

func TestSegment_ReAddOverwritesInPlace(t *testing.T) {
	seg := NewSegment(0, testParams())
	require.NoError(t, seg.Add("a", []float32{1, 0, 0}, Fields{"v": 1}))
	seg.Delete("a")
	require.NoError(t, seg.Add("a", []float32{1, 0, 0}, Fields{"v": 2}))

	assert.True(t, seg.Contains("a"))
	assert.Equal(t, 1, seg.TotalCount())
}

func TestSegment_SealRejectsWrites(t *testing.T) {
	seg := NewSegment(0, testParams())
	seg.Seal()
	err := seg.Add("a", []float32{1, 0, 0}, nil)
	assert.Error(t, err)
}

func TestSegment_IsCompactionCandidate(t *testing.T) {
	seg := NewSegment(0, testParams())
	require.NoError(t, seg.Add("a", []float32{1, 0, 0}, nil))
	require.NoError(t, seg.Add("b", []float32{0, 1, 0}, nil))
	seg.Delete("a")

	assert.False(t, seg.IsCompactionCandidate(0.4)) // not sealed yet
	seg.Seal()
	assert.True(t, seg.IsCompactionCandidate(0.4)) // 1/2 >= 0.4
	assert.False(t, seg.IsCompactionCandidate(0.6)) // 1/2 < 0.6
}

func TestSegment_DimensionMismatch(t *testing.T) {
	seg := NewSegment(0, testParams())
	err := seg.Add("a", []float32{1, 0}, nil)
	assert.Error(t, err)
}
