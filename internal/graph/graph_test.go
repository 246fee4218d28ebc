package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShard_SetEdgesDeleteContains(t *testing.T) {
	s := NewShard(0)
	s.SetEdges("a", []Edge{{Target: "b"}, {Target: "c"}})
	assert.True(t, s.Contains("a"))
	assert.ElementsMatch(t, []Edge{{Target: "b"}, {Target: "c"}}, s.Edges("a"))

	s.Delete("a")
	assert.False(t, s.Contains("a"))
	assert.Nil(t, s.Edges("a"))
}

func TestShard_MergeAllShards(t *testing.T) {
	s := NewShard(0)
	s.SetEdges("a", []Edge{{Target: "b"}})
	s.SetEdges("c", []Edge{{Target: "d"}})
	s.Delete("c")

	merged := s.MergeAllShards()
	assert.True(t, merged.Contains("a"))
	assert.False(t, merged.Contains("c"))
}

func TestBackend_Neighbors(t *testing.T) {
	b := NewBackend(4)
	b.SetEdges("a", []Edge{{Target: "b"}})
	b.SetEdges("b", []Edge{{Target: "c"}})

	direct := b.Neighbors("a", 1)
	require.ElementsMatch(t, []string{"b"}, direct)

	twoHop := b.Neighbors("a", 2)
	require.ElementsMatch(t, []string{"b", "c"}, twoHop)
}

func TestBackend_RoutingStable(t *testing.T) {
	b := NewBackend(4)
	first := b.shardFor("doc-42").ID()
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, b.shardFor("doc-42").ID())
	}
}
