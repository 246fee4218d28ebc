package embedcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurable_PutGet(t *testing.T) {
	c, err := NewDurable(2)
	require.NoError(t, err)

	c.Put("a", Entry{Vector: []float32{1, 2, 3}, Model: "m"})
	e, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, e.Vector)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestDurable_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewDurable(2)
	require.NoError(t, err)

	c.Put("a", Entry{Vector: []float32{1}})
	c.Put("b", Entry{Vector: []float32{2}})
	_, _ = c.Get("a") // bump a's recency ahead of b
	c.Put("c", Entry{Vector: []float32{3}}) // evicts b

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestDurable_ClearOlderThan(t *testing.T) {
	c, err := NewDurable(10)
	require.NoError(t, err)

	c.Put("old", Entry{Vector: []float32{1}})
	time.Sleep(2 * time.Millisecond)
	c.ClearOlderThan(time.Millisecond)

	_, ok := c.Get("old")
	assert.False(t, ok)
}

func TestKey_Deterministic(t *testing.T) {
	k1 := Key(StrategyModelText, "bge-small", "", "hello world")
	k2 := Key(StrategyModelText, "bge-small", "", "hello world")
	assert.Equal(t, k1, k2)

	k3 := Key(StrategyModelText, "bge-base", "", "hello world")
	assert.NotEqual(t, k1, k3)
}
