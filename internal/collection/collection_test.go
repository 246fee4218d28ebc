package collection

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismsearch/prism/internal/embedcache"
	"github.com/prismsearch/prism/internal/hybrid"
	"github.com/prismsearch/prism/internal/ingest"
	"github.com/prismsearch/prism/internal/text"
	"github.com/prismsearch/prism/internal/vector"
)

func testSchema(name string) Schema {
	return Schema{
		Name: name,
		Text: &text.Config{Fields: []text.FieldConfig{
			{Name: "title", Type: text.FieldString, Indexed: true, Stored: true},
		}},
		Vector: &VectorConfig{
			EmbeddingField: "embedding",
			Dimension:      4,
			Metric:         vector.MetricCosine,
			M:              8,
			EfConstruction: 64,
			EfSearch:       32,
			NumShards:      2,
		},
		VectorWeight: 0.5,
	}
}

func TestNewCollection_BuildsBackends(t *testing.T) {
	c, err := newCollection(testSchema("docs"), nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, c.Text)
	assert.NotNil(t, c.Vector)
	assert.NotNil(t, c.Graph)
}

func TestCollection_IndexGetDelete(t *testing.T) {
	c, err := newCollection(testSchema("docs"), nil, nil, nil)
	require.NoError(t, err)

	doc := ingest.Document{ID: "1", Fields: map[string]any{
		"title":     "hello world",
		"embedding": []float32{0.1, 0.2, 0.3, 0.4},
	}}
	require.NoError(t, c.Index(context.Background(), []ingest.Document{doc}))

	fields, ok, err := c.Get(context.Background(), "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello world", fields["title"])

	require.NoError(t, c.Delete(context.Background(), "1"))
	_, ok, err = c.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollection_SearchFuses(t *testing.T) {
	c, err := newCollection(testSchema("docs"), nil, nil, nil)
	require.NoError(t, err)

	docs := []ingest.Document{
		{ID: "1", Fields: map[string]any{"title": "rust systems programming", "embedding": []float32{1, 0, 0, 0}}},
		{ID: "2", Fields: map[string]any{"title": "go concurrency patterns", "embedding": []float32{0, 1, 0, 0}}},
	}
	require.NoError(t, c.Index(context.Background(), docs))

	hits, err := c.Search(context.Background(), "rust", []float32{1, 0, 0, 0}, 5, nil, hybrid.Hints{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "1", hits[0].ID)
}

type blockingEmbedder struct {
	calls   atomic.Int64
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (e *blockingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	e.once.Do(func() { close(e.started) })
	<-e.release
	return []float32{0.1, 0.2, 0.3, 0.4}, nil
}

func (e *blockingEmbedder) ModelName() string { return "test-model" }

// Concurrent Index calls that auto-embed the same text must collapse into
// one embedder call (spec's embedding-cache singleflight dedup).
func TestCollection_AutoEmbedDedupesConcurrentIdenticalText(t *testing.T) {
	schema := testSchema("docs")
	schema.Vector.EmbeddingField = "body"
	cache, err := embedcache.NewDurable(100)
	require.NoError(t, err)
	embedder := &blockingEmbedder{started: make(chan struct{}), release: make(chan struct{})}

	c, err := newCollection(schema, nil, cache, embedder)
	require.NoError(t, err)

	const n = 5
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			doc := ingest.Document{ID: string(rune('a' + i)), Fields: map[string]any{
				"title": "same text",
				"body":  "same text",
			}}
			_ = c.Index(context.Background(), []ingest.Document{doc})
		}(i)
	}

	<-embedder.started
	close(embedder.release)
	wg.Wait()

	assert.Equal(t, int64(1), embedder.calls.Load())
}

func TestSchema_ValidateRejectsBadVectorWeight(t *testing.T) {
	s := testSchema("bad")
	s.VectorWeight = 2
	assert.Error(t, s.Validate())
}

func TestSchema_ValidateRejectsZeroDimension(t *testing.T) {
	s := testSchema("bad")
	s.Vector.Dimension = 0
	assert.Error(t, s.Validate())
}
