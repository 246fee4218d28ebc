package text

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prismsearch/prism/internal/aggs"
)

func testBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := NewBackend(Config{Fields: []FieldConfig{
		{Name: "body", Type: FieldString, Indexed: true, Stored: true},
		{Name: "lang", Type: FieldString, Indexed: true, Stored: true},
	}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend_IndexSearchDelete(t *testing.T) {
	ctx := context.Background()
	b := testBackend(t)

	require.NoError(t, b.Index(ctx, "doc1", map[string]any{"body": "parseJSON helper", "lang": "go"}))
	require.NoError(t, b.Index(ctx, "doc2", map[string]any{"body": "unrelated text", "lang": "rust"}))

	res, err := b.Search(ctx, "json", 10)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	require.Equal(t, "doc1", res.Hits[0].ID)

	require.NoError(t, b.Delete(ctx, "doc1"))
	res, err = b.Search(ctx, "json", 10)
	require.NoError(t, err)
	require.Empty(t, res.Hits)
}

func TestBackend_SearchWithAggs(t *testing.T) {
	ctx := context.Background()
	b := testBackend(t)

	for i := 0; i < 5; i++ {
		lang := "go"
		if i%2 == 0 {
			lang = "rust"
		}
		require.NoError(t, b.Index(ctx, idFor(i), map[string]any{"body": "function parseJSON", "lang": lang}))
	}

	res, err := b.SearchWithAggs(ctx, "json", 10, map[string]aggs.Aggregation{
		"langs": aggs.NewTermsAgg("lang", 10),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Aggs["langs"])
}

func idFor(i int) string {
	return string(rune('a' + i))
}
