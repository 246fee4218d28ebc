package aggs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docsFixture() []Doc {
	docs := make([]Doc, 0, 300)
	for i := 0; i < 300; i++ {
		lang := "go"
		if i%3 == 0 {
			lang = "rust"
		}
		docs = append(docs, Doc{
			ID:     string(rune('a' + i%26)),
			Score:  float64(i),
			Fields: map[string]any{"lang": lang, "size": float64(i)},
		})
	}
	return docs
}

func TestCountAgg(t *testing.T) {
	result := Run(map[string]Aggregation{"n": &CountAgg{}}, docsFixture())
	assert.Equal(t, int64(300), result["n"])
}

func TestNumericAggs(t *testing.T) {
	docs := []Doc{
		{Fields: map[string]any{"x": 1.0}},
		{Fields: map[string]any{"x": 2.0}},
		{Fields: map[string]any{"x": 3.0}},
	}
	result := Run(map[string]Aggregation{
		"sum": NewSumAgg("x"),
		"min": NewMinAgg("x"),
		"max": NewMaxAgg("x"),
		"avg": NewAvgAgg("x"),
	}, docs)
	assert.Equal(t, 6.0, result["sum"])
	assert.Equal(t, 1.0, result["min"])
	assert.Equal(t, 3.0, result["max"])
	assert.Equal(t, 2.0, result["avg"])
}

func TestTermsAgg_OrderedByCountThenKey(t *testing.T) {
	result := Run(map[string]Aggregation{"lang": NewTermsAgg("lang", 10)}, docsFixture())
	buckets := result["lang"].([]TermBucket)
	require.Len(t, buckets, 2)
	assert.Equal(t, "go", buckets[0].Key)
	assert.Greater(t, buckets[0].Count, buckets[1].Count)
}

func TestTermsAgg_BoundedBySize(t *testing.T) {
	result := Run(map[string]Aggregation{"lang": NewTermsAgg("lang", 1)}, docsFixture())
	buckets := result["lang"].([]TermBucket)
	require.Len(t, buckets, 1)
}

func TestHistogramAgg(t *testing.T) {
	docs := []Doc{
		{Fields: map[string]any{"x": 1.0}},
		{Fields: map[string]any{"x": 5.0}},
		{Fields: map[string]any{"x": 15.0}},
	}
	result := Run(map[string]Aggregation{"hist": NewHistogramAgg("x", 10)}, docs)
	buckets := result["hist"].([]HistogramBucket)
	require.Len(t, buckets, 2)
	assert.Equal(t, 0.0, buckets[0].Key)
	assert.Equal(t, int64(2), buckets[0].Count)
	assert.Equal(t, 10.0, buckets[1].Key)
	assert.Equal(t, int64(1), buckets[1].Count)
}

func TestFilterAgg(t *testing.T) {
	result := Run(map[string]Aggregation{
		"go_count": NewFilterAgg(func(d Doc) bool { return d.Fields["lang"] == "go" }, &CountAgg{}),
	}, docsFixture())
	assert.Equal(t, int64(200), result["go_count"])
}

func TestRangeAgg(t *testing.T) {
	docs := []Doc{
		{Fields: map[string]any{"x": 1.0}},
		{Fields: map[string]any{"x": 50.0}},
		{Fields: map[string]any{"x": 150.0}},
	}
	result := Run(map[string]Aggregation{
		"ranges": NewRangeAgg("x", []RangeBucket{
			{From: 0, To: 100},
			{From: 100, To: 200},
		}),
	}, docs)
	buckets := result["ranges"].([]RangeBucket)
	require.Len(t, buckets, 2)
	assert.Equal(t, int64(2), buckets[0].Count)
	assert.Equal(t, int64(1), buckets[1].Count)
}
