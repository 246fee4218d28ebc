package collection

import (
	"context"

	"github.com/prismsearch/prism/internal/hybrid"
	"github.com/prismsearch/prism/internal/text"
	"github.com/prismsearch/prism/internal/vector"
)

// textAdapter narrows a *text.Backend to the hybrid.TextSearcher
// capability the coordinator needs (spec §9's capability-trait wiring).
type textAdapter struct{ b *text.Backend }

func (t textAdapter) Search(ctx context.Context, query string, limit int) ([]hybrid.ScoredDoc, error) {
	res, err := t.b.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return toHybridDocs(res.Hits), nil
}

func (t textAdapter) Get(ctx context.Context, id string) (map[string]any, bool, error) {
	return t.b.Get(ctx, id)
}

func (t textAdapter) Delete(ctx context.Context, id string) error {
	return t.b.Delete(ctx, id)
}

func (t textAdapter) DocCount(ctx context.Context) (uint64, error) {
	return t.b.Stats(ctx)
}

func toHybridDocs(hits []text.ScoredDoc) []hybrid.ScoredDoc {
	out := make([]hybrid.ScoredDoc, len(hits))
	for i, h := range hits {
		out[i] = hybrid.ScoredDoc{ID: h.ID, Score: h.Score, Fields: h.Fields}
	}
	return out
}

// vectorAdapter narrows a *vector.Backend to the hybrid.VectorSearcher
// capability, pinning the collection's configured efSearch.
type vectorAdapter struct {
	b        *vector.Backend
	efSearch int
}

func (v vectorAdapter) Search(ctx context.Context, vec []float32, limit int) ([]hybrid.ScoredDoc, error) {
	hits, err := v.b.Search(ctx, vec, limit, v.efSearch)
	if err != nil {
		return nil, err
	}
	out := make([]hybrid.ScoredDoc, len(hits))
	for i, h := range hits {
		out[i] = hybrid.ScoredDoc{ID: h.ID, Score: h.Score, Fields: map[string]any(h.Fields)}
	}
	return out, nil
}

func (v vectorAdapter) Delete(ctx context.Context, id string) error {
	return v.b.Delete(ctx, id)
}

func (v vectorAdapter) LiveCount() int {
	return v.b.Stats().LiveCount
}
