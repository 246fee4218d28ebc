package rank

import (
	"context"
	"sort"
	"strings"
)

// Doc is the minimal candidate shape the rerank phase scores: an id, its
// phase-1 score, and the concatenated text of its configured rerank fields
// (spec §4.8).
type Doc struct {
	ID    string
	Score float32
	Text  string
}

// Reranker scores (query, document-text) pairs for the top-N candidates
// from phase-1 retrieval (spec §4.8). Grounded on
// contextd/internal/reranker.Reranker, generalized from the teacher's
// "50/50 combine" blend into RerankConfig.BlendWeight.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []Doc) ([]float32, error)
}

// ConcatRerank is the default reranker: it scores query/document term
// overlap over each Doc's Text (which Collection.Search builds from the
// configured fields with ConcatFields), the same lexical-overlap heuristic
// contextd's SimpleReranker uses when no ML reranker is configured. An
// empty query returns each document's phase-1 Score unchanged.
type ConcatRerank struct{}

func (ConcatRerank) Rerank(_ context.Context, query string, docs []Doc) ([]float32, error) {
	queryTerms := tokenizeForOverlap(query)
	scores := make([]float32, len(docs))
	if len(queryTerms) == 0 {
		for i, d := range docs {
			scores[i] = d.Score
		}
		return scores, nil
	}

	for i, d := range docs {
		docTerms := tokenizeForOverlap(d.Text)
		scores[i] = termOverlap(queryTerms, docTerms)
	}
	return scores, nil
}

func tokenizeForOverlap(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = true
	}
	return out
}

func termOverlap(query, doc map[string]bool) float32 {
	if len(query) == 0 {
		return 0
	}
	var hits int
	for term := range query {
		if doc[term] {
			hits++
		}
	}
	return float32(hits) / float32(len(query))
}

// RerankConfig controls phase-2 reranking (spec §4.8).
type RerankConfig struct {
	Enabled     bool
	TopN        int
	Fields      []string // concatenated to build Doc.Text via ConcatFields
	BlendWeight float64  // 0 = phase-1 score only, 1 = reranker score only
}

// ConcatFields concatenates fields from a document's field map, in the
// configured order, to build the text a reranker scores (spec §4.8's
// "default rerank_results that concatenates configured text fields per
// document, preserving input order").
func ConcatFields(fields map[string]any, names []string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if v, ok := fields[name].(string); ok {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// candidate pairs a phase-1 scored doc with its reranked score for
// re-sorting.
type candidate struct {
	id       string
	phase1   float32
	reranked float32
	final    float32
	idx      int
}

// Apply reranks the top cfg.TopN of docs (by current order, assumed
// phase-1-sorted) and blends phase-1/reranker scores per BlendWeight,
// preserving the relative order of any documents past TopN (spec §4.8).
func Apply(ctx context.Context, reranker Reranker, cfg RerankConfig, query string, docs []Doc) ([]Doc, error) {
	if !cfg.Enabled || reranker == nil || len(docs) == 0 {
		return docs, nil
	}

	topN := cfg.TopN
	if topN <= 0 || topN > len(docs) {
		topN = len(docs)
	}
	head := docs[:topN]
	tail := docs[topN:]

	scores, err := reranker.Rerank(ctx, query, head)
	if err != nil {
		return nil, err
	}

	blend := cfg.BlendWeight
	cands := make([]candidate, len(head))
	for i, d := range head {
		cands[i] = candidate{
			id:       d.ID,
			phase1:   d.Score,
			reranked: scores[i],
			final:    float32((1-blend)*float64(d.Score) + blend*float64(scores[i])),
			idx:      i,
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].final > cands[j].final })

	out := make([]Doc, 0, len(docs))
	for _, c := range cands {
		d := head[c.idx]
		d.Score = c.final
		out = append(out, d)
	}
	out = append(out, tail...)
	return out, nil
}
