package text

import (
	"context"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	index "github.com/blevesearch/bleve_index_api"

	"github.com/prismsearch/prism/internal/aggs"
	"github.com/prismsearch/prism/internal/perr"
)

// ScoredDoc is one ranked text search result.
type ScoredDoc struct {
	ID     string
	Score  float32
	Fields map[string]any
}

// SearchResult is the output of Backend.Search / SearchWithAggs.
type SearchResult struct {
	Hits  []ScoredDoc
	Total uint64
	Aggs  map[string]any
}

// aggFetchSize bounds how many matches SearchWithAggs pulls from bleve to
// drive the aggregation layer over — aggregations see a searcher snapshot
// (spec §5), not the live index, so this is the snapshot's size.
const aggFetchSize = 10_000

// Backend wraps a bleve index as the inverted full-text backend for one
// collection (spec §4.5): BM25-scored search over schema-declared fields,
// each analyzed with the code tokenizer by default.
type Backend struct {
	index       bleve.Index
	cfg         Config
	storedNames []string
}

// NewBackend builds an in-process bleve index from cfg. Persistence of the
// index's own on-disk layout is out of scope (spec §1); the caller is
// responsible for wiring a storage.Store-backed snapshot if durability is
// needed.
func NewBackend(cfg Config) (*Backend, error) {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	var stored []string
	for _, f := range cfg.Fields {
		fm := fieldMappingFor(f)
		doc.AddFieldMappingsAt(f.Name, fm)
		if f.Stored {
			stored = append(stored, f.Name)
		}
	}
	im.DefaultMapping = doc
	// spec §4.5 requires BM25-scored results; bleve defaults to TF-IDF.
	im.ScoringModel = index.BM25Scoring

	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, perr.Wrap(perr.KindBackend, "build text index", err)
	}
	return &Backend{index: idx, cfg: cfg, storedNames: stored}, nil
}

func fieldMappingFor(f FieldConfig) *mapping.FieldMapping {
	var fm *mapping.FieldMapping
	switch f.Type {
	case FieldInt, FieldFloat:
		fm = bleve.NewNumericFieldMapping()
	case FieldBool:
		fm = bleve.NewBooleanFieldMapping()
	case FieldDate:
		fm = bleve.NewDateTimeFieldMapping()
	case FieldString:
		fallthrough
	default:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = f.Analyzer
		if fm.Analyzer == "" {
			fm.Analyzer = AnalyzerName
		}
	}
	fm.Store = f.Stored
	fm.Index = f.Indexed
	return fm
}

// Index writes or overwrites docID's fields (last write wins, spec §3).
func (b *Backend) Index(ctx context.Context, docID string, fields map[string]any) error {
	if err := b.index.Index(docID, fields); err != nil {
		return perr.Wrap(perr.KindBackend, "index document", err)
	}
	return nil
}

// Delete removes docID. Deleting an id the index has never seen is a no-op,
// matching bleve's own semantics.
func (b *Backend) Delete(ctx context.Context, docID string) error {
	if err := b.index.Delete(docID); err != nil {
		return perr.Wrap(perr.KindBackend, "delete document", err)
	}
	return nil
}

// Get fetches one document's stored fields by id.
func (b *Backend) Get(ctx context.Context, docID string) (map[string]any, bool, error) {
	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{docID}))
	req.Fields = b.storedNames
	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, false, perr.Wrap(perr.KindBackend, "get document", err)
	}
	if len(result.Hits) == 0 {
		return nil, false, nil
	}
	return result.Hits[0].Fields, true, nil
}

// Search runs a BM25-scored query-string search and returns the top-limit
// hits (spec §4.5).
func (b *Backend) Search(ctx context.Context, queryString string, limit int) (SearchResult, error) {
	req := bleve.NewSearchRequest(bleve.NewQueryStringQuery(queryString))
	req.Size = limit
	req.Fields = b.storedNames

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return SearchResult{}, perr.Wrap(perr.KindInvalidQuery, "text search", err)
	}
	return SearchResult{Hits: toScoredDocs(result), Total: result.Total}, nil
}

// SearchWithAggs runs the query, then drives the §4.5/§9 aggregation
// contract over a searcher snapshot of the matched documents (spec §4.5).
// The snapshot is bounded by aggFetchSize; aggregations never see writes
// that arrive after the snapshot is taken (spec §5).
func (b *Backend) SearchWithAggs(ctx context.Context, queryString string, limit int, specs map[string]aggs.Aggregation) (SearchResult, error) {
	req := bleve.NewSearchRequest(bleve.NewQueryStringQuery(queryString))
	fetchSize := limit
	if len(specs) > 0 && fetchSize < aggFetchSize {
		fetchSize = aggFetchSize
	}
	req.Size = fetchSize
	req.Fields = b.storedNames

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return SearchResult{}, perr.Wrap(perr.KindInvalidQuery, "text search", err)
	}

	hits := toScoredDocs(result)
	out := SearchResult{Hits: hits, Total: result.Total}
	if len(hits) > limit {
		out.Hits = hits[:limit]
	}
	if len(specs) > 0 {
		docs := make([]aggs.Doc, len(hits))
		for i, h := range hits {
			docs[i] = aggs.Doc{ID: h.ID, Score: float64(h.Score), Fields: h.Fields}
		}
		out.Aggs = aggs.Run(specs, docs)
	}
	return out, nil
}

func toScoredDocs(result *bleve.SearchResult) []ScoredDoc {
	out := make([]ScoredDoc, 0, len(result.Hits))
	for _, h := range result.Hits {
		out = append(out, ScoredDoc{ID: h.ID, Score: float32(h.Score), Fields: h.Fields})
	}
	return out
}

// Stats reports the live document count.
func (b *Backend) Stats(ctx context.Context) (uint64, error) {
	count, err := b.index.DocCount()
	if err != nil {
		return 0, perr.Wrap(perr.KindBackend, "doc count", err)
	}
	return count, nil
}

// Close releases the underlying bleve index.
func (b *Backend) Close() error { return b.index.Close() }
