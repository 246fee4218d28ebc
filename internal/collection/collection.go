package collection

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/prismsearch/prism/internal/aggs"
	"github.com/prismsearch/prism/internal/embedcache"
	"github.com/prismsearch/prism/internal/graph"
	"github.com/prismsearch/prism/internal/hybrid"
	"github.com/prismsearch/prism/internal/ingest"
	"github.com/prismsearch/prism/internal/perr"
	"github.com/prismsearch/prism/internal/rank"
	"github.com/prismsearch/prism/internal/text"
	"github.com/prismsearch/prism/internal/vector"
)

// deleteByQueryScanSize bounds how many matches delete_by_query considers
// when no explicit max_docs is given.
const deleteByQueryScanSize = 10_000

// Collection is one named collection's live backends, bound pipeline, and
// ranking configuration (spec §4.11): the unit the Manager registers and
// the core's index/search operations act on.
type Collection struct {
	Schema   Schema
	Text     *text.Backend
	Vector   *vector.Backend
	Graph    *graph.Backend
	Pipeline *ingest.Pipeline
	Rerank   rank.Reranker

	coordinator *hybrid.Coordinator
	cache       embedcache.Cache
	embedder    Embedder
	embedGroup  singleflight.Group
}

// newCollection builds a Collection's backends from its schema (spec §3).
// pipeline may be nil (no ingest transforms); cache/embedder may be nil
// (no auto-embedding indexing path).
func newCollection(schema Schema, pipeline *ingest.Pipeline, cache embedcache.Cache, embedder Embedder) (*Collection, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	c := &Collection{Schema: schema, Pipeline: pipeline, cache: cache, embedder: embedder, Rerank: rank.ConcatRerank{}}

	var textSearcher hybrid.TextSearcher
	if schema.Text != nil {
		tb, err := text.NewBackend(*schema.Text)
		if err != nil {
			return nil, err
		}
		c.Text = tb
		textSearcher = textAdapter{b: tb}
	}

	var vectorSearcher hybrid.VectorSearcher
	if schema.Vector != nil {
		sealDocs := schema.Vector.SegmentSealDocs
		if sealDocs <= 0 {
			sealDocs = 10_000 // seal threshold when the schema leaves it unset
		}
		vb, err := vector.NewBackend(vector.BackendConfig{
			NumShards: schema.Vector.NumShards,
			Params: vector.Params{
				Dimensions:     schema.Vector.Dimension,
				Metric:         schema.Vector.Metric,
				M:              schema.Vector.M,
				EfConstruction: schema.Vector.EfConstruction,
				EfSearch:       schema.Vector.EfSearch,
				StoreVectors:   schema.Vector.StoreVectorsForCompaction,
			},
			SealDocs:   sealDocs,
			Compaction: schema.Vector.Compaction,
			Oversample: schema.Vector.Oversample,
		})
		if err != nil {
			return nil, err
		}
		c.Vector = vb
		vectorSearcher = vectorAdapter{b: vb, efSearch: schema.Vector.EfSearch}
	}

	if schema.Graph != nil || schema.Vector != nil {
		c.Graph = graph.NewBackend(schema.graphShardCount())
	}

	if textSearcher != nil {
		c.coordinator = &hybrid.Coordinator{
			Text:   textSearcher,
			Vector: vectorSearcher,
			Config: hybrid.Config{VectorWeight: schema.VectorWeight},
		}
	}

	return c, nil
}

// Index runs the collection's pipeline (if any), then writes to every
// configured backend: text fields, a resolved vector (precomputed or
// auto-embedded), and graph edges carried in the "_edges" field (spec
// §4.11, §6).
func (c *Collection) Index(ctx context.Context, docs []ingest.Document) error {
	for _, d := range docs {
		if c.Pipeline != nil {
			var err error
			d, err = c.Pipeline.Run(d)
			if err != nil {
				return err
			}
		}

		if c.Text != nil {
			if err := c.Text.Index(ctx, d.ID, d.Fields); err != nil {
				return err
			}
		}

		if c.Vector != nil && c.Schema.Vector != nil {
			vec, err := c.resolveVector(ctx, d)
			if err != nil {
				return err
			}
			if vec != nil {
				if err := c.Vector.Index(ctx, d.ID, vec, vector.Fields(d.Fields)); err != nil {
					return err
				}
			}
		}

		if c.Graph != nil {
			if edges, ok := d.Fields["_edges"].([]graph.Edge); ok {
				c.Graph.SetEdges(d.ID, edges)
			}
		}
	}
	return nil
}

// resolveVector extracts or derives the embedding for d, per the
// EmbeddingField named in the vector schema: a []float32 field is used
// as-is; a string field is embedded (checking the cache first) when an
// Embedder is wired; any other shape is an error.
func (c *Collection) resolveVector(ctx context.Context, d ingest.Document) ([]float32, error) {
	field := c.Schema.Vector.EmbeddingField
	if field == "" {
		return nil, nil
	}
	raw, ok := d.Fields[field]
	if !ok {
		return nil, nil
	}

	switch v := raw.(type) {
	case []float32:
		return v, nil
	case string:
		if c.embedder == nil {
			return nil, perr.New(perr.KindSchema, "embedding field is text but no embedder is configured")
		}
		key := embedcache.Key(embedcache.StrategyModelText, c.embedder.ModelName(), "", v)
		if c.cache != nil {
			if entry, ok := c.cache.Get(key); ok {
				return entry.Vector, nil
			}
		}
		// Dedupe concurrent embed calls for the same (model, text) pair:
		// bulk indexing of duplicate field values otherwise fans out one
		// embedder call per document instead of one per distinct text.
		vec, err, _ := c.embedGroup.Do(key, func() (any, error) {
			vec, err := c.embedder.Embed(ctx, v)
			if err != nil {
				return nil, perr.Wrap(perr.KindBackend, "embed document", err)
			}
			if c.cache != nil {
				now := time.Now()
				c.cache.Put(key, embedcache.Entry{
					Vector:     vec,
					Dimensions: len(vec),
					Model:      c.embedder.ModelName(),
					CreatedAt:  now,
					AccessedAt: now,
				})
			}
			return vec, nil
		})
		if err != nil {
			return nil, err
		}
		return vec.([]float32), nil
	default:
		return nil, perr.New(perr.KindSchema, "embedding field is neither []float32 nor string")
	}
}

// Get fetches a document's stored fields by id.
func (c *Collection) Get(ctx context.Context, id string) (map[string]any, bool, error) {
	if c.coordinator != nil {
		return c.coordinator.Get(ctx, id)
	}
	if c.Text != nil {
		return c.Text.Get(ctx, id)
	}
	return nil, false, perr.New(perr.KindSchema, "collection has no text backend to serve Get")
}

// Delete removes a document from every configured backend.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if c.coordinator != nil {
		if err := c.coordinator.Delete(ctx, id); err != nil {
			return err
		}
	}
	if c.Graph != nil {
		c.Graph.Delete(id)
	}
	return nil
}

// DeleteByQuery matches documents by a text query and deletes up to
// maxDocs of them (0 or less = up to deleteByQueryScanSize matches),
// best-effort in the face of individual
// delete failures (spec §9 Open Question #4: cross-shard delete_by_query
// ordering is best-effort).
func (c *Collection) DeleteByQuery(ctx context.Context, query string, maxDocs int, dryRun bool) (deletedCount int, deletedIDs []string, err error) {
	if c.Text == nil {
		return 0, nil, perr.New(perr.KindSchema, "collection has no text backend to match delete_by_query")
	}
	limit := maxDocs
	if limit <= 0 {
		limit = deleteByQueryScanSize
	}
	res, err := c.Text.Search(ctx, query, limit)
	if err != nil {
		return 0, nil, err
	}
	for _, h := range res.Hits {
		if dryRun {
			deletedIDs = append(deletedIDs, h.ID)
			continue
		}
		if derr := c.Delete(ctx, h.ID); derr != nil {
			continue
		}
		deletedIDs = append(deletedIDs, h.ID)
	}
	return len(deletedIDs), deletedIDs, nil
}

// Search runs the hybrid text+vector search, fuses, then finalizes scores
// through the ranking pipeline (decay/context-boost/field-weight/score
// expression) and optional phase-2 rerank (spec §4.7, §4.8).
func (c *Collection) Search(ctx context.Context, query string, vec []float32, limit int, searchCtx map[string]string, hints hybrid.Hints) ([]hybrid.ScoredDoc, error) {
	if c.coordinator == nil {
		return nil, perr.New(perr.KindSchema, "collection has no searchable backend")
	}
	res, err := c.coordinator.Search(ctx, query, vec, limit, hints)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i, h := range res.Hits {
		ts, _ := h.Fields["_timestamp"].(time.Time)
		cand := rank.ScoredCandidate{ID: h.ID, Score: h.Score, Fields: h.Fields, Timestamp: ts, Context: docContext(h.Fields)}
		res.Hits[i].Score = rank.Finalize(c.Schema.Rank, now, searchCtx, cand)
	}

	if c.Schema.Rank.Rerank.Enabled {
		rerankDocs := make([]rank.Doc, len(res.Hits))
		for i, h := range res.Hits {
			rerankDocs[i] = rank.Doc{ID: h.ID, Score: h.Score, Text: rank.ConcatFields(h.Fields, c.Schema.Rank.Rerank.Fields)}
		}
		reranked, err := rank.Apply(ctx, c.Rerank, c.Schema.Rank.Rerank, query, rerankDocs)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]map[string]any, len(res.Hits))
		for _, h := range res.Hits {
			byID[h.ID] = h.Fields
		}
		out := make([]hybrid.ScoredDoc, len(reranked))
		for i, d := range reranked {
			out[i] = hybrid.ScoredDoc{ID: d.ID, Score: d.Score, Fields: byID[d.ID]}
		}
		return out, nil
	}

	return res.Hits, nil
}

// SearchWithAggs runs a text-only search driving the aggregation contract
// (spec §4.5); hybrid/vector queries don't currently support aggregations.
func (c *Collection) SearchWithAggs(ctx context.Context, query string, limit int, specs map[string]aggs.Aggregation) (text.SearchResult, error) {
	if c.Text == nil {
		return text.SearchResult{}, perr.New(perr.KindSchema, "collection has no text backend")
	}
	return c.Text.SearchWithAggs(ctx, query, limit, specs)
}

// Stats reports the collection's live document count.
func (c *Collection) Stats(ctx context.Context) (uint64, error) {
	if c.coordinator != nil {
		return c.coordinator.Stats(ctx)
	}
	if c.Vector != nil {
		return uint64(c.Vector.Stats().LiveCount), nil
	}
	return 0, nil
}

func docContext(fields map[string]any) map[string]string {
	raw, ok := fields["_context"].(map[string]string)
	if !ok {
		return nil
	}
	return raw
}
