package hybrid

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/prismsearch/prism/internal/perr"
)

// TextSearcher is the capability the text backend exposes to the
// coordinator (spec §9's "capability traits": the coordinator holds owned
// handles to a narrow capability set, not a concrete backend type).
type TextSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]ScoredDoc, error)
	Get(ctx context.Context, id string) (map[string]any, bool, error)
	Delete(ctx context.Context, id string) error
	DocCount(ctx context.Context) (uint64, error)
}

// VectorSearcher is the capability the vector backend exposes.
type VectorSearcher interface {
	Search(ctx context.Context, vec []float32, limit int) ([]ScoredDoc, error)
	Delete(ctx context.Context, id string) error
	LiveCount() int
}

// ScoredDoc is a backend-agnostic ranked result the coordinator fuses.
type ScoredDoc struct {
	ID     string
	Score  float32
	Fields map[string]any
}

// FusionMethod selects how the coordinator combines text and vector
// rankings (spec §4.7).
type FusionMethod string

const (
	FusionRRF      FusionMethod = "rrf"
	FusionWeighted FusionMethod = "weighted"
)

// Hints are the optional per-query fusion overrides (spec §4.7).
type Hints struct {
	Method       FusionMethod
	RRFK         int
	TextWeight   float64
	VectorWeight float64
}

// Config is a collection's hybrid-search defaults (spec §3's
// vector_weight).
type Config struct {
	VectorWeight float64 // default weight for the vector side of weighted fusion
}

// Coordinator fans a query to text and vector backends and fuses the
// results (spec §4.7).
type Coordinator struct {
	Text   TextSearcher
	Vector VectorSearcher
	Config Config
}

// Result is the coordinator's fused output.
type Result struct {
	Hits []ScoredDoc
}

// Search implements spec §4.7's three-step contract: text-only when there
// is no query vector; otherwise parallel fan-out and fusion.
func (c *Coordinator) Search(ctx context.Context, query string, vec []float32, limit int, hints Hints) (Result, error) {
	if len(vec) == 0 || c.Vector == nil {
		hits, err := c.Text.Search(ctx, query, limit)
		if err != nil {
			return Result{}, err
		}
		return Result{Hits: hits}, nil
	}

	var textHits, vectorHits []ScoredDoc
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		textHits, err = c.Text.Search(gctx, query, limit)
		return err
	})
	g.Go(func() error {
		var err error
		vectorHits, err = c.Vector.Search(gctx, vec, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	fieldsByID := make(map[string]map[string]any, len(textHits)+len(vectorHits))
	for _, h := range textHits {
		fieldsByID[h.ID] = h.Fields
	}
	for _, h := range vectorHits {
		if _, ok := fieldsByID[h.ID]; !ok {
			fieldsByID[h.ID] = h.Fields
		}
	}

	fused := c.fuse(textHits, vectorHits, limit, hints)
	hits := make([]ScoredDoc, len(fused))
	for i, f := range fused {
		hits[i] = ScoredDoc{ID: f.ID, Score: float32(f.Score), Fields: fieldsByID[f.ID]}
	}
	return Result{Hits: hits}, nil
}

func (c *Coordinator) fuse(text, vector []ScoredDoc, limit int, hints Hints) []FusedDoc {
	method := hints.Method
	if method == "" {
		method = FusionRRF
	}

	switch method {
	case FusionWeighted:
		vectorWeight := hints.VectorWeight
		if vectorWeight == 0 {
			vectorWeight = c.Config.VectorWeight
		}
		textWeight := hints.TextWeight
		if textWeight == 0 {
			textWeight = 1 - vectorWeight
		}
		return WeightedSum(limit, textWeight, vectorWeight, toRanked(text), toRanked(vector))
	case FusionRRF:
		fallthrough
	default:
		return RRF(hints.RRFK, limit, toRanked(text), toRanked(vector))
	}
}

func toRanked(hits []ScoredDoc) []Ranked {
	out := make([]Ranked, len(hits))
	for i, h := range hits {
		out[i] = Ranked{ID: h.ID, Rank: i + 1, Score: float64(h.Score)}
	}
	return out
}

// Get prefers the text backend and falls back to vector (spec §4.7). The
// vector backend doesn't carry a Get capability in this design (its
// segments are keyed for ANN search, not point lookup), so fallback here
// means reporting "not found" rather than erroring when text lacks the id.
func (c *Coordinator) Get(ctx context.Context, id string) (map[string]any, bool, error) {
	fields, ok, err := c.Text.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return fields, ok, nil
}

// Delete fans out to both backends (spec §4.7). A collection without a
// vector backend (Vector == nil, a valid configuration per spec §3) only
// deletes from text.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	if err := c.Text.Delete(ctx, id); err != nil {
		return err
	}
	if c.Vector != nil {
		if err := c.Vector.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports the max document count across backends, per spec §4.7.
func (c *Coordinator) Stats(ctx context.Context) (uint64, error) {
	textCount, err := c.Text.DocCount(ctx)
	if err != nil {
		return 0, perr.Wrap(perr.KindBackend, "text stats", err)
	}
	if c.Vector == nil {
		return textCount, nil
	}
	vectorCount := uint64(c.Vector.LiveCount())
	if vectorCount > textCount {
		return vectorCount, nil
	}
	return textCount, nil
}
