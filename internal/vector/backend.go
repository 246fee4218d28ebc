package vector

import (
	"context"
	"hash/fnv"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/prismsearch/prism/internal/perr"
)

// BackendConfig configures a sharded Backend (spec §3, §4.4).
type BackendConfig struct {
	NumShards  int
	Params     Params
	SealDocs   int
	Compaction CompactionConfig
	// Oversample multiplies k before fanning out to each shard, so that
	// per-shard tombstone filtering doesn't starve the merged top-k (spec
	// §4.4, P2). Values <= 1 disable oversampling.
	Oversample float64
}

// Stats summarizes a Backend for Collection.Stats (spec §4.11).
type Stats struct {
	NumShards int
	LiveCount int
	TotalCount int
}

// Backend is the sharded ANN vector index for one collection (spec §4.4):
// documents route to a shard by a stable hash of their id, index writes go
// to exactly one shard, and search fans out to every shard in parallel and
// merges the oversampled results.
type Backend struct {
	cfg    BackendConfig
	shards []*Shard
}

// NewBackend constructs a Backend with cfg.NumShards empty shards.
func NewBackend(cfg BackendConfig) (*Backend, error) {
	if cfg.NumShards <= 0 {
		return nil, perr.New(perr.KindBackend, "num_shards must be positive")
	}
	b := &Backend{cfg: cfg}
	b.shards = make([]*Shard, cfg.NumShards)
	for i := range b.shards {
		b.shards[i] = NewShard(uint32(i), cfg.Params, cfg.SealDocs, cfg.Compaction)
	}
	return b, nil
}

// shardFor hashes docID with FNV-1a and routes it mod num_shards. The same
// id always maps to the same shard for the lifetime of the backend (spec
// §4.4, P1: shard routing stability).
func (b *Backend) shardFor(docID string) *Shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(docID))
	idx := h.Sum32() % uint32(len(b.shards))
	return b.shards[idx]
}

// Index routes docID to its shard and writes it there.
func (b *Backend) Index(ctx context.Context, docID string, vec []float32, fields Fields) error {
	return b.shardFor(docID).Index(docID, vec, fields)
}

// Delete routes docID to its shard and tombstones it there. Delete is
// idempotent: deleting an id the backend has never seen is a no-op (spec
// §4.4).
func (b *Backend) Delete(ctx context.Context, docID string) error {
	b.shardFor(docID).Delete(docID)
	return nil
}

// Contains reports whether docID is live anywhere in the backend.
func (b *Backend) Contains(docID string) bool {
	return b.shardFor(docID).Contains(docID)
}

// Search fans out to every shard concurrently, each oversampled to k, then
// merges and truncates to the global top-k (spec §4.4, P2).
func (b *Backend) Search(ctx context.Context, vec []float32, k int, efSearch int) ([]ScoredDoc, error) {
	perShardK := k
	if b.cfg.Oversample > 1 {
		perShardK = int(math.Ceil(float64(k) * b.cfg.Oversample))
	}

	results := make([][]ScoredDoc, len(b.shards))

	g, _ := errgroup.WithContext(ctx)
	for i, shard := range b.shards {
		i, shard := i, shard
		g.Go(func() error {
			r, err := shard.Search(vec, perShardK, efSearch)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]ScoredDoc, 0, k*len(b.shards))
	for _, r := range results {
		merged = append(merged, r...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// CompactAll runs Shard.Compact on every shard, skipping shards that error
// isn't fatal to the others (best-effort, mirrors the spec §9 decision on
// delete_by_query's best-effort ordering).
func (b *Backend) CompactAll() error {
	var firstErr error
	for _, shard := range b.shards {
		if err := shard.Compact(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MergeAllShards collapses every segment in every shard into one sealed
// segment per shard (spec §4.3's merge_all_shards, §9 Open Question:
// single-pass in-memory).
func (b *Backend) MergeAllShards() error {
	for _, shard := range b.shards {
		if err := shard.MergeAllShards(); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports live/total document counts across the backend.
func (b *Backend) Stats() Stats {
	s := Stats{NumShards: len(b.shards)}
	for _, shard := range b.shards {
		s.LiveCount += shard.LiveCount()
		s.TotalCount += shard.TotalCount()
	}
	return s
}

// NumShards returns the configured shard count.
func (b *Backend) NumShards() int { return len(b.shards) }
