// Package collection composes the per-collection backends (text, vector,
// graph), the ingest pipeline, and the ranking configuration into the
// registry the rest of the core talks to (spec §4.11).
package collection

import (
	"github.com/prismsearch/prism/internal/perr"
	"github.com/prismsearch/prism/internal/rank"
	"github.com/prismsearch/prism/internal/text"
	"github.com/prismsearch/prism/internal/vector"
)

// VectorConfig is a collection's vector-backend schema (spec §3).
type VectorConfig struct {
	EmbeddingField string
	Dimension      int
	Metric         vector.Metric
	M              int
	EfConstruction int
	EfSearch       int
	NumShards      int
	Oversample     float64
	SegmentSealDocs int
	Compaction     vector.CompactionConfig
	// StoreVectorsForCompaction gates lossless compaction (spec §9 Open
	// Question #1); false forbids Compact/MergeAllShards.
	StoreVectorsForCompaction bool
}

// GraphConfig is a collection's graph-backend schema.
type GraphConfig struct {
	NumShards int
}

// Schema is a collection's full declarative configuration (spec §3).
type Schema struct {
	Name         string
	Text         *text.Config
	Vector       *VectorConfig
	Graph        *GraphConfig
	Pipeline     string
	VectorWeight float64
	Rank         rank.Config
}

// Validate enforces the schema invariants of spec §3: vector.dimension > 0,
// vector_weight in [0,1], num_shards >= 1, and that every indexed text
// field name appears at most once (a stable type across the collection's
// life, the part of the invariant checkable at schema-definition time).
func (s Schema) Validate() error {
	if s.Name == "" {
		return perr.New(perr.KindSchema, "collection name is required")
	}
	if s.VectorWeight < 0 || s.VectorWeight > 1 {
		return perr.New(perr.KindSchema, "vector_weight must be in [0,1]")
	}
	if s.Vector != nil {
		if s.Vector.Dimension <= 0 {
			return perr.New(perr.KindSchema, "vector.dimension must be > 0")
		}
		if s.Vector.NumShards < 1 {
			return perr.New(perr.KindSchema, "vector.num_shards must be >= 1")
		}
	}
	if s.Graph != nil && s.Graph.NumShards < 1 {
		return perr.New(perr.KindSchema, "graph.num_shards must be >= 1")
	}
	if s.Text != nil {
		seen := make(map[string]bool, len(s.Text.Fields))
		for _, f := range s.Text.Fields {
			if seen[f.Name] {
				return perr.New(perr.KindSchema, "duplicate text field: "+f.Name)
			}
			seen[f.Name] = true
		}
	}
	return nil
}

// backendNames lists the backend kinds a collection built from this schema
// has (newCollection adds a graph backend whenever Graph or Vector is set),
// in the order the export manifest contract (spec §6) documents them: text,
// vector, graph.
func (s Schema) backendNames() []string {
	var out []string
	if s.Text != nil {
		out = append(out, "text")
	}
	if s.Vector != nil {
		out = append(out, "vector")
	}
	if s.Graph != nil || s.Vector != nil {
		out = append(out, "graph")
	}
	return out
}

// graphShardCount defaults to the vector shard count so the two backends
// agree on routing, unless Graph overrides it.
func (s Schema) graphShardCount() int {
	if s.Graph != nil && s.Graph.NumShards > 0 {
		return s.Graph.NumShards
	}
	if s.Vector != nil && s.Vector.NumShards > 0 {
		return s.Vector.NumShards
	}
	return 1
}
