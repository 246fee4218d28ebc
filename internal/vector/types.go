// Package vector implements the sharded ANN vector backend (spec §4.2-§4.4):
// per-(collection,shard) HNSW segments, the shard that seals and compacts
// them, and the backend that routes documents across shards.
package vector

// Metric is the distance metric a collection's vector field uses.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
	MetricDot       Metric = "dot"
)

// Fields is the open document payload a vector entry carries alongside its
// embedding (spec §3's "tagged-value map").
type Fields map[string]any

// Params bundles the HNSW construction/search knobs from the collection
// schema (spec §3).
type Params struct {
	Dimensions     int
	Metric         Metric
	M              int
	EfConstruction int
	EfSearch       int
	// StoreVectors gates whether a segment retains the source vector
	// alongside Fields, needed for lossless compaction (spec §9 Open
	// Question: "compaction requires the original vector"). false selects
	// the HNSW-state-only variant, which cannot compact.
	StoreVectors bool
}

// ScoredDoc is one ranked vector search result.
type ScoredDoc struct {
	ID     string
	Score  float32
	Fields Fields
}
