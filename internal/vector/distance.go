package vector

import (
	"github.com/coder/hnsw"
)

// distanceFuncFor adapts the collection's Metric to an hnsw.DistanceFunc and
// gives back a distance->similarity conversion matching spec §4.2:
// cosine 1-d, euclidean 1/(1+d), dot 1-d.
func distanceFuncFor(m Metric) (hnsw.DistanceFunc, func(d float32) float32) {
	switch m {
	case MetricEuclidean:
		return hnsw.EuclideanDistance, func(d float32) float32 { return 1 / (1 + d) }
	case MetricDot:
		return dotDistance, func(d float32) float32 { return 1 - d }
	case MetricCosine:
		fallthrough
	default:
		return hnsw.CosineDistance, func(d float32) float32 { return 1 - d }
	}
}

// dotDistance turns dot-product similarity into an HNSW-minimizable
// distance: 1 - dot(a,b). hnsw only ships cosine and euclidean distance
// funcs, so dot is implemented here to satisfy the collection's
// distance ∈ {cosine, euclidean, dot} contract (spec §3).
func dotDistance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return 1 - sum
}

