package vector

import (
	"math"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/coder/hnsw"
	"github.com/prismsearch/prism/internal/perr"
)

// Segment is one (active or sealed) unit inside a Shard (spec §3, §4.2):
// an HNSW graph keyed by u32, the id<->key maps for this segment, a
// tombstone bitset, and — when StoreVectors is set — the source vectors so
// compaction can rebuild a merged segment losslessly.
type Segment struct {
	mu sync.RWMutex

	id     uint32
	params Params

	graph      *hnsw.Graph[uint32]
	toDistance func(float32) float32
	idToKey    map[string]uint32
	keyToID    map[uint32]string
	fields     map[uint32]Fields
	vectors    map[uint32][]float32
	tombstones *roaring.Bitmap
	sealed     bool
	nextKey    uint32
}

// NewSegment constructs an empty, writable segment.
func NewSegment(id uint32, params Params) *Segment {
	dist, toSim := distanceFuncFor(params.Metric)
	g := hnsw.NewGraph[uint32]()
	g.M = params.M
	g.EfSearch = params.EfSearch
	g.Distance = dist

	return &Segment{
		id:         id,
		params:     params,
		graph:      g,
		toDistance: toSim,
		idToKey:    make(map[string]uint32),
		keyToID:    make(map[uint32]string),
		fields:     make(map[uint32]Fields),
		vectors:    make(map[uint32][]float32),
		tombstones: roaring.New(),
	}
}

func (s *Segment) ID() uint32 { return s.id }

// Add inserts or overwrites docID (spec §4.2's "id -> key unique within a
// segment"). Re-adding an id already present in this segment overwrites in
// place rather than creating a second HNSW key.
func (s *Segment) Add(docID string, vec []float32, fields Fields) error {
	if len(vec) != s.params.Dimensions {
		return perr.New(perr.KindBackend, "vector dimension mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return perr.New(perr.KindBackend, "segment is sealed")
	}

	key, exists := s.idToKey[docID]
	if !exists {
		key = s.nextKey
		s.nextKey++
		s.idToKey[docID] = key
		s.keyToID[key] = docID
	} else {
		s.tombstones.Remove(key) // un-tombstone on overwrite
	}

	s.graph.Add(hnsw.Node[uint32]{Key: key, Value: vec})
	s.fields[key] = fields
	if s.params.StoreVectors {
		stored := make([]float32, len(vec))
		copy(stored, vec)
		s.vectors[key] = stored
	}
	return nil
}

// Delete tombstones docID if present in this segment. It never removes the
// node from the HNSW graph (spec §4.2).
func (s *Segment) Delete(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key, ok := s.idToKey[docID]; ok {
		s.tombstones.Add(key)
	}
}

// Contains reports whether docID is live (present and not tombstoned).
func (s *Segment) Contains(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.idToKey[docID]
	return ok && !s.tombstones.Contains(key)
}

// Seal flips the segment immutable for writes. Only its tombstone bitset
// may change afterward (spec §5).
func (s *Segment) Seal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
}

func (s *Segment) IsSealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

// LiveCount returns the number of non-tombstoned entries.
func (s *Segment) LiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idToKey) - int(s.tombstones.GetCardinality())
}

// TotalCount returns every entry ever added to this segment, tombstoned or
// not.
func (s *Segment) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idToKey)
}

// IsCompactionCandidate reports deleted_count/total_count >= threshold for a
// sealed segment (spec §4.2).
func (s *Segment) IsCompactionCandidate(threshold float64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.sealed {
		return false
	}
	total := len(s.idToKey)
	if total == 0 {
		return false
	}
	deleted := int(s.tombstones.GetCardinality())
	return float64(deleted)/float64(total) >= threshold
}

// Search asks the HNSW graph for an oversampled k' to survive tombstone
// filtering, then truncates to k (spec §4.2, P2).
func (s *Segment) Search(vec []float32, k int, efSearch int, aliveRatioLowerBound float64) ([]ScoredDoc, error) {
	if len(vec) != s.params.Dimensions {
		return nil, perr.New(perr.KindBackend, "vector dimension mismatch")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if efSearch > 0 {
		s.graph.EfSearch = efSearch
	}

	kPrime := k
	if aliveRatioLowerBound > 0 && aliveRatioLowerBound < 1 {
		kPrime = int(math.Ceil(float64(k) / (1 - aliveRatioLowerBound)))
	}
	if kPrime < k {
		kPrime = k
	}

	nodes := s.graph.Search(vec, kPrime)
	out := make([]ScoredDoc, 0, k)
	for _, n := range nodes {
		if s.tombstones.Contains(n.Key) {
			continue
		}
		docID, ok := s.keyToID[n.Key]
		if !ok {
			continue
		}
		d := distanceOf(vec, n.Value, s.params.Metric)
		out = append(out, ScoredDoc{ID: docID, Score: s.toDistance(d), Fields: s.fields[n.Key]})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// distanceOf recomputes the raw distance for score conversion; coder/hnsw's
// Search result doesn't expose distance directly so we recompute using the
// same function the graph was built with.
func distanceOf(query, candidate []float32, m Metric) float32 {
	switch m {
	case MetricEuclidean:
		return hnsw.EuclideanDistance(query, candidate)
	case MetricDot:
		return dotDistance(query, candidate)
	case MetricCosine:
		fallthrough
	default:
		return hnsw.CosineDistance(query, candidate)
	}
}

// liveEntries returns every live (docID, vector, fields) triple, used by
// shard-level seal/compaction/merge. A nil vector means StoreVectors is
// false for this segment and the caller must not attempt compaction.
func (s *Segment) liveEntries() []liveEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]liveEntry, 0, len(s.idToKey))
	for id, key := range s.idToKey {
		if s.tombstones.Contains(key) {
			continue
		}
		var vec []float32
		if v, ok := s.vectors[key]; ok {
			vec = v
		}
		out = append(out, liveEntry{id: id, vec: vec, fields: s.fields[key]})
	}
	return out
}

type liveEntry struct {
	id     string
	vec    []float32
	fields Fields
}
