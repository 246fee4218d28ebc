package vector

import (
	"sort"
	"sync"

	"github.com/prismsearch/prism/internal/perr"
)

// CompactionConfig bounds when Shard.Compact collapses sealed segments
// (spec §4.3).
type CompactionConfig struct {
	DeleteRatioThreshold float64
	MinSegments          int
}

// Shard is one (collection, shard) vector partition: a single active
// segment plus an ordered list of sealed segments (spec §3, §4.3).
type Shard struct {
	mu sync.RWMutex

	id           uint32
	params       Params
	sealDocs     int
	aliveRatioLB float64
	compaction   CompactionConfig

	active    *Segment
	sealed    []*Segment
	nextSegID uint32
}

func NewShard(id uint32, params Params, sealDocs int, compaction CompactionConfig) *Shard {
	s := &Shard{
		id:           id,
		params:       params,
		sealDocs:     sealDocs,
		aliveRatioLB: 0.5,
		compaction:   compaction,
	}
	s.active = NewSegment(0, params)
	s.nextSegID = 1
	return s
}

func (s *Shard) ID() uint32 { return s.id }

// Index writes doc to the active segment, sealing and rotating it first if
// it has reached the configured size threshold (spec §4.3).
func (s *Shard) Index(docID string, vec []float32, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealDocs > 0 && s.active.TotalCount() >= s.sealDocs && !s.active.Contains(docID) {
		s.sealActiveLocked()
	}
	return s.active.Add(docID, vec, fields)
}

// sealActiveLocked seals the current active segment and replaces it with a
// fresh one. Caller must hold s.mu.
func (s *Shard) sealActiveLocked() {
	s.active.Seal()
	s.sealed = append(s.sealed, s.active)
	s.active = NewSegment(s.nextSegID, s.params)
	s.nextSegID++
}

// SealActive forces a seal+rotate, used by tests and explicit maintenance.
func (s *Shard) SealActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealActiveLocked()
}

// Delete finds whichever segment currently holds docID live and tombstones
// it there (spec §4.3).
func (s *Shard) Delete(docID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active.Contains(docID) {
		s.active.Delete(docID)
		return
	}
	for _, seg := range s.sealed {
		if seg.Contains(docID) {
			seg.Delete(docID)
			return
		}
	}
}

// Contains reports whether docID is live anywhere in the shard.
func (s *Shard) Contains(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active.Contains(docID) {
		return true
	}
	for _, seg := range s.sealed {
		if seg.Contains(docID) {
			return true
		}
	}
	return false
}

// Search queries every segment, drops dominated duplicates by id (highest
// score wins), then returns the top-k (spec §4.3).
func (s *Shard) Search(vec []float32, k int, efSearch int) ([]ScoredDoc, error) {
	s.mu.RLock()
	segments := make([]*Segment, 0, len(s.sealed)+1)
	segments = append(segments, s.active)
	segments = append(segments, s.sealed...)
	s.mu.RUnlock()

	best := make(map[string]ScoredDoc)
	for _, seg := range segments {
		results, err := seg.Search(vec, k, efSearch, s.aliveRatioLB)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if cur, ok := best[r.ID]; !ok || r.Score > cur.Score {
				best[r.ID] = r
			}
		}
	}

	out := make([]ScoredDoc, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// LiveCount sums live entries across every segment.
func (s *Shard) LiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := s.active.LiveCount()
	for _, seg := range s.sealed {
		total += seg.LiveCount()
	}
	return total
}

// TotalCount sums every entry ever written across every segment.
func (s *Shard) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := s.active.TotalCount()
	for _, seg := range s.sealed {
		total += seg.TotalCount()
	}
	return total
}

// Compact finds sealed-segment candidates meeting the delete-ratio
// threshold and, if there are at least MinSegments of them, rebuilds a
// single merged segment from their live entries (spec §4.3, P3, scenario 4).
// The new segment id is max(existing)+1, monotonically assigned.
func (s *Shard) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates, keep []*Segment
	for _, seg := range s.sealed {
		if seg.IsCompactionCandidate(s.compaction.DeleteRatioThreshold) {
			candidates = append(candidates, seg)
		} else {
			keep = append(keep, seg)
		}
	}
	if len(candidates) < s.compaction.MinSegments {
		return nil
	}

	merged, err := mergeSegments(s.nextMergedID(), s.params, candidates)
	if err != nil {
		return err
	}
	merged.Seal()

	s.sealed = append(keep, merged)
	return nil
}

func (s *Shard) nextMergedID() uint32 {
	id := s.nextSegID
	s.nextSegID++
	return id
}

// mergeSegments concatenates live entries from segs into a single fresh
// segment. Used by both Compact and MergeAllShards (spec §4.3, §9 Open
// Question on merge_all_shards being single-pass in-memory).
func mergeSegments(id uint32, params Params, segs []*Segment) (*Segment, error) {
	if !params.StoreVectors {
		return nil, perr.New(perr.KindBackend, "cannot merge segments without stored vectors; StoreVectors=false forbids compaction/merge")
	}
	merged := NewSegment(id, params)
	for _, seg := range segs {
		for _, e := range seg.liveEntries() {
			if e.vec == nil {
				return nil, perr.New(perr.KindBackend, "cannot merge segment without stored vectors; StoreVectors=false forbids compaction/merge")
			}
			if err := merged.Add(e.id, e.vec, e.fields); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}

// MergeAllShards concatenates every live entry from every segment in the
// shard into a single fresh sealed segment, replacing the sealed list and
// leaving an empty active segment (spec §4.3). Single-pass, in-memory —
// the spec's Open Question flags a streaming variant as future work.
func (s *Shard) MergeAllShards() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*Segment, 0, len(s.sealed)+1)
	all = append(all, s.active)
	all = append(all, s.sealed...)

	merged, err := mergeSegments(s.nextMergedID(), s.params, all)
	if err != nil {
		return err
	}
	merged.Seal()

	s.sealed = []*Segment{merged}
	s.active = NewSegment(s.nextMergedID(), s.params)
	return nil
}
