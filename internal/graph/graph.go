// Package graph implements the sharded adjacency store (spec §3, §4.3
// "merge-all-shards consolidation applies identically to graph and vector").
package graph

import (
	"hash/fnv"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Edge is one outgoing adjacency from a document to another, with an
// optional relation label and weight (spec §3's open document fields
// extended to graph edges).
type Edge struct {
	Target string
	Label  string
	Weight float32
}

// Shard is one (collection, shard) graph partition: live adjacency lists
// keyed by source id, plus a tombstone set mirroring the vector shard's
// shape (spec §4.3).
type Shard struct {
	mu sync.RWMutex

	id         uint32
	adjacency  map[string][]Edge
	idToKey    map[string]uint32
	keyToID    map[uint32]string
	tombstones *roaring.Bitmap
	nextKey    uint32
}

func NewShard(id uint32) *Shard {
	return &Shard{
		id:         id,
		adjacency:  make(map[string][]Edge),
		idToKey:    make(map[string]uint32),
		keyToID:    make(map[uint32]string),
		tombstones: roaring.New(),
	}
}

func (s *Shard) ID() uint32 { return s.id }

func (s *Shard) keyFor(id string) uint32 {
	key, ok := s.idToKey[id]
	if !ok {
		key = s.nextKey
		s.nextKey++
		s.idToKey[id] = key
		s.keyToID[key] = id
	}
	return key
}

// SetEdges replaces docID's outgoing edges, un-tombstoning it if it had
// been deleted (last write wins, spec §3).
func (s *Shard) SetEdges(docID string, edges []Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.keyFor(docID)
	s.tombstones.Remove(key)
	s.adjacency[docID] = edges
}

// Delete tombstones docID; its adjacency list is retained but Edges/Contains
// report it as gone.
func (s *Shard) Delete(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key, ok := s.idToKey[docID]; ok {
		s.tombstones.Add(key)
	}
}

// Contains reports whether docID is live in this shard.
func (s *Shard) Contains(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.idToKey[docID]
	return ok && !s.tombstones.Contains(key)
}

// Edges returns docID's live outgoing edges, or nil if absent/tombstoned.
func (s *Shard) Edges(docID string) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.idToKey[docID]
	if !ok || s.tombstones.Contains(key) {
		return nil
	}
	return s.adjacency[docID]
}

// LiveCount returns the number of non-tombstoned source ids.
func (s *Shard) LiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idToKey) - int(s.tombstones.GetCardinality())
}

// MergeAllShards concatenates every live adjacency list into a fresh shard
// (spec §4.3). Single-pass in-memory, same shape as the vector shard's
// merge (spec §9 Open Question: streaming is future work).
func (s *Shard) MergeAllShards() *Shard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := NewShard(s.id)
	for id, edges := range s.adjacency {
		key, ok := s.idToKey[id]
		if !ok || s.tombstones.Contains(key) {
			continue
		}
		merged.SetEdges(id, edges)
	}
	return merged
}

// Backend is the sharded graph backend for one collection: documents route
// to a shard by the same stable hash the vector backend uses, so the two
// backends agree on shard assignment for a given id (spec §4.4's routing
// invariant, generalized to graph).
type Backend struct {
	shards []*Shard
}

func NewBackend(numShards int) *Backend {
	b := &Backend{shards: make([]*Shard, numShards)}
	for i := range b.shards {
		b.shards[i] = NewShard(uint32(i))
	}
	return b
}

func (b *Backend) shardFor(docID string) *Shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(docID))
	return b.shards[h.Sum32()%uint32(len(b.shards))]
}

func (b *Backend) SetEdges(docID string, edges []Edge) { b.shardFor(docID).SetEdges(docID, edges) }
func (b *Backend) Delete(docID string)                  { b.shardFor(docID).Delete(docID) }
func (b *Backend) Contains(docID string) bool           { return b.shardFor(docID).Contains(docID) }
func (b *Backend) Edges(docID string) []Edge            { return b.shardFor(docID).Edges(docID) }

// Neighbors does a bounded-depth breadth-first walk from start, following
// live edges only, and returns every id reached within depth hops.
func (b *Backend) Neighbors(start string, depth int) []string {
	visited := map[string]bool{start: true}
	frontier := []string{start}
	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		for _, id := range frontier {
			for _, e := range b.Edges(id) {
				if visited[e.Target] {
					continue
				}
				visited[e.Target] = true
				next = append(next, e.Target)
			}
		}
		frontier = next
	}
	delete(visited, start)
	out := make([]string, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	return out
}

// Stats reports live source-id counts across the backend.
func (b *Backend) Stats() int {
	total := 0
	for _, s := range b.shards {
		total += s.LiveCount()
	}
	return total
}

// MergeAllShards replaces every shard's contents with a freshly merged
// shard (spec §4.3).
func (b *Backend) MergeAllShards() {
	for i, s := range b.shards {
		b.shards[i] = s.MergeAllShards()
	}
}
