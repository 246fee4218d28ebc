package embedcache

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"

	"github.com/prismsearch/prism/internal/storage"
)

// Remote is the shared embedding cache backend (spec §4.9): the same
// contract as Durable, stored over a storage.Store so many worker
// processes can share hits, plus a process-wide key index to support
// ClearOlderThan/Stats without listing the whole backing store each call.
type Remote struct {
	store      storage.Store
	collection string

	mu      sync.Mutex
	index   map[string]Entry // key -> last-known metadata, process-local
	hits    int64
	misses  int64
}

func NewRemote(store storage.Store, collection string) *Remote {
	return &Remote{store: store, collection: collection, index: make(map[string]Entry)}
}

func (r *Remote) path(key string) storage.Path {
	// Segment id is derived from the key so entries spread across the
	// backing store's directory fan-out instead of piling into one file.
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return storage.NewMetaPath(r.collection, h.Sum32())
}

type wireEntry struct {
	Vector     []float32 `json:"vector"`
	Dimensions int       `json:"dimensions"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
	AccessedAt time.Time `json:"accessed_at"`
}

func (r *Remote) Get(key string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.store.Read(context.Background(), r.path(key))
	if err != nil {
		r.misses++
		return Entry{}, false
	}
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		r.misses++
		return Entry{}, false
	}
	r.hits++
	e := Entry(w)
	e.AccessedAt = time.Now()
	r.index[key] = e
	go r.touch(key, e)
	return e, true
}

func (r *Remote) touch(key string, e Entry) {
	data, err := json.Marshal(wireEntry(e))
	if err != nil {
		return
	}
	_ = r.store.Write(context.Background(), r.path(key), data)
}

func (r *Remote) Put(key string, entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.AccessedAt = time.Now()

	data, err := json.Marshal(wireEntry(entry))
	if err != nil {
		return
	}
	if err := r.store.Write(context.Background(), r.path(key), data); err != nil {
		return
	}

	r.mu.Lock()
	r.index[key] = entry
	r.mu.Unlock()
}

func (r *Remote) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.index {
		_ = r.store.Delete(context.Background(), r.path(key))
	}
	r.index = make(map[string]Entry)
	r.hits, r.misses = 0, 0
}

func (r *Remote) ClearOlderThan(age time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-age)
	for key, e := range r.index {
		if e.AccessedAt.Before(cutoff) {
			_ = r.store.Delete(context.Background(), r.path(key))
			delete(r.index, key)
		}
	}
}

func (r *Remote) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bytes int64
	for _, e := range r.index {
		bytes += int64(len(e.Vector) * 4)
	}
	return Stats{
		Entries: len(r.index),
		Bytes:   bytes,
		Hits:    r.hits,
		Misses:  r.misses,
	}
}

var _ Cache = (*Remote)(nil)
