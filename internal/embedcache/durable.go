package embedcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Durable is the in-process key-value embedding cache backend (spec §4.9).
// Eviction trims to max_entries using LRU recency, which for this workload
// (lookups bump AccessedAt) is equivalent to the spec's "ascending
// accessed_at" eviction order.
type Durable struct {
	mu     sync.Mutex
	lru    *lru.Cache[string, Entry]
	hits   int64
	misses int64
}

func NewDurable(maxEntries int) (*Durable, error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	c, err := lru.New[string, Entry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &Durable{lru: c}, nil
}

func (d *Durable) Get(key string) (Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.lru.Get(key)
	if !ok {
		d.misses++
		return Entry{}, false
	}
	d.hits++
	e.AccessedAt = time.Now()
	d.lru.Add(key, e)
	return e, true
}

func (d *Durable) Put(key string, entry Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.AccessedAt = time.Now()
	d.lru.Add(key, entry)
}

func (d *Durable) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lru.Purge()
	d.hits, d.misses = 0, 0
}

func (d *Durable) ClearOlderThan(age time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := time.Now().Add(-age)
	for _, key := range d.lru.Keys() {
		e, ok := d.lru.Peek(key)
		if ok && e.AccessedAt.Before(cutoff) {
			d.lru.Remove(key)
		}
	}
}

func (d *Durable) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	var bytes int64
	for _, key := range d.lru.Keys() {
		if e, ok := d.lru.Peek(key); ok {
			bytes += int64(len(e.Vector) * 4)
		}
	}
	return Stats{
		Entries: d.lru.Len(),
		Bytes:   bytes,
		Hits:    d.hits,
		Misses:  d.misses,
	}
}

var _ Cache = (*Durable)(nil)
