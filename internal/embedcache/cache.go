package embedcache

import "time"

// Entry is one cached embedding (spec §4.9).
type Entry struct {
	Vector     []float32
	Dimensions int
	Model      string
	CreatedAt  time.Time
	AccessedAt time.Time
}

// Stats reports cache health for observability.
type Stats struct {
	Entries  int
	Bytes    int64
	Hits     int64
	Misses   int64
}

// HitRate returns Hits / (Hits+Misses), or 0 when empty.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is the contract both backends (durable, remote) implement.
type Cache interface {
	Get(key string) (Entry, bool)
	Put(key string, entry Entry)
	Clear()
	ClearOlderThan(age time.Duration)
	Stats() Stats
}
