// Package storage implements the byte-addressable object store over the
// hierarchical path space collection/backend/shard/segment (spec §4.1, §6).
package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Backend names one of the four storage namespaces a collection writes into.
type Backend string

const (
	BackendText   Backend = "text"
	BackendVector Backend = "vector"
	BackendGraph  Backend = "graph"
	BackendMeta   Backend = "meta"
)

// Path addresses one object: collection/backend/shard/segment, or
// collection/backend/segment for metadata (no shard dimension). Shard and
// Segment are pointers so the zero value can represent "not present" rather
// than shard/segment 0.
type Path struct {
	Collection string
	Backend    Backend
	Shard      *uint32
	Segment    *uint32
}

func u32(v uint32) *uint32 { return &v }

// NewMetaPath builds a collection/meta/segment path.
func NewMetaPath(collection string, segment uint32) Path {
	return Path{Collection: collection, Backend: BackendMeta, Segment: u32(segment)}
}

// NewShardPath builds a collection/backend/shard/segment path.
func NewShardPath(collection string, backend Backend, shard, segment uint32) Path {
	return Path{Collection: collection, Backend: backend, Shard: u32(shard), Segment: u32(segment)}
}

// String renders the canonical on-disk form.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString(p.Collection)
	b.WriteByte('/')
	b.WriteString(string(p.Backend))
	if p.Shard != nil {
		fmt.Fprintf(&b, "/%d", *p.Shard)
	}
	if p.Segment != nil {
		fmt.Fprintf(&b, "/%d", *p.Segment)
	}
	return b.String()
}

// Prefix returns the collection/backend[/shard] prefix this path lives
// under, for use with List/DeletePrefix.
func (p Path) Prefix() string {
	var b strings.Builder
	b.WriteString(p.Collection)
	b.WriteByte('/')
	b.WriteString(string(p.Backend))
	if p.Shard != nil {
		fmt.Fprintf(&b, "/%d", *p.Shard)
	}
	return b.String()
}

// ParsePath accepts both collection/backend/shard/segment and
// collection/backend/segment (metadata) forms.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) < 3 || len(parts) > 4 {
		return Path{}, fmt.Errorf("invalid storage path %q: want collection/backend/shard/segment or collection/backend/segment", s)
	}
	for _, part := range parts {
		if part == "" {
			return Path{}, fmt.Errorf("invalid storage path %q: empty segment", s)
		}
	}

	p := Path{Collection: parts[0], Backend: Backend(parts[1])}
	if len(parts) == 3 {
		seg, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return Path{}, fmt.Errorf("invalid storage path %q: segment must be numeric: %w", s, err)
		}
		p.Segment = u32(uint32(seg))
		return p, nil
	}

	shard, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return Path{}, fmt.Errorf("invalid storage path %q: shard must be numeric: %w", s, err)
	}
	seg, err := strconv.ParseUint(parts[3], 10, 32)
	if err != nil {
		return Path{}, fmt.Errorf("invalid storage path %q: segment must be numeric: %w", s, err)
	}
	p.Shard = u32(uint32(shard))
	p.Segment = u32(uint32(seg))
	return p, nil
}
