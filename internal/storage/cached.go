package storage

import (
	"container/list"
	"context"
	"sync"

	"github.com/prismsearch/prism/internal/perr"
)

// CachedStore layers an L1 local cache in front of an L2 store (typically
// RemoteStore), evicting L1 entries by a byte budget, LRU (spec §4.1).
// Misses populate L1 on read; writes go to both tiers so a cold L1 never
// serves stale data.
type CachedStore struct {
	l1          Store
	l2          Store
	maxL1Bytes  int64

	mu       sync.Mutex
	sizes    map[string]int64
	lru      *list.List
	elements map[string]*list.Element
	used     int64
}

func NewCachedStore(l1, l2 Store, maxL1Bytes int64) *CachedStore {
	return &CachedStore{
		l1:         l1,
		l2:         l2,
		maxL1Bytes: maxL1Bytes,
		sizes:      make(map[string]int64),
		lru:        list.New(),
		elements:   make(map[string]*list.Element),
	}
}

func (c *CachedStore) touch(key string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.elements[key]; ok {
		c.lru.MoveToFront(el)
		c.used += size - c.sizes[key]
		c.sizes[key] = size
	} else {
		el := c.lru.PushFront(key)
		c.elements[key] = el
		c.sizes[key] = size
		c.used += size
	}
	c.evictLocked()
}

// evictLocked must be called with c.mu held.
func (c *CachedStore) evictLocked() {
	for c.used > c.maxL1Bytes && c.lru.Len() > 0 {
		back := c.lru.Back()
		key := back.Value.(string)
		c.lru.Remove(back)
		delete(c.elements, key)
		c.used -= c.sizes[key]
		delete(c.sizes, key)
		p, err := ParsePath(key)
		if err == nil {
			_ = c.l1.Delete(context.Background(), p)
		}
	}
}

func (c *CachedStore) forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.elements[key]; ok {
		c.lru.Remove(el)
		delete(c.elements, key)
		c.used -= c.sizes[key]
		delete(c.sizes, key)
	}
}

func (c *CachedStore) Read(ctx context.Context, path Path) ([]byte, error) {
	if data, err := c.l1.Read(ctx, path); err == nil {
		c.touch(path.String(), int64(len(data)))
		return data, nil
	} else if !perr.IsNotFound(err) {
		return nil, err
	}

	data, err := c.l2.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	if werr := c.l1.Write(ctx, path, data); werr == nil {
		c.touch(path.String(), int64(len(data)))
	}
	return data, nil
}

func (c *CachedStore) Write(ctx context.Context, path Path, data []byte) error {
	if err := c.l2.Write(ctx, path, data); err != nil {
		return err
	}
	if err := c.l1.Write(ctx, path, data); err != nil {
		return err
	}
	c.touch(path.String(), int64(len(data)))
	return nil
}

func (c *CachedStore) Exists(ctx context.Context, path Path) (bool, error) {
	if ok, err := c.l1.Exists(ctx, path); err == nil && ok {
		return true, nil
	}
	return c.l2.Exists(ctx, path)
}

func (c *CachedStore) Delete(ctx context.Context, path Path) error {
	err := c.l2.Delete(ctx, path)
	_ = c.l1.Delete(ctx, path)
	c.forget(path.String())
	return err
}

func (c *CachedStore) List(ctx context.Context, prefix string) ([]Path, error) {
	return c.l2.List(ctx, prefix)
}

func (c *CachedStore) Rename(ctx context.Context, from, to Path) error {
	if err := c.l2.Rename(ctx, from, to); err != nil {
		return err
	}
	_ = c.l1.Delete(ctx, from)
	c.forget(from.String())
	return nil
}

func (c *CachedStore) Copy(ctx context.Context, from, to Path) error {
	return c.l2.Copy(ctx, from, to)
}

func (c *CachedStore) Head(ctx context.Context, path Path) (Info, error) {
	return c.l2.Head(ctx, path)
}

func (c *CachedStore) DeletePrefix(ctx context.Context, prefix string) error {
	if err := c.l2.DeletePrefix(ctx, prefix); err != nil {
		return err
	}
	return c.l1.DeletePrefix(ctx, prefix)
}

var _ Store = (*CachedStore)(nil)
