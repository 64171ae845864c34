// Copyright 2024 The ieformats Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pvrz

import (
	"container/list"
	"os"
	"time"

	"github.com/infinity-engine/ieformats/internal/reader"
)

// DefaultPageCacheCapacity is the number of decoded pages a PageCache
// retains before evicting the least recently used one.
const DefaultPageCacheCapacity = 32

type pageKey struct {
	path    string
	modTime time.Time
}

// PageCache decodes a PVRZ page at most once per (path, mtime) pair,
// evicting the least recently used entry once it grows beyond its
// capacity. It is not safe for concurrent use by multiple goroutines
// without external synchronization; callers wanting parallel decoding
// should use one cache per goroutine.
type PageCache struct {
	capacity int
	entries  map[pageKey]*list.Element
	order    *list.List // front = most recently used
}

type cacheEntry struct {
	key pageKey
	img *Image
}

// NewPageCache returns a PageCache bounded to capacity entries. A
// capacity of 0 or less uses DefaultPageCacheCapacity.
func NewPageCache(capacity int) *PageCache {
	if capacity <= 0 {
		capacity = DefaultPageCacheCapacity
	}
	return &PageCache{
		capacity: capacity,
		entries:  make(map[pageKey]*list.Element),
		order:    list.New(),
	}
}

// Get decodes the PVRZ file at path, returning a cached Image if one
// was already decoded for the file's current modification time.
// Behavior is byte-identical to calling Parse directly; caching only
// changes how many times the page is actually decoded.
func (c *PageCache) Get(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := pageKey{path: path, modTime: info.ModTime()}

	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).img, nil
	}

	ds := reader.NewFileDataSource(path)
	r, err := ds.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, err := Parse(r)
	if err != nil {
		return nil, err
	}

	el := c.order.PushFront(&cacheEntry{key: key, img: img})
	c.entries[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	return img, nil
}

// Len returns the number of pages currently held in the cache.
func (c *PageCache) Len() int { return c.order.Len() }
