package utils

import (
	"os"
	"sync"
	"time"
)

// fileStamp identifies one version of a file on disk
type fileStamp struct {
	modTime time.Time
	size    int64
}

func (s fileStamp) matches(other fileStamp) bool {
	return s.modTime.Equal(other.modTime) && s.size == other.size
}

func stampOf(path string) (fileStamp, bool) {
	stat, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{modTime: stat.ModTime(), size: stat.Size()}, true
}

type stamped[V any] struct {
	value V
	stamp fileStamp
}

// stampedCache holds values derived from files, keyed by path. An entry is
// served only while its file keeps the stamp it was stored with.
type stampedCache[V any] struct {
	mu    sync.RWMutex
	items map[string]stamped[V]
}

func newStampedCache[V any]() *stampedCache[V] {
	return &stampedCache[V]{items: make(map[string]stamped[V])}
}

// load returns the value stored for path; a stale or vanished file drops the entry
func (c *stampedCache[V]) load(path string) (V, bool) {
	c.mu.RLock()
	item, exists := c.items[path]
	c.mu.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}
	if stamp, ok := stampOf(path); ok && stamp.matches(item.stamp) {
		return item.value, true
	}

	c.forget(path)
	return zero, false
}

// store records value against the current stamp of path. Nothing is stored
// when path cannot be stat'ed.
func (c *stampedCache[V]) store(path string, value V) {
	stamp, ok := stampOf(path)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[path] = stamped[V]{value: value, stamp: stamp}
}

func (c *stampedCache[V]) forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, path)
}

func (c *stampedCache[V]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
