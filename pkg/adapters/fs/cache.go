package fs

import (
	"os"
	"sync"
	"time"

	"github.com/aretw0/receipt/pkg/core"
)

// snapshotCache keeps the last parsed log so that polling viewers do not
// re-parse an unchanged file. A snapshot is fresh while the file's mtime and
// size match the ones it was parsed from.
type snapshotCache struct {
	mu      sync.RWMutex
	modTime time.Time
	size    int64
	entries []core.Entry
	valid   bool
	hits    int64
	misses  int64
}

// Get returns a copy of the cached log if it matches info.
func (c *snapshotCache) Get(info os.FileInfo) ([]core.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || !c.modTime.Equal(info.ModTime()) || c.size != info.Size() {
		c.misses++
		return nil, false
	}
	c.hits++
	return cloneEntries(c.entries), true
}

// Set records entries as the parsed form of the file described by info.
func (c *snapshotCache) Set(info os.FileInfo, entries []core.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.modTime = info.ModTime()
	c.size = info.Size()
	c.entries = cloneEntries(entries)
	c.valid = true
}

// Invalidate drops the snapshot.
func (c *snapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.entries = nil
}

// Len returns the number of cached entries.
func (c *snapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *snapshotCache) stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func cloneEntries(in []core.Entry) []core.Entry {
	out := make([]core.Entry, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
