package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	File          string     `json:"file"`
	ReadOnly      bool       `json:"read_only"`
	CachedEntries int        `json:"cached_entries"`
	CacheHits     int64      `json:"cache_hits"`
	CacheMisses   int64      `json:"cache_misses"`
	Appends       int64      `json:"appends"`
	LastAppend    *time.Time `json:"last_append,omitempty"`
	WatcherActive bool       `json:"watcher_active"`
	Watchers      int        `json:"watchers"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	hits, misses := r.cache.stats()

	r.stateMu.RLock()
	defer r.stateMu.RUnlock()

	return RepositoryState{
		Path:          r.Path,
		File:          r.file,
		ReadOnly:      r.config.ReadOnly,
		CachedEntries: r.cache.Len(),
		CacheHits:     hits,
		CacheMisses:   misses,
		Appends:       r.appends,
		LastAppend:    r.lastAppend,
		WatcherActive: r.watchers > 0,
		Watchers:      r.watchers,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) watcherStarted() {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.watchers++
}

func (r *Repository) watcherStopped() {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.watchers--
}

func (r *Repository) recordAppend(at time.Time) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.appends++
	r.lastAppend = &at
}
