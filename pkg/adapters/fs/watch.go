package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/receipt/pkg/core"
)

const watchDebounce = 50 * time.Millisecond

// Watch reports changes to files in the data directory whose base name
// matches pattern (doublestar syntax). An empty pattern watches the log
// document only. Bursts on one file are coalesced into a single event.
// The returned channel is closed once ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = r.config.FileName
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create watcher: %w", core.ErrStoreUnavailable, err)
	}
	if err := watcher.Add(r.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("%w: failed to watch %s: %w", core.ErrStoreUnavailable, r.Path, err)
	}

	events := make(chan core.Event, r.config.EventBuffer)
	r.watcherStarted()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer r.watcherStopped()
		defer watcher.Close()

		r.watchLoop(ctx, watcher.Events, watcher.Errors, events, pattern)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		r.config.Logger.Error("watcher stopped", "error", err)
		if r.config.ErrorHandler != nil {
			r.config.ErrorHandler(err)
		}
	}))

	return events, nil
}

// watchLoop forwards matching fsnotify events until ctx is done or the
// watcher closes. Pending deliveries are abandoned on return.
func (r *Repository) watchLoop(ctx context.Context, fsEvents <-chan fsnotify.Event, fsErrors <-chan error, events chan<- core.Event, pattern string) {
	ctx, stop := context.WithCancel(ctx)
	deb := newDebouncer(watchDebounce)
	defer deb.stopAndWait()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsEvents:
			if !ok {
				return
			}
			e, match := r.toEvent(event, pattern)
			if !match {
				continue
			}
			r.config.Logger.Debug("log change observed", "event", e.String())
			deb.add(e, func(e core.Event) {
				select {
				case events <- e:
				case <-ctx.Done():
				}
			})

		case werr, ok := <-fsErrors:
			if !ok {
				return
			}
			r.config.Logger.Error("fsnotify error", "error", werr)
			if r.config.ErrorHandler != nil {
				r.config.ErrorHandler(werr)
			}
		}
	}
}

func (r *Repository) toEvent(event fsnotify.Event, pattern string) (core.Event, bool) {
	name := filepath.Base(event.Name)
	if ok, err := doublestar.Match(pattern, name); err != nil || !ok {
		return core.Event{}, false
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Create):
		t = core.EventCreate
	case event.Has(fsnotify.Write):
		t = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t = core.EventDelete
	default:
		return core.Event{}, false
	}

	return core.Event{Type: t, ID: name, Timestamp: time.Now().Unix()}, true
}

// debouncer delays delivery of an event until no newer event for the same
// file arrived within the wait window.
type debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(wait time.Duration) *debouncer {
	return &debouncer{
		wait:   wait,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if prev, ok := d.timers[e.ID]; ok && prev.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.wait, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[e.ID] == t {
			delete(d.timers, e.ID)
		}
		d.mu.Unlock()
		fire(e)
	})
	d.timers[e.ID] = t
}

// stopAndWait drops pending events and waits for in-flight deliveries.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
