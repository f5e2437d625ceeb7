// Package viewer keeps a local copy of a remote receipt log in sync by
// polling it.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/receipt/pkg/core"
)

// DefaultInterval is the time between two polls.
const DefaultInterval = 10 * time.Second

// Source yields the current log, newest first. *client.Client satisfies it.
type Source interface {
	List(ctx context.Context) ([]core.Entry, error)
}

// UpdateFunc receives every successfully fetched snapshot together with
// the entries whose ids were not in any earlier snapshot.
type UpdateFunc func(entries, fresh []core.Entry)

// Poller re-fetches the snapshot on a fixed interval. A failed poll keeps
// the previous snapshot. Pollers share nothing, so any number of them may
// watch the same server.
type Poller struct {
	source   Source
	interval time.Duration
	onUpdate UpdateFunc
	logger   *slog.Logger

	mu          sync.RWMutex
	snapshot    []core.Entry
	seen        map[string]struct{}
	polls       int64
	failures    int64
	lastErr     error
	lastSuccess time.Time
}

// Option configures a Poller.
type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		p.interval = d
	}
}

func WithOnUpdate(fn UpdateFunc) Option {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// New creates a poller over source.
func New(source Source, opts ...Option) *Poller {
	p := &Poller{
		source:   source,
		interval: DefaultInterval,
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Poll fetches once. On failure the snapshot is left untouched and the
// error is returned after being logged and counted.
func (p *Poller) Poll(ctx context.Context) error {
	entries, err := p.source.List(ctx)

	p.mu.Lock()
	p.polls++
	if err != nil {
		p.failures++
		p.lastErr = err
		failures := p.failures
		p.mu.Unlock()

		p.logger.Warn("poll failed, keeping last snapshot", "error", err, "failures", failures)
		return err
	}

	var fresh []core.Entry
	for _, e := range entries {
		if _, ok := p.seen[e.ID]; !ok {
			p.seen[e.ID] = struct{}{}
			fresh = append(fresh, e)
		}
	}
	p.snapshot = entries
	p.lastErr = nil
	p.lastSuccess = time.Now()
	p.mu.Unlock()

	if len(fresh) > 0 {
		p.logger.Debug("new entries", "count", len(fresh), "total", len(entries))
	}
	if p.onUpdate != nil {
		p.onUpdate(entries, fresh)
	}
	return nil
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	_ = p.Poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = p.Poll(ctx)
		}
	}
}

// Start runs the poller in the background until ctx is done.
func (p *Poller) Start(ctx context.Context) {
	lifecycle.Go(ctx, p.Run, lifecycle.WithErrorHandler(func(err error) {
		p.logger.Error("poller stopped", "error", fmt.Errorf("viewer panic: %w", err))
	}))
}

// Snapshot returns a copy of the last good snapshot.
func (p *Poller) Snapshot() []core.Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]core.Entry, len(p.snapshot))
	for i, e := range p.snapshot {
		out[i] = e.Clone()
	}
	return out
}
