// Package lifecycle exposes receipt log changes as a lifecycle.Source, so a
// log watch can be consumed like any other supervised event source.
package lifecycle

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/receipt/pkg/core"
)

type logSource struct {
	events  <-chan core.Event
	out     chan lifecycle.Event
	started atomic.Bool
}

// NewSource wraps a channel returned by core.Service.Watch.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &logSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *logSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until the watch channel closes or ctx is done, then
// closes Events. Calling it again has no effect.
func (s *logSource) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
