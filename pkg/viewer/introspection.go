package viewer

import (
	"time"

	"github.com/aretw0/introspection"
)

// PollerState exposes internal state for observability.
type PollerState struct {
	Interval    string     `json:"interval"`
	Entries     int        `json:"entries"`
	Polls       int64      `json:"polls"`
	Failures    int64      `json:"failures"`
	LastError   string     `json:"last_error,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
}

// State implements introspection.Introspectable.
func (p *Poller) State() any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := PollerState{
		Interval: p.interval.String(),
		Entries:  len(p.snapshot),
		Polls:    p.polls,
		Failures: p.failures,
	}
	if p.lastErr != nil {
		st.LastError = p.lastErr.Error()
	}
	if !p.lastSuccess.IsZero() {
		t := p.lastSuccess
		st.LastSuccess = &t
	}
	return st
}

// ComponentType implements introspection.Component.
func (p *Poller) ComponentType() string {
	return "viewer"
}

var _ introspection.Introspectable = (*Poller)(nil)
var _ introspection.Component = (*Poller)(nil)
