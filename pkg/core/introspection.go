package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	RepositoryType string `json:"repository_type"`
	Composer       bool   `json:"composer"`
	Watchable      bool   `json:"watchable"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}
	_, watchable := s.repo.(Watchable)

	return ServiceState{
		RepositoryType: repoType,
		Composer:       s.composer != nil,
		Watchable:      watchable,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)

// Snapshot collects the state of the service and of the repository behind
// it, keyed by component type.
func Snapshot(s *Service) map[string]any {
	out := map[string]any{s.ComponentType(): s.State()}
	if intro, ok := s.repo.(introspection.Introspectable); ok {
		key := "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			key = comp.ComponentType()
		}
		out[key] = intro.State()
	}
	return out
}
