package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Service is the transport-neutral front of the receipt log. It holds no
// log state of its own: reads and writes go straight to the repository.
type Service struct {
	repo     Repository
	composer Composer
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithComposer sets the collaborator used by Submit.
func WithComposer(c Composer) ServiceOption {
	return func(s *Service) {
		s.composer = c
	}
}

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Repository exposes the underlying repository, e.g. for introspection.
func (s *Service) Repository() Repository {
	return s.repo
}

// ListEntries returns the whole log, newest first.
func (s *Service) ListEntries(ctx context.Context) ([]Entry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("list failed", "error", err)
		return nil, err
	}
	return entries, nil
}

// AppendEntry validates candidate and appends it. Invalid candidates never
// reach the repository. Store failures are returned as is; retrying is the
// caller's business.
func (s *Service) AppendEntry(ctx context.Context, candidate Entry) (Entry, error) {
	if err := candidate.Validate(); err != nil {
		s.logger.Debug("candidate rejected", "type", candidate.Type, "error", err)
		return Entry{}, err
	}

	entry, err := s.repo.Append(ctx, candidate.Candidate())
	if err != nil {
		s.logger.Error("append failed", "type", candidate.Type, "error", err)
		return Entry{}, err
	}

	s.logger.Debug("entry appended", "id", entry.ID, "type", entry.Type)
	return entry, nil
}

// Submit turns raw text into receipt entries: an optional bonus coupon
// followed by the item. The coupon is appended, and durable, before the item
// append starts, so the item always lands above its coupon. The returned
// slice is in append order.
func (s *Service) Submit(ctx context.Context, text string) ([]Entry, error) {
	if s.composer == nil {
		return nil, errors.New("service has no composer")
	}

	text = strings.TrimSpace(text)
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	item, err := s.composer.ComposeItem(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("compose item: %w", err)
	}
	candidate := NewItemEntry(item)
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	var out []Entry
	if s.composer.ShouldAttachBonus() {
		coupon, err := s.composer.ComposeCoupon(ctx)
		if err != nil {
			return nil, fmt.Errorf("compose coupon: %w", err)
		}
		bonus, err := s.AppendEntry(ctx, NewCouponEntry(coupon))
		if err != nil {
			return nil, err
		}
		out = append(out, bonus)
	}

	entry, err := s.AppendEntry(ctx, candidate)
	if err != nil {
		return out, err
	}
	return append(out, entry), nil
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx, pattern)
}
