package core

import "context"

// Repository defines the contract for the receipt log.
// Adhering to this interface keeps the service independent of the
// underlying storage mechanism.
type Repository interface {
	// Initialize ensures the backing storage exists, creating an empty log
	// when none is present. It never overwrites an existing non-empty log.
	Initialize(ctx context.Context) error

	// List returns the full log, newest first, without mutating it.
	List(ctx context.Context) ([]Entry, error)

	// Append assigns ID and Timestamp to candidate, inserts it at the head of
	// the log and persists the result. Appends never interleave.
	Append(ctx context.Context, candidate Entry) (Entry, error)
}

// Watchable defines an interface for repositories that can report changes
// to their persisted state.
type Watchable interface {
	// Watch emits an Event for every change to a file whose base name matches
	// pattern. An empty pattern selects the log itself. The channel is closed
	// when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Composer produces the entries of a single submission. It stands in for the
// external text transformation and coupon generation collaborators.
type Composer interface {
	// ComposeItem transforms text and decorates it as a register line.
	ComposeItem(ctx context.Context, text string) (Item, error)

	// ComposeCoupon generates a bonus coupon.
	ComposeCoupon(ctx context.Context) (Coupon, error)

	// ShouldAttachBonus is asked once per submission.
	ShouldAttachBonus() bool
}
