package core

import "errors"

// Failure taxonomy of the receipt log. Adapters wrap their causes with these
// sentinels so callers can classify a failure with errors.Is.
var (
	// ErrStoreUnavailable reports an I/O failure reading or writing the log.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreCorrupt reports persisted state that does not parse against the log schema.
	ErrStoreCorrupt = errors.New("store corrupt")
	// ErrInvalidEntry reports a candidate with an unknown type or missing fields.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrUnsupportedOperation reports a request outside read and write.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	ErrReadOnly = errors.New("repository is in read-only mode")
)
