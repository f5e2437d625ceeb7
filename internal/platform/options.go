package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/receipt/pkg/core"
)

// options holds the internal configuration for the receipt service.
type options struct {
	repository core.Repository
	composer   core.Composer
	logger     *slog.Logger
	adapter    string
	config     map[string]interface{}
}

// Option defines a functional option for configuring the receipt service.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter: "fs",
		config:  make(map[string]interface{}),
	}
}

// WithAutoInit allows creating the data directory when it is missing.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the service and the repository.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a custom storage adapter. The filesystem adapter
// is then skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter selects the storage adapter by name. Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithComposer replaces the default entry composer used by Submit.
func WithComposer(c core.Composer) Option {
	return func(o *options) {
		o.composer = c
	}
}

// WithBonusProbability sets the coupon chance of the default composer.
func WithBonusProbability(p float64) Option {
	return func(o *options) {
		o.config["bonus_probability"] = p
	}
}

// WithFileName sets the name of the log document inside the data directory.
func WithFileName(name string) Option {
	return func(o *options) {
		o.config["file_name"] = name
	}
}

// WithLockTimeout bounds the wait for the cross-process append lock.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["lock_timeout"] = d
	}
}

// WithStaleLockAfter sets the age after which an abandoned lock file is
// removed. A negative value never breaks locks.
func WithStaleLockAfter(d time.Duration) Option {
	return func(o *options) {
		o.config["stale_lock_after"] = d
	}
}

// WithEventBuffer sets the buffer of watch channels. Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithWatcherErrorHandler registers a callback for failures of the watch
// loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Append returns ErrReadOnly.
// 2. No directory or log file is created.
// 3. Dev safety is bypassed (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
// By default (true) the data path is re-rooted into a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
