package receipt

import (
	"log/slog"
	"time"

	"github.com/aretw0/receipt/internal/platform"
	"github.com/aretw0/receipt/pkg/core"
)

// --- Types ---

// Entry is a receipt log entry: an item or a coupon.
type Entry = core.Entry

// Item is the payload of an item entry.
type Item = core.Item

// Coupon is the payload of a coupon entry.
type Coupon = core.Coupon

// NewItem wraps an item payload into a candidate entry.
func NewItem(it Item) Entry {
	return core.NewItemEntry(it)
}

// NewCoupon wraps a coupon payload into a candidate entry.
func NewCoupon(c Coupon) Entry {
	return core.NewCouponEntry(c)
}

// Config is the contents of receipt.yaml.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring the receipt service.
type Option = platform.Option

// WithAutoInit allows creating the data directory when it is missing.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter allows specifying the storage adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithComposer replaces the default entry composer.
func WithComposer(c core.Composer) Option {
	return platform.WithComposer(c)
}

// WithBonusProbability sets the coupon chance per submission.
func WithBonusProbability(p float64) Option {
	return platform.WithBonusProbability(p)
}

// WithFileName sets the name of the log document.
func WithFileName(name string) Option {
	return platform.WithFileName(name)
}

// WithLockTimeout bounds the wait for the append lock.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// WithStaleLockAfter sets the age after which an abandoned lock is broken.
func WithStaleLockAfter(d time.Duration) Option {
	return platform.WithStaleLockAfter(d)
}

// WithEventBuffer allows specifying the buffer of watch channels.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithWatcherErrorHandler registers a callback for watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a receipt service over the log in path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// --- Configuration Files ---

// LoadConfig reads a receipt.yaml file over the defaults.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// DiscoverConfig loads the receipt.yaml found above startDir, if any.
func DiscoverConfig(startDir string) (Config, error) {
	return platform.DiscoverConfig(startDir)
}

// --- Safety & Utils ---

// ResolveDataPath determines the actual data directory based on safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards for a directory holding receipt.yaml or .receipt.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
