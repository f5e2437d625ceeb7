package fs

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/aretw0/receipt/pkg/core"
)

const (
	// DefaultFileName is the name of the log document inside the data directory.
	DefaultFileName = "receipt.json"

	defaultLockTimeout    = 5 * time.Second
	defaultStaleLockAfter = 30 * time.Second
	defaultEventBuffer    = 100
)

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path           string // data directory
	FileName       string // log document, defaults to receipt.json
	MustExist      bool   // fail instead of creating the data directory
	ReadOnly       bool   // reject appends and never create files
	Logger         *slog.Logger
	LockTimeout    time.Duration // max wait for the cross-process lock
	StaleLockAfter time.Duration // age after which a lock file is considered abandoned; 0 disables
	EventBuffer    int           // buffer of channels returned by Watch
	ErrorHandler   func(error)   // called on watcher failures
	Clock          func() time.Time
}

// Repository implements core.Repository as a single JSON document on disk.
//
// Every Append runs its read-modify-write cycle while holding both the
// repository mutex (other goroutines) and an O_EXCL lock file (other
// processes), and replaces the document atomically. List only takes the
// read side of the mutex, so reads proceed in parallel.
type Repository struct {
	Path   string
	file   string
	config Config

	mu    sync.RWMutex
	lock  *fileLock
	cache snapshotCache
	ids   *idSource

	// I/O seams, swapped by tests to inject latency and failures.
	readFile  func(name string) ([]byte, error)
	writeFile func(name string, data []byte, perm os.FileMode) error

	stateMu    sync.RWMutex
	watchers   int
	appends    int64
	lastAppend *time.Time
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.FileName == "" {
		config.FileName = DefaultFileName
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = defaultLockTimeout
	}
	if config.StaleLockAfter == 0 {
		config.StaleLockAfter = defaultStaleLockAfter
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = defaultEventBuffer
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	file := filepath.Join(config.Path, config.FileName)
	return &Repository{
		Path:      config.Path,
		file:      file,
		config:    config,
		lock:      newFileLock(file+".lock", config.StaleLockAfter),
		ids:       newIDSource(),
		readFile:  os.ReadFile,
		writeFile: writeFileAtomic,
	}
}

// File returns the path of the log document.
func (r *Repository) File() string {
	return r.file
}

// Initialize creates the data directory and an empty log when none exists.
// It is safe to call on every start and never overwrites a non-empty log.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: data directory does not exist: %s", core.ErrStoreUnavailable, r.Path)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: data path is not a directory: %s", core.ErrStoreUnavailable, r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("%w: failed to create data directory: %w", core.ErrStoreUnavailable, err)
		}
	}

	if r.config.ReadOnly {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	info, err := os.Stat(r.file)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}

	if err := r.writeFile(r.file, emptyLog, 0644); err != nil {
		return fmt.Errorf("%w: failed to create log: %w", core.ErrStoreUnavailable, err)
	}
	r.cache.Invalidate()
	r.config.Logger.Info("created empty receipt log", "path", r.file)
	return nil
}

// List returns the full log, newest first.
//
// A missing or unreadable file is core.ErrStoreUnavailable; a file that does
// not parse is core.ErrStoreCorrupt. Neither is ever reported as an empty log.
func (r *Repository) List(ctx context.Context) ([]core.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	info, err := os.Stat(r.file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}

	if entries, hit := r.cache.Get(info); hit {
		return entries, nil
	}

	data, err := r.readFile(r.file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}

	entries, err := decodeLog(data)
	if err != nil {
		r.config.Logger.Error("receipt log does not parse", "path", r.file, "error", err)
		return nil, err
	}

	r.cache.Set(info, entries)
	return entries, nil
}

// Append inserts candidate at the head of the log and persists it.
//
// The caller's ctx bounds the wait for the lock only: once the lock is held
// the cycle runs to completion or fails, and on failure the document on disk
// is left exactly as it was.
func (r *Repository) Append(ctx context.Context, candidate core.Entry) (core.Entry, error) {
	if r.config.ReadOnly {
		return core.Entry{}, core.ErrReadOnly
	}
	if !candidate.Type.Valid() {
		return core.Entry{}, fmt.Errorf("%w: unrecognized type %q", core.ErrInvalidEntry, candidate.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.acquire(ctx)
	if err != nil {
		return core.Entry{}, err
	}
	defer unlock()

	data, err := r.readFile(r.file)
	if err != nil {
		return core.Entry{}, fmt.Errorf("%w: failed to read log: %w", core.ErrStoreUnavailable, err)
	}

	entries, err := decodeLog(data)
	if err != nil {
		return core.Entry{}, err
	}

	now := r.config.Clock()
	id, err := r.ids.unique(now, entries)
	if err != nil {
		return core.Entry{}, fmt.Errorf("%w: failed to assign id: %w", core.ErrStoreUnavailable, err)
	}

	entry := candidate.Candidate()
	entry.ID = id
	entry.Timestamp = now.UnixMilli()

	next := make([]core.Entry, 0, len(entries)+1)
	next = append(next, entry)
	next = append(next, entries...)

	out, err := encodeLog(next)
	if err != nil {
		return core.Entry{}, fmt.Errorf("%w: failed to serialize log: %w", core.ErrStoreUnavailable, err)
	}

	if err := r.writeFile(r.file, out, 0644); err != nil {
		r.cache.Invalidate()
		return core.Entry{}, fmt.Errorf("%w: failed to write log: %w", core.ErrStoreUnavailable, err)
	}

	if info, err := os.Stat(r.file); err == nil {
		r.cache.Set(info, next)
	} else {
		r.cache.Invalidate()
	}
	r.recordAppend(now)

	r.config.Logger.Debug("appended entry", "id", entry.ID, "type", entry.Type, "entries", len(next))
	return entry.Clone(), nil
}

func (r *Repository) acquire(ctx context.Context) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, r.config.LockTimeout)
	defer cancel()

	unlock, err := r.lock.Acquire(lockCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	return unlock, nil
}

// idSource hands out time-ordered ULIDs. Monotonic entropy keeps ids
// strictly increasing within one millisecond.
type idSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDSource() *idSource {
	return &idSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (s *idSource) next(t time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// unique returns an id not already present in entries. Ids written by an
// earlier process under a skewed clock are the only way to collide.
func (s *idSource) unique(t time.Time, entries []core.Entry) (string, error) {
	taken := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		taken[e.ID] = struct{}{}
	}

	for attempt := 0; attempt < 3; attempt++ {
		id, err := s.next(t)
		if err != nil {
			return "", err
		}
		if _, dup := taken[id]; !dup {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate an unused id")
}

var _ core.Repository = (*Repository)(nil)
