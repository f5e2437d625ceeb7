package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// ErrLockTimeout is returned when the lock file could not be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for log lock")

// fileLock is an advisory, cross-process lock backed by a file created with
// O_EXCL. It guards the read-modify-write cycle of Append against other
// processes sharing the same log; goroutines of one process are serialized
// by the repository mutex before they get here.
//
// The file holds an owner token (host, pid and a random nonce). Release only
// removes a file still carrying its own token. A lock is broken only when it
// is older than staleAfter and its holder is known to be gone; breaking runs
// under a second O_EXCL file so two waiters never break the same lock twice.
type fileLock struct {
	path       string
	breakPath  string
	pollEvery  time.Duration
	staleAfter time.Duration
	host       string
}

func newFileLock(path string, staleAfter time.Duration) *fileLock {
	host, _ := os.Hostname()
	return &fileLock{
		path:       path,
		breakPath:  path + ".break",
		pollEvery:  10 * time.Millisecond,
		staleAfter: staleAfter,
		host:       host,
	}
}

// Acquire blocks until the lock is held or ctx is done. The returned func
// releases it.
func (l *fileLock) Acquire(ctx context.Context) (func(), error) {
	token := lockToken{host: l.host, pid: os.Getpid(), nonce: uuid.NewString()}

	for {
		ok, err := createExclusive(l.path, token.String())
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if ok {
			return func() { l.release(token) }, nil
		}

		if l.breakStale() {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
		case <-time.After(l.pollEvery):
		}
	}
}

func (l *fileLock) release(token lockToken) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return
	}
	if strings.TrimSpace(string(data)) != token.String() {
		return
	}
	_ = os.Remove(l.path)
}

// breakStale removes a lock file left behind by a crashed holder. It reports
// whether the caller should retry immediately.
func (l *fileLock) breakStale() bool {
	if l.staleAfter <= 0 || !l.isStale(l.path) {
		return false
	}

	ok, err := createExclusive(l.breakPath, "")
	if err != nil {
		return false
	}
	if !ok {
		// A breaker that crashed mid-break must not wedge everyone else.
		if isOlderThan(l.breakPath, l.staleAfter) {
			_ = os.Remove(l.breakPath)
		}
		return false
	}
	defer os.Remove(l.breakPath)

	// Re-check under the break file: the lock may have been replaced by a
	// live holder since the first look.
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return true
	}
	if !l.isStale(l.path) {
		return false
	}
	return os.Remove(l.path) == nil
}

// isStale reads age and owner from one open descriptor so both describe the
// same file even if the path is replaced meanwhile.
func (l *fileLock) isStale(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || time.Since(info.ModTime()) < l.staleAfter {
		return false
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return false
	}
	owner, ok := parseLockToken(string(data))
	if !ok || owner.host != l.host {
		// Unknown or remote holder: age is all there is to go on.
		return true
	}
	return !processAlive(owner.pid)
}

type lockToken struct {
	host  string
	pid   int
	nonce string
}

func (t lockToken) String() string {
	return t.host + "\n" + strconv.Itoa(t.pid) + "\n" + t.nonce
}

func parseLockToken(s string) (lockToken, bool) {
	parts := strings.Split(strings.TrimSpace(s), "\n")
	if len(parts) != 3 {
		return lockToken{}, false
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil || pid <= 0 {
		return lockToken{}, false
	}
	return lockToken{host: parts[0], pid: pid, nonce: parts[2]}, true
}

// createExclusive creates path with content, reporting false if it exists.
func createExclusive(path, content string) (bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if os.IsExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, werr := f.WriteString(content)
	cerr := f.Close()
	if werr != nil {
		_ = os.Remove(path)
		return false, werr
	}
	if cerr != nil {
		_ = os.Remove(path)
		return false, cerr
	}
	return true, nil
}

func isOlderThan(path string, d time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) >= d
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	defer p.Release()
	if runtime.GOOS == "windows" {
		// FindProcess already failed for exited processes.
		return true
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
