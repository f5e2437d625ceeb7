package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFileLock(t *testing.T) {
	t.Run("Excludes Second Holder", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.lock")
		l := newFileLock(path, 0)

		unlock, err := l.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}

		acquired := make(chan struct{})
		go func() {
			release, err := l.Acquire(context.Background())
			if err != nil {
				t.Errorf("second Acquire failed: %v", err)
				return
			}
			release()
			close(acquired)
		}()

		select {
		case <-acquired:
			t.Fatal("second holder acquired a held lock")
		case <-time.After(50 * time.Millisecond):
		}

		unlock()

		select {
		case <-acquired:
		case <-time.After(2 * time.Second):
			t.Fatal("second holder never acquired the released lock")
		}
	})

	t.Run("Honors Context", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.lock")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := newFileLock(path, 0).Acquire(ctx)
		if !errors.Is(err, ErrLockTimeout) || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected timeout, got %v", err)
		}
	})

	t.Run("Breaks Stale Lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.lock")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-time.Hour)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		unlock, err := newFileLock(path, time.Minute).Acquire(ctx)
		if err != nil {
			t.Fatalf("expected stale lock to be broken, got %v", err)
		}
		unlock()

		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected lock file removed after unlock")
		}
	})

	t.Run("Keeps Lock Of Live Holder", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.lock")
		holder := newFileLock(path, 20*time.Millisecond)
		waiter := newFileLock(path, 20*time.Millisecond)

		unlock, err := holder.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		time.Sleep(60 * time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()
		if _, err := waiter.Acquire(ctx); !errors.Is(err, ErrLockTimeout) {
			t.Fatalf("expected waiter to time out while holder is alive, got %v", err)
		}

		unlock()
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected lock file removed after holder unlock")
		}
	})

	t.Run("Release Leaves Foreign Lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.lock")
		unlock, err := newFileLock(path, 0).Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}

		foreign := lockToken{host: "elsewhere", pid: 1, nonce: "other"}
		if err := os.WriteFile(path, []byte(foreign.String()), 0644); err != nil {
			t.Fatal(err)
		}
		unlock()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected foreign lock to survive release: %v", err)
		}
		if string(data) != foreign.String() {
			t.Errorf("lock content changed: %q", data)
		}
	})

	t.Run("Racing Waiters Share Stale Lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "log.lock")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-time.Hour)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}

		const waiters = 8
		var (
			active, peak atomic.Int32
			acquired     atomic.Int32
			wg           sync.WaitGroup
			start        = make(chan struct{})
		)
		for i := 0; i < waiters; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				unlock, err := newFileLock(path, time.Minute).Acquire(ctx)
				if err != nil {
					t.Errorf("Acquire failed: %v", err)
					return
				}
				acquired.Add(1)

				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				active.Add(-1)
				unlock()
			}()
		}
		close(start)
		wg.Wait()

		if got := acquired.Load(); got != waiters {
			t.Errorf("expected %d acquisitions, got %d", waiters, got)
		}
		if got := peak.Load(); got != 1 {
			t.Errorf("expected at most one holder at a time, saw %d", got)
		}
		if _, err := os.Stat(path + ".break"); !os.IsNotExist(err) {
			t.Error("expected break file cleaned up")
		}
	})

	t.Run("Parses Own Token", func(t *testing.T) {
		tok := lockToken{host: "box", pid: 42, nonce: "n"}
		got, ok := parseLockToken(tok.String())
		if !ok || got != tok {
			t.Errorf("round trip failed: %+v %v", got, ok)
		}
		if _, ok := parseLockToken(""); ok {
			t.Error("expected empty content to be unparseable")
		}
	})
}
