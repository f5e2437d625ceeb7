package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/receipt/pkg/adapters/fs"
	"github.com/aretw0/receipt/pkg/core"
)

func TestWatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watcher test in short mode")
	}

	t.Run("Reports Appends", func(t *testing.T) {
		repo, _ := setupInitialized(t)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := repo.Watch(ctx, "")
		require.NoError(t, err)

		// Give the watcher goroutine a moment to start.
		time.Sleep(50 * time.Millisecond)

		_, err = repo.Append(context.Background(), core.NewItemEntry(core.Item{OriginalText: "stapler"}))
		require.NoError(t, err)

		select {
		case e := <-events:
			require.Equal(t, fs.DefaultFileName, e.ID)
		case <-time.After(3 * time.Second):
			t.Fatal("timeout waiting for watch event")
		}
	})

	t.Run("Ignores Other Files", func(t *testing.T) {
		repo, path := setupInitialized(t)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := repo.Watch(ctx, "*.json")
		require.NoError(t, err)
		time.Sleep(50 * time.Millisecond)

		require.NoError(t, os.WriteFile(filepath.Join(path, "notes.txt"), []byte("x"), 0644))

		select {
		case e := <-events:
			t.Fatalf("unexpected event %s", e)
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("Closes On Cancel", func(t *testing.T) {
		repo, _ := setupInitialized(t)

		ctx, cancel := context.WithCancel(context.Background())
		events, err := repo.Watch(ctx, "")
		require.NoError(t, err)
		cancel()

		deadline := time.After(3 * time.Second)
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("events channel not closed after cancel")
			}
		}
	})

	t.Run("Counts Concurrent Watchers", func(t *testing.T) {
		repo, _ := setupInitialized(t)

		ctxA, cancelA := context.WithCancel(context.Background())
		defer cancelA()
		ctxB, cancelB := context.WithCancel(context.Background())
		defer cancelB()

		eventsA, err := repo.Watch(ctxA, "")
		require.NoError(t, err)
		eventsB, err := repo.Watch(ctxB, "")
		require.NoError(t, err)

		state := repo.State().(fs.RepositoryState)
		require.Equal(t, 2, state.Watchers)

		cancelA()
		waitClosed(t, eventsA)
		state = repo.State().(fs.RepositoryState)
		require.True(t, state.WatcherActive, "second watcher is still running")
		require.Equal(t, 1, state.Watchers)

		cancelB()
		waitClosed(t, eventsB)
		state = repo.State().(fs.RepositoryState)
		require.False(t, state.WatcherActive)
		require.Equal(t, 0, state.Watchers)
	})

	t.Run("Missing Directory Is Unavailable", func(t *testing.T) {
		repo, path := setupInitialized(t)
		require.NoError(t, os.RemoveAll(path))

		_, err := repo.Watch(context.Background(), "")
		require.ErrorIs(t, err, core.ErrStoreUnavailable)
	})

	t.Run("Rejects Bad Pattern", func(t *testing.T) {
		repo, _ := setupInitialized(t)
		_, err := repo.Watch(context.Background(), "[")
		require.Error(t, err)
	})
}

func waitClosed(t *testing.T, events <-chan core.Event) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}
