package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/receipt/internal/platform"
	"github.com/aretw0/receipt/pkg/adapters/fs"
	"github.com/aretw0/receipt/pkg/core"
	"github.com/aretw0/receipt/pkg/novelty"
)

func TestInit(t *testing.T) {
	t.Run("AutoInit Creates Directory and Log", func(t *testing.T) {
		dataPath := filepath.Join(t.TempDir(), "data")

		repo, err := platform.Init(dataPath, platform.WithAutoInit(true))
		require.NoError(t, err)

		fsRepo, ok := repo.(*fs.Repository)
		require.True(t, ok, "expected fs repository")
		assert.Equal(t, dataPath, fsRepo.Path)

		_, err = os.Stat(filepath.Join(dataPath, fs.DefaultFileName))
		assert.NoError(t, err)
	})

	t.Run("Missing Directory With MustExist", func(t *testing.T) {
		_, err := platform.Init(filepath.Join(t.TempDir(), "missing"), platform.WithMustExist(true))
		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	})

	t.Run("Existing Directory", func(t *testing.T) {
		dir := t.TempDir()
		_, err := platform.Init(dir)
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, fs.DefaultFileName))
		assert.NoError(t, err)
	})

	t.Run("Custom File Name", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := platform.Init(dir, platform.WithFileName("shop.json"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "shop.json"), repo.(*fs.Repository).File())
	})

	t.Run("Read Only Never Creates", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := platform.Init(dir, platform.WithReadOnly(true))
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(dir, fs.DefaultFileName))
		assert.True(t, os.IsNotExist(err))

		_, err = repo.Append(context.Background(), core.NewItemEntry(core.Item{OriginalText: "x"}))
		assert.ErrorIs(t, err, core.ErrReadOnly)
	})

	t.Run("Injected Repository", func(t *testing.T) {
		injected := fs.NewRepository(fs.Config{Path: t.TempDir()})
		repo, err := platform.Init("ignored", platform.WithRepository(injected))
		require.NoError(t, err)
		assert.Same(t, injected, repo)
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := platform.Init(t.TempDir(), platform.WithAdapter("s3"))
		assert.ErrorContains(t, err, "unknown adapter")
	})

	t.Run("Dev Safety Sandboxes Relative Paths", func(t *testing.T) {
		repo, err := platform.Init("receipt-ops-test", platform.WithAutoInit(true))
		require.NoError(t, err)
		t.Cleanup(func() { os.RemoveAll(repo.(*fs.Repository).Path) })

		assert.Equal(t, filepath.Join(os.TempDir(), "receipt-dev", "receipt-ops-test"), repo.(*fs.Repository).Path)
	})
}

func TestNew(t *testing.T) {
	t.Run("Wires Default Composer", func(t *testing.T) {
		svc, err := platform.New(t.TempDir(), platform.WithBonusProbability(0))
		require.NoError(t, err)

		entries, err := svc.Submit(context.Background(), "stapler")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, core.TypeItem, entries[0].Type)
		assert.NotEmpty(t, entries[0].Item.TransformedText)
	})

	t.Run("Custom Composer", func(t *testing.T) {
		reg := novelty.NewRegister(novelty.WithBonusPolicy(novelty.Fixed(true)))
		svc, err := platform.New(t.TempDir(), platform.WithComposer(reg), platform.WithLockTimeout(time.Second))
		require.NoError(t, err)

		entries, err := svc.Submit(context.Background(), "stapler")
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}
