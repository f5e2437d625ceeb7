package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/receipt/pkg/adapters/fs"
	"github.com/aretw0/receipt/pkg/core"
)

// setupRepo helps create a repository for testing.
// It returns the repository and the data directory.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	dataPath := filepath.Join(t.TempDir(), "data")

	cfg := fs.Config{
		Path: dataPath,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return fs.NewRepository(cfg), dataPath
}

func setupInitialized(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()
	repo, path := setupRepo(t, opts...)
	if err := repo.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return repo, path
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory and Empty Log", func(t *testing.T) {
		repo, path := setupInitialized(t)

		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("expected directory to be created at %s", path)
		}

		data, err := os.ReadFile(repo.File())
		if err != nil {
			t.Fatalf("log not created: %v", err)
		}
		if string(data) != "{\n  \"entries\": []\n}\n" {
			t.Errorf("unexpected initial document %q", data)
		}
	})

	t.Run("Idempotent and Never Overwrites", func(t *testing.T) {
		repo, _ := setupInitialized(t)
		ctx := context.Background()

		if _, err := repo.Append(ctx, core.NewItemEntry(core.Item{OriginalText: "stapler"})); err != nil {
			t.Fatalf("Append failed: %v", err)
		}

		// A second process start
		again := fs.NewRepository(fs.Config{Path: repo.Path})
		if err := again.Initialize(ctx); err != nil {
			t.Fatalf("second Initialize failed: %v", err)
		}

		entries, err := again.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected existing entry to survive, got %d entries", len(entries))
		}
	})

	t.Run("Fills Zero Length File", func(t *testing.T) {
		repo, path := setupRepo(t)
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(repo.File(), nil, 0644); err != nil {
			t.Fatal(err)
		}

		if err := repo.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		entries, err := repo.List(context.Background())
		if err != nil || len(entries) != 0 {
			t.Errorf("expected empty log, got %v / %v", entries, err)
		}
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo, _ := setupRepo(t, func(c *fs.Config) {
			c.MustExist = true
		})

		err := repo.Initialize(context.Background())
		if !errors.Is(err, core.ErrStoreUnavailable) {
			t.Errorf("expected ErrStoreUnavailable, got %v", err)
		}
	})

	t.Run("Fails if Path Is a File", func(t *testing.T) {
		tmp := t.TempDir()
		blocker := filepath.Join(tmp, "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		repo := fs.NewRepository(fs.Config{Path: filepath.Join(blocker, "data")})
		if err := repo.Initialize(context.Background()); !errors.Is(err, core.ErrStoreUnavailable) {
			t.Errorf("expected ErrStoreUnavailable, got %v", err)
		}
	})
}

func TestList(t *testing.T) {
	t.Run("Fresh Log Is Empty Not Nil", func(t *testing.T) {
		repo, _ := setupInitialized(t)

		entries, err := repo.List(context.Background())
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if entries == nil || len(entries) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", entries)
		}
	})

	t.Run("Missing Log Is Unavailable", func(t *testing.T) {
		repo, _ := setupRepo(t)

		_, err := repo.List(context.Background())
		if !errors.Is(err, core.ErrStoreUnavailable) {
			t.Errorf("expected ErrStoreUnavailable, got %v", err)
		}
	})

	corrupt := map[string]string{
		"Invalid JSON":      "{not json",
		"Missing Entries":   `{"items": []}`,
		"Null Entries":      `{"entries": null}`,
		"Unknown Type":      `{"entries": [{"id": "a", "type": "refund"}]}`,
		"Entry Without ID":  `{"entries": [{"type": "item", "originalText": "x"}]}`,
		"Wrong Field Shape": `{"entries": [{"id": "a", "type": "item", "transactionId": "x"}]}`,
	}
	for name, doc := range corrupt {
		t.Run("Corrupt "+name, func(t *testing.T) {
			repo, _ := setupInitialized(t)
			if err := os.WriteFile(repo.File(), []byte(doc), 0644); err != nil {
				t.Fatal(err)
			}

			entries, err := repo.List(context.Background())
			if !errors.Is(err, core.ErrStoreCorrupt) {
				t.Fatalf("expected ErrStoreCorrupt, got %v (entries %v)", err, entries)
			}
		})
	}

	t.Run("Repeated List Is Stable", func(t *testing.T) {
		repo, _ := setupInitialized(t)
		ctx := context.Background()
		for _, text := range []string{"a", "b", "c"} {
			if _, err := repo.Append(ctx, core.NewItemEntry(core.Item{OriginalText: text})); err != nil {
				t.Fatal(err)
			}
		}

		first, err := repo.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		first[0].Item.OriginalText = "mutated by caller"

		second, err := repo.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if second[0].Item.OriginalText != "c" {
			t.Errorf("caller mutation leaked into the log: %q", second[0].Item.OriginalText)
		}
	})

	t.Run("Sees Out Of Band Changes", func(t *testing.T) {
		repo, _ := setupInitialized(t)
		ctx := context.Background()
		if _, err := repo.List(ctx); err != nil {
			t.Fatal(err)
		}

		doc := `{"entries": [{"id": "01HZZZ", "timestamp": 1, "type": "coupon", "product": "Glue"}]}`
		if err := os.WriteFile(repo.File(), []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}

		entries, err := repo.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Coupon == nil || entries[0].Coupon.Product != "Glue" {
			t.Errorf("expected externally written coupon, got %+v", entries)
		}
	})
}

func TestAppend(t *testing.T) {
	t.Run("Scenario Item Then Coupon Then Item", func(t *testing.T) {
		repo, _ := setupInitialized(t)
		ctx := context.Background()

		first, err := repo.Append(ctx, core.NewItemEntry(core.Item{OriginalText: "stapler"}))
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}

		entries, _ := repo.List(ctx)
		if len(entries) != 1 || entries[0].Item.OriginalText != "stapler" || entries[0].Type != core.TypeItem {
			t.Fatalf("unexpected log after first append: %+v", entries)
		}
		if entries[0].ID != first.ID || first.ID == "" {
			t.Errorf("expected assigned id %q in log, got %q", first.ID, entries[0].ID)
		}

		if _, err := repo.Append(ctx, core.NewCouponEntry(core.Coupon{Product: "Quantum Floss 5000"})); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.Append(ctx, core.NewItemEntry(core.Item{OriginalText: "pen"})); err != nil {
			t.Fatal(err)
		}

		entries, _ = repo.List(ctx)
		want := []core.EntryType{core.TypeItem, core.TypeCoupon, core.TypeItem}
		if len(entries) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(entries))
		}
		for i, typ := range want {
			if entries[i].Type != typ {
				t.Errorf("entry %d: expected %s, got %s", i, typ, entries[i].Type)
			}
		}
		if entries[0].Item.OriginalText != "pen" {
			t.Errorf("expected newest entry first, got %q", entries[0].Item.OriginalText)
		}
	})

	t.Run("Round Trip Preserves Fields", func(t *testing.T) {
		repo, _ := setupInitialized(t)
		ctx := context.Background()

		candidate := core.NewItemEntry(core.Item{
			OriginalText:    "stapler",
			TransformedText: "Artisanal Paper Marrying Device",
			Time:            "3:04 PM",
			Date:            "January 2, 2006",
			TransactionID:   4821,
			CashierID:       "00052341",
			Barcode:         "12345678901234567890",
		})

		got, err := repo.Append(ctx, candidate)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID == "" || got.Timestamp == 0 {
			t.Errorf("expected id and timestamp, got %+v", got)
		}
		if candidate.ID != "" || candidate.Timestamp != 0 {
			t.Errorf("candidate was mutated: %+v", candidate)
		}

		fresh := fs.NewRepository(fs.Config{Path: repo.Path})
		entries, err := fresh.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if *entries[0].Item != *candidate.Item {
			t.Errorf("fields differ after reload:\n got %+v\nwant %+v", *entries[0].Item, *candidate.Item)
		}
	})

	t.Run("Ids Are Unique And Ordered", func(t *testing.T) {
		repo, _ := setupInitialized(t)
		ctx := context.Background()

		for i := 0; i < 50; i++ {
			if _, err := repo.Append(ctx, core.NewCouponEntry(core.Coupon{Product: "Glue"})); err != nil {
				t.Fatal(err)
			}
		}

		entries, _ := repo.List(ctx)
		seen := make(map[string]bool)
		for i, e := range entries {
			if seen[e.ID] {
				t.Fatalf("duplicate id %s", e.ID)
			}
			seen[e.ID] = true
			if i > 0 && e.ID >= entries[i-1].ID {
				t.Errorf("ids not newest-first at %d: %s >= %s", i, e.ID, entries[i-1].ID)
			}
		}
	})

	t.Run("Rejects Unknown Type", func(t *testing.T) {
		repo, _ := setupInitialized(t)
		ctx := context.Background()

		_, err := repo.Append(ctx, core.Entry{Type: "refund"})
		if !errors.Is(err, core.ErrInvalidEntry) {
			t.Fatalf("expected ErrInvalidEntry, got %v", err)
		}
		entries, _ := repo.List(ctx)
		if len(entries) != 0 {
			t.Errorf("expected no change, got %d entries", len(entries))
		}
	})

	t.Run("Refuses Corrupt Log", func(t *testing.T) {
		repo, _ := setupInitialized(t)
		if err := os.WriteFile(repo.File(), []byte("garbage"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := repo.Append(context.Background(), core.NewItemEntry(core.Item{OriginalText: "x"}))
		if !errors.Is(err, core.ErrStoreCorrupt) {
			t.Fatalf("expected ErrStoreCorrupt, got %v", err)
		}
		data, _ := os.ReadFile(repo.File())
		if string(data) != "garbage" {
			t.Errorf("corrupt log was overwritten: %q", data)
		}
	})

	t.Run("Read Only", func(t *testing.T) {
		_, path := setupInitialized(t)

		ro := fs.NewRepository(fs.Config{Path: path, ReadOnly: true})
		if err := ro.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		_, err := ro.Append(context.Background(), core.NewItemEntry(core.Item{OriginalText: "x"}))
		if !errors.Is(err, core.ErrReadOnly) {
			t.Errorf("expected ErrReadOnly, got %v", err)
		}
	})

	t.Run("Times Out On Held Lock", func(t *testing.T) {
		repo, _ := setupInitialized(t, func(c *fs.Config) {
			c.StaleLockAfter = -1
		})
		if err := os.WriteFile(repo.File()+".lock", []byte("999999"), 0644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := repo.Append(ctx, core.NewItemEntry(core.Item{OriginalText: "x"}))
		if !errors.Is(err, core.ErrStoreUnavailable) || !errors.Is(err, fs.ErrLockTimeout) {
			t.Fatalf("expected lock timeout as ErrStoreUnavailable, got %v", err)
		}
	})
}
