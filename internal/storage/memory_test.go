package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

func testStores(t *testing.T) map[string]domain.SnapshotStore {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	return map[string]domain.SnapshotStore{
		"memory": NewMemoryStore(log),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "state", "timer.state"), log),
	}
}

func TestStoreSaveLoadClear(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			// Load before save.
			if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			snap := domain.Snapshot{RemainingMs: 42000, Running: true, ConfiguredMs: 60000}
			if err := store.Save(ctx, snap); err != nil {
				t.Fatalf("save: %v", err)
			}

			loaded, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if loaded != snap {
				t.Fatalf("expected %+v, got %+v", snap, loaded)
			}

			// Overwrite.
			snap.Running = false
			if err := store.Save(ctx, snap); err != nil {
				t.Fatalf("save: %v", err)
			}
			if loaded, _ := store.Load(ctx); loaded.Running {
				t.Fatal("overwrite not visible")
			}

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after clear, got %v", err)
			}

			// Clear twice.
			if err := store.Clear(ctx); err != nil {
				t.Fatalf("second clear: %v", err)
			}
		})
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	path := filepath.Join(t.TempDir(), "timer.state")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewFileStore(path, log)
	if _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}
}

func TestFileStoreWritesRecordSize(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewFileStore(filepath.Join(t.TempDir(), "timer.state"), log)

	if err := store.Save(context.Background(), domain.Snapshot{RemainingMs: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != domain.SnapshotSize {
		t.Fatalf("expected %d bytes, got %d", domain.SnapshotSize, info.Size())
	}
}
