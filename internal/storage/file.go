package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// Compile-time interface check.
var _ domain.SnapshotStore = (*FileStore)(nil)

// FileStore writes the snapshot record to a single file. Writes go to a
// temporary file first and are renamed into place.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

// NewFileStore creates a store backed by path. The parent directory is
// created on first save.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Save writes the snapshot record.
func (s *FileStore) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := snap.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	s.log.Debug("saved snapshot to %s (remaining=%dms, running=%t, configured=%dms)",
		s.path, snap.RemainingMs, snap.Running, snap.ConfiguredMs)
	return nil
}

// Load reads the snapshot record. A missing file yields domain.ErrNotFound.
func (s *FileStore) Load(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Snapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := snap.UnmarshalBinary(data); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return snap, nil
}

// Clear removes the snapshot file. Clearing a missing file is not an error.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	s.log.Debug("cleared snapshot %s", s.path)
	return nil
}
