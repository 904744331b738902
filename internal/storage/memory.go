// Package storage provides snapshot persistence implementations.
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// Compile-time interface check.
var _ domain.SnapshotStore = (*MemoryStore)(nil)

// MemoryStore keeps the snapshot in memory. Safe for concurrent access.
type MemoryStore struct {
	mu   sync.RWMutex
	snap *domain.Snapshot
	log  *logger.Logger
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{log: log}
}

// Save stores the snapshot, replacing any previous one.
func (s *MemoryStore) Save(ctx context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving snapshot in memory (remaining=%dms, running=%t)", snap.RemainingMs, snap.Running)
	s.snap = &snap
	return nil
}

// Load returns the stored snapshot or domain.ErrNotFound.
func (s *MemoryStore) Load(ctx context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return domain.Snapshot{}, domain.ErrNotFound
	}
	return *s.snap, nil
}

// Clear drops the stored snapshot.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = nil
	return nil
}
