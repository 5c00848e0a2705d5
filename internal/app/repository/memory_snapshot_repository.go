package repository

import (
	"context"
	"sync"
)

type memorySnapshotRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemorySnapshotRepository keeps snapshots for the lifetime of the process only.
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{data: make(map[string][]byte)}
}

func (r *memorySnapshotRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payload, ok := r.data[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return append([]byte(nil), payload...), nil
}

func (r *memorySnapshotRepository) Put(_ context.Context, key string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]byte(nil), payload...)
	return nil
}

func (r *memorySnapshotRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}
