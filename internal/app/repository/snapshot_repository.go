package repository

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by Get when nothing is stored under a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository is durable key-value storage for serialized store
// snapshots. Implementations are last-write-wins; nothing detects concurrent
// writers sharing the same backend.
type SnapshotRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
	// Delete removes a key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

func namespaced(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
