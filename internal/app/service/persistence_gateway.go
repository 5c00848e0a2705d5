package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/ikkim/shopgenie-backend/internal/app/repository"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
)

// StoreKey names one persisted store snapshot.
type StoreKey string

const (
	StoreCart     StoreKey = "cart"
	StoreWishlist StoreKey = "wishlist"
	StoreHistory  StoreKey = "history"
	StoreSession  StoreKey = "session"
)

// StoreKeys lists every persisted store.
var StoreKeys = []StoreKey{StoreCart, StoreWishlist, StoreHistory, StoreSession}

// PersistenceGateway is best-effort durable storage for store snapshots.
// Nothing it does fails a user action: read problems fall back to defaults
// and write problems leave the store in memory only until a later write for
// the same key succeeds.
type PersistenceGateway interface {
	// Load decodes the snapshot under key into out. It reports false when the
	// snapshot is missing or cannot be decoded; out must then be discarded.
	Load(ctx context.Context, key StoreKey, out interface{}) bool
	Save(ctx context.Context, key StoreKey, value interface{}) error
	Remove(ctx context.Context, key StoreKey) error
	Degraded() []StoreKey
	// Retry re-attempts pending writes and returns how many succeeded.
	Retry(ctx context.Context) int
}

type pendingWrite struct {
	payload []byte
	remove  bool
}

type persistenceGateway struct {
	repo repository.SnapshotRepository

	mu      sync.Mutex
	pending map[StoreKey]pendingWrite
}

func NewPersistenceGateway(repo repository.SnapshotRepository) PersistenceGateway {
	return &persistenceGateway{
		repo:    repo,
		pending: make(map[StoreKey]pendingWrite),
	}
}

func (g *persistenceGateway) Load(ctx context.Context, key StoreKey, out interface{}) bool {
	payload, err := g.repo.Get(ctx, string(key))
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		logger.Debug("No stored snapshot, using defaults", map[string]interface{}{
			"store": key,
		})
		return false
	}
	if err != nil {
		logger.Error("Failed to read stored snapshot, using defaults", err, map[string]interface{}{
			"store": key,
		})
		return false
	}

	if err := json.Unmarshal(payload, out); err != nil {
		logger.Warn("Ignoring corrupt snapshot", map[string]interface{}{
			"store": key,
			"error": err.Error(),
		})
		return false
	}
	return true
}

func (g *persistenceGateway) Save(ctx context.Context, key StoreKey, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("Failed to encode snapshot", err, map[string]interface{}{
			"store": key,
		})
		return err
	}
	return g.write(ctx, key, pendingWrite{payload: payload})
}

func (g *persistenceGateway) Remove(ctx context.Context, key StoreKey) error {
	return g.write(ctx, key, pendingWrite{remove: true})
}

func (g *persistenceGateway) write(ctx context.Context, key StoreKey, w pendingWrite) error {
	var err error
	if w.remove {
		err = g.repo.Delete(ctx, string(key))
	} else {
		err = g.repo.Put(ctx, string(key), w.payload)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		if _, already := g.pending[key]; !already {
			logger.Warn("Snapshot write failed, store is memory-only until the next successful write", map[string]interface{}{
				"store": key,
				"error": err.Error(),
			})
		}
		g.pending[key] = w
		return err
	}

	if _, was := g.pending[key]; was {
		delete(g.pending, key)
		logger.Info("Snapshot persistence recovered", map[string]interface{}{
			"store": key,
		})
	}
	return nil
}

func (g *persistenceGateway) Degraded() []StoreKey {
	g.mu.Lock()
	defer g.mu.Unlock()

	keys := make([]StoreKey, 0, len(g.pending))
	for key := range g.pending {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (g *persistenceGateway) Retry(ctx context.Context) int {
	g.mu.Lock()
	work := make(map[StoreKey]pendingWrite, len(g.pending))
	for key, w := range g.pending {
		work[key] = w
	}
	g.mu.Unlock()

	flushed := 0
	for key, w := range work {
		if ctx.Err() != nil {
			break
		}
		if g.retryOne(ctx, key, w) {
			flushed++
		}
	}
	return flushed
}

// retryOne writes w unless a newer write for key has replaced it meanwhile.
func (g *persistenceGateway) retryOne(ctx context.Context, key StoreKey, w pendingWrite) bool {
	g.mu.Lock()
	current, ok := g.pending[key]
	g.mu.Unlock()
	if !ok || !samePendingWrite(current, w) {
		return false
	}
	return g.write(ctx, key, w) == nil
}

func samePendingWrite(a, b pendingWrite) bool {
	return a.remove == b.remove && string(a.payload) == string(b.payload)
}
