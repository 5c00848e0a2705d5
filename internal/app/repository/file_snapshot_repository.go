package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ikkim/shopgenie-backend/pkg/logger"
)

// fileSnapshotRepository keeps every key in one JSON document on disk, the
// closest analogue of browser local storage. Writes go to a temp file that is
// renamed over the original.
type fileSnapshotRepository struct {
	mu       sync.Mutex
	path     string
	readFile func(name string) ([]byte, error)
}

var errCorruptStateFile = errors.New("state file is not valid JSON")

func NewFileSnapshotRepository(path string) (SnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &fileSnapshotRepository{path: path, readFile: os.ReadFile}, nil
}

func (r *fileSnapshotRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	payload, ok := doc[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return payload, nil
}

func (r *fileSnapshotRepository) Put(_ context.Context, key string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readForWrite()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(append([]byte(nil), payload...))
	return r.write(doc)
}

func (r *fileSnapshotRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return r.write(doc)
}

func (r *fileSnapshotRepository) read() (map[string]json.RawMessage, error) {
	data, err := r.readFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptStateFile, err)
	}
	return doc, nil
}

// readForWrite starts over from an empty document when the file holds invalid
// JSON, so one corrupt file does not block every later write. Any other read
// failure is returned; writing then would drop the other keys.
func (r *fileSnapshotRepository) readForWrite() (map[string]json.RawMessage, error) {
	doc, err := r.read()
	if errors.Is(err, errCorruptStateFile) {
		logger.Warn("Discarding corrupt state file", map[string]interface{}{
			"path":  r.path,
			"error": err.Error(),
		})
		return map[string]json.RawMessage{}, nil
	}
	return doc, err
}

func (r *fileSnapshotRepository) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
