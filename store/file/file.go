// Package file stores checkpoints as JSON documents in a directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/smallnest/langgraphlab/store"
)

// FileCheckpointStore writes each checkpoint to <path>/<id>.json.
type FileCheckpointStore struct {
	mu   sync.RWMutex
	path string
}

var _ store.CheckpointStore = (*FileCheckpointStore)(nil)

// NewFileCheckpointStore creates the directory if needed and returns a store rooted at it.
func NewFileCheckpointStore(path string) (*FileCheckpointStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &FileCheckpointStore{path: path}, nil
}

// Path returns the directory checkpoints are written to.
func (f *FileCheckpointStore) Path() string {
	return f.path
}

func (f *FileCheckpointStore) filename(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid checkpoint id %q", id)
	}
	return filepath.Join(f.path, id+".json"), nil
}

func (f *FileCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	name, err := f.filename(checkpoint.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.path, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

func (f *FileCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	name, err := f.filename(checkpointID)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return readCheckpoint(name, checkpointID)
}

func readCheckpoint(name, id string) (*store.Checkpoint, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.NotFound(id)
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

func (f *FileCheckpointStore) all() ([]*store.Checkpoint, error) {
	entries, err := os.ReadDir(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	var cps []*store.Checkpoint
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		cp, err := readCheckpoint(filepath.Join(f.path, e.Name()), id)
		if err != nil {
			// foreign or half-written files are not checkpoints
			continue
		}
		cps = append(cps, cp)
	}
	return cps, nil
}

func (f *FileCheckpointStore) List(_ context.Context, executionID string) ([]*store.Checkpoint, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	cps, err := f.all()
	if err != nil {
		return nil, err
	}
	result := make([]*store.Checkpoint, 0, len(cps))
	for _, cp := range cps {
		if store.BelongsTo(cp, executionID) {
			result = append(result, cp)
		}
	}
	store.SortByVersion(result)
	return result, nil
}

func (f *FileCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	name, err := f.filename(checkpointID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

func (f *FileCheckpointStore) Clear(_ context.Context, executionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cps, err := f.all()
	if err != nil {
		return err
	}
	for _, cp := range cps {
		if !store.BelongsTo(cp, executionID) {
			continue
		}
		if err := os.Remove(filepath.Join(f.path, cp.ID+".json")); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear checkpoint %s: %w", cp.ID, err)
		}
	}
	return nil
}
