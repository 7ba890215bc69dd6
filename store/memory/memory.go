// Package memory provides an in-process CheckpointStore.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/smallnest/langgraphlab/store"
)

// MemoryCheckpointStore keeps checkpoints in a map guarded by a RWMutex.
// Checkpoints are copied on Save and Load so callers cannot alias stored values.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
}

var _ store.CheckpointStore = (*MemoryCheckpointStore)(nil)

// NewMemoryCheckpointStore creates an empty store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
	}
}

func (m *MemoryCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[checkpoint.ID] = clone(checkpoint)
	return nil
}

func (m *MemoryCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return nil, store.NotFound(checkpointID)
	}
	return clone(cp), nil
}

func (m *MemoryCheckpointStore) List(_ context.Context, executionID string) ([]*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*store.Checkpoint, 0)
	for _, cp := range m.checkpoints {
		if store.BelongsTo(cp, executionID) {
			result = append(result, clone(cp))
		}
	}
	store.SortByVersion(result)
	return result, nil
}

func (m *MemoryCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkpoints, checkpointID)
	return nil
}

func (m *MemoryCheckpointStore) Clear(_ context.Context, executionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cp := range m.checkpoints {
		if store.BelongsTo(cp, executionID) {
			delete(m.checkpoints, id)
		}
	}
	return nil
}

// Len reports how many checkpoints are held.
func (m *MemoryCheckpointStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.checkpoints)
}

func clone(cp *store.Checkpoint) *store.Checkpoint {
	c := *cp
	c.Metadata = maps.Clone(cp.Metadata)
	return &c
}
