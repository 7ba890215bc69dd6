package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrCheckpointNotFound is returned by Load when no checkpoint has the given ID.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Metadata keys a checkpoint can be grouped under. List and Clear match an
// execution ID against any of them.
const (
	MetaExecutionID = "execution_id"
	MetaThreadID    = "thread_id"
	MetaSessionID   = "session_id"
	MetaWorkflowID  = "workflow_id"
)

var executionKeys = []string{MetaExecutionID, MetaThreadID, MetaSessionID, MetaWorkflowID}

// Checkpoint represents a saved state at a specific point in execution
type Checkpoint struct {
	ID        string         `json:"id"`
	NodeName  string         `json:"node_name"`
	State     any            `json:"state"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
	Version   int            `json:"version"`
}

// CheckpointStore defines the interface for checkpoint persistence
type CheckpointStore interface {
	// Save stores a checkpoint, replacing any checkpoint with the same ID.
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID. A missing checkpoint yields an error
	// wrapping ErrCheckpointNotFound.
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// List returns all checkpoints for a given execution ordered by version.
	List(ctx context.Context, executionID string) ([]*Checkpoint, error)

	// Delete removes a checkpoint. Deleting a missing checkpoint is not an error.
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints for an execution
	Clear(ctx context.Context, executionID string) error
}

// NotFound builds the error returned for a missing checkpoint.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
}

// ExecutionIDs returns the distinct grouping IDs recorded in the checkpoint metadata.
func ExecutionIDs(cp *Checkpoint) []string {
	if cp == nil || len(cp.Metadata) == 0 {
		return nil
	}
	var ids []string
	seen := make(map[string]bool)
	for _, key := range executionKeys {
		if id, ok := cp.Metadata[key].(string); ok && id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// BelongsTo reports whether the checkpoint is grouped under executionID.
func BelongsTo(cp *Checkpoint, executionID string) bool {
	for _, id := range ExecutionIDs(cp) {
		if id == executionID {
			return true
		}
	}
	return false
}

// SortByVersion orders checkpoints by version, then timestamp.
func SortByVersion(cps []*Checkpoint) {
	sort.SliceStable(cps, func(i, j int) bool {
		if cps[i].Version != cps[j].Version {
			return cps[i].Version < cps[j].Version
		}
		return cps[i].Timestamp.Before(cps[j].Timestamp)
	})
}

// Latest returns the checkpoint with the highest version, or nil.
func Latest(cps []*Checkpoint) *Checkpoint {
	var latest *Checkpoint
	for _, cp := range cps {
		if latest == nil || cp.Version > latest.Version {
			latest = cp
		}
	}
	return latest
}
