package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/langgraphlab/log"
	"github.com/smallnest/langgraphlab/store"
)

// Checkpoint is an alias for store.Checkpoint
type Checkpoint = store.Checkpoint

// CheckpointStore is an alias for store.CheckpointStore
type CheckpointStore = store.CheckpointStore

// CheckpointListener saves a checkpoint after every completed node. It is
// registered like any other NodeListener and keys checkpoints by the run ID.
type CheckpointListener struct {
	store  store.CheckpointStore
	logger log.Logger

	mu       sync.Mutex
	versions map[string]int
}

var _ NodeListener = (*CheckpointListener)(nil)

// NewCheckpointListener creates a listener writing to s. Save failures are
// logged and do not fail the run.
func NewCheckpointListener(s store.CheckpointStore, logger log.Logger) *CheckpointListener {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &CheckpointListener{
		store:    s,
		logger:   logger,
		versions: make(map[string]int),
	}
}

// nextVersion numbers checkpoints per run. A resumed run continues after
// the version it resumed from.
func (cl *CheckpointListener) nextVersion(info RunInfo) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	v := max(cl.versions[info.RunID], info.ResumedVersion) + 1
	cl.versions[info.RunID] = v
	return v
}

func (cl *CheckpointListener) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state any, _ error) {
	switch event {
	case NodeEventComplete:
	case EventChainEnd, NodeEventError:
		if info, ok := RunInfoFromContext(ctx); ok {
			cl.mu.Lock()
			delete(cl.versions, info.RunID)
			cl.mu.Unlock()
		}
		return
	default:
		return
	}

	info, _ := RunInfoFromContext(ctx)
	metadata := map[string]any{
		store.MetaExecutionID: info.RunID,
		"event":               "step",
		"step":                info.Step,
	}
	if info.ThreadID != "" {
		metadata[store.MetaThreadID] = info.ThreadID
	}

	cp := &store.Checkpoint{
		ID:        uuid.NewString(),
		NodeName:  nodeName,
		State:     state,
		Timestamp: time.Now(),
		Version:   cl.nextVersion(info),
		Metadata:  metadata,
	}

	if err := cl.store.Save(ctx, cp); err != nil {
		cl.logger.Error("failed to save checkpoint after node %s: %v", nodeName, err)
	}
}

// DecodeState converts a checkpoint's state into S. States read back from a
// serializing store arrive as generic JSON values and are re-decoded.
func DecodeState[S any](cp *store.Checkpoint) (S, error) {
	var s S
	if typed, ok := cp.State.(S); ok {
		return typed, nil
	}
	data, err := json.Marshal(cp.State)
	if err != nil {
		return s, fmt.Errorf("failed to marshal checkpoint state: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to decode checkpoint state: %w", err)
	}
	return s, nil
}
