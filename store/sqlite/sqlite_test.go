package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langgraphlab/store"
)

func newTestStore(t *testing.T) *SqliteCheckpointStore {
	t.Helper()
	s, err := NewSqliteCheckpointStore(SqliteOptions{
		Path: filepath.Join(t.TempDir(), "checkpoints.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSqliteCheckpointStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cp := &store.Checkpoint{
		ID:        "cp-1",
		NodeName:  "analyze",
		State:     map[string]any{"query": "What is AI?", "query_length": "short"},
		Timestamp: time.Now().UTC(),
		Version:   1,
		Metadata:  map[string]any{store.MetaExecutionID: "run-1"},
	}
	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "analyze", loaded.NodeName)
	assert.Equal(t, "run-1", loaded.Metadata[store.MetaExecutionID])
	state := loaded.State.(map[string]any)
	assert.Equal(t, "short", state["query_length"])

	// upsert
	cp.NodeName = "quick"
	cp.Version = 2
	require.NoError(t, s.Save(ctx, cp))
	loaded, err = s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "quick", loaded.NodeName)
	assert.Equal(t, 2, loaded.Version)

	_, err = s.Load(ctx, "missing")
	assert.True(t, errors.Is(err, store.ErrCheckpointNotFound))
}

func TestSqliteCheckpointStore_ListDeleteClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, cp := range []*store.Checkpoint{
		{ID: "b", NodeName: "draft", State: "x", Version: 2, Timestamp: now, Metadata: map[string]any{store.MetaExecutionID: "run"}},
		{ID: "a", NodeName: "outline", State: "x", Version: 1, Timestamp: now, Metadata: map[string]any{store.MetaExecutionID: "run"}},
		{ID: "t", NodeName: "quick", State: "x", Version: 1, Timestamp: now, Metadata: map[string]any{store.MetaThreadID: "thread-7"}},
	} {
		require.NoError(t, s.Save(ctx, cp))
	}

	list, err := s.List(ctx, "run")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	threads, err := s.List(ctx, "thread-7")
	require.NoError(t, err)
	assert.Len(t, threads, 1)

	require.NoError(t, s.Delete(ctx, "a"))
	list, _ = s.List(ctx, "run")
	assert.Len(t, list, 1)

	require.NoError(t, s.Clear(ctx, "run"))
	list, _ = s.List(ctx, "run")
	assert.Empty(t, list)

	_, err = s.Load(ctx, "t")
	assert.NoError(t, err)
}
