package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langgraphlab/store"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisCheckpointStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := NewRedisCheckpointStore(RedisOptions{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisCheckpointStore(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()
	execID := "exec-123"

	cp := &store.Checkpoint{
		ID:        "cp-1",
		NodeName:  "greet",
		State:     map[string]any{"greeting": "Hello, Alice!"},
		Timestamp: time.Now(),
		Version:   1,
		Metadata:  map[string]any{store.MetaExecutionID: execID},
	}

	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, cp.NodeName, loaded.NodeName)
	state, ok := loaded.State.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "Hello, Alice!", state["greeting"])

	list, err := s.List(ctx, execID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, "cp-1"))
	_, err = s.Load(ctx, "cp-1")
	assert.True(t, errors.Is(err, store.ErrCheckpointNotFound))
	assert.NoError(t, s.Delete(ctx, "cp-1"))

	list, err = s.List(ctx, execID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisCheckpointStore_ListOrderAndClear(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	for _, cp := range []*store.Checkpoint{
		{ID: "review", Version: 3, Metadata: map[string]any{store.MetaExecutionID: "run"}},
		{ID: "outline", Version: 1, Metadata: map[string]any{store.MetaExecutionID: "run"}},
		{ID: "draft", Version: 2, Metadata: map[string]any{store.MetaExecutionID: "run", store.MetaThreadID: "t-1"}},
	} {
		require.NoError(t, s.Save(ctx, cp))
	}

	list, err := s.List(ctx, "run")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "outline", list[0].ID)
	assert.Equal(t, "review", list[2].ID)

	threads, err := s.List(ctx, "t-1")
	require.NoError(t, err)
	assert.Len(t, threads, 1)

	require.NoError(t, s.Clear(ctx, "run"))
	list, err = s.List(ctx, "run")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisCheckpointStore_TTL(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &store.Checkpoint{
		ID:       "short-lived",
		Metadata: map[string]any{store.MetaExecutionID: "run"},
	}))
	assert.Equal(t, time.Minute, mr.TTL("langgraphlab:checkpoint:short-lived"))

	mr.FastForward(2 * time.Minute)

	_, err := s.Load(ctx, "short-lived")
	assert.True(t, errors.Is(err, store.ErrCheckpointNotFound))
}
