package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langgraphlab/store"
	"github.com/smallnest/langgraphlab/store/file"
	"github.com/smallnest/langgraphlab/store/memory"
	"github.com/smallnest/langgraphlab/store/redis"
	"github.com/smallnest/langgraphlab/store/sqlite"
)

func TestOpenCheckpointStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	tests := []struct {
		dsn  string
		want any
	}{
		{"memory", &memory.MemoryCheckpointStore{}},
		{"file:" + filepath.Join(dir, "cps"), &file.FileCheckpointStore{}},
		{"sqlite:" + filepath.Join(dir, "cps.db"), &sqlite.SqliteCheckpointStore{}},
		{"redis:" + mr.Addr(), &redis.RedisCheckpointStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			s, closeFn, err := openCheckpointStore(ctx, tt.dsn)
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()
			assert.IsType(t, tt.want, s)

			require.NoError(t, s.Save(ctx, &store.Checkpoint{
				ID:       "cp-1",
				NodeName: "greet",
				Version:  1,
				Metadata: map[string]any{store.MetaExecutionID: "run-1"},
			}))
			list, err := s.List(ctx, "run-1")
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "greet", list[0].NodeName)
		})
	}
}

func TestOpenCheckpointStoreDisabled(t *testing.T) {
	s, closeFn, err := openCheckpointStore(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, closeFn())
}

func TestOpenCheckpointStoreErrors(t *testing.T) {
	for _, dsn := range []string{"bogus", "file:", "mongo:localhost:27017"} {
		_, _, err := openCheckpointStore(context.Background(), dsn)
		assert.Error(t, err, dsn)
	}
}
