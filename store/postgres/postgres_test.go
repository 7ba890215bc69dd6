package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langgraphlab/store"
)

const selectByID = "SELECT id, node_name, state, metadata, timestamp, version FROM checkpoints WHERE id = $1"

func newMockStore(t *testing.T) (*PostgresCheckpointStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresCheckpointStoreWithPool(mock, "checkpoints"), mock
}

func TestPostgresCheckpointStore_Save(t *testing.T) {
	s, mock := newMockStore(t)

	cp := &store.Checkpoint{
		ID:        "cp-1",
		NodeName:  "greet",
		State:     map[string]any{"name": "Alice"},
		Timestamp: time.Now(),
		Version:   1,
		Metadata: map[string]any{
			store.MetaExecutionID: "exec-1",
			store.MetaThreadID:    "thread-1",
		},
	}

	stateJSON, _ := json.Marshal(cp.State)
	metadataJSON, _ := json.Marshal(cp.Metadata)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO checkpoints")).
		WithArgs(cp.ID, "exec-1", "thread-1", cp.NodeName, stateJSON, metadataJSON, cp.Timestamp, cp.Version).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Save(context.Background(), cp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Save_MarshalError(t *testing.T) {
	s, _ := newMockStore(t)

	err := s.Save(context.Background(), &store.Checkpoint{ID: "cp-1", State: make(chan int)})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal state")
}

func TestPostgresCheckpointStore_Load(t *testing.T) {
	s, mock := newMockStore(t)

	stateJSON, _ := json.Marshal(map[string]any{"greeting": "Hello, Alice!"})
	metadataJSON, _ := json.Marshal(map[string]any{store.MetaExecutionID: "exec-1"})

	rows := pgxmock.NewRows([]string{"id", "node_name", "state", "metadata", "timestamp", "version"}).
		AddRow("cp-1", "greet", stateJSON, metadataJSON, time.Now(), 1)
	mock.ExpectQuery(regexp.QuoteMeta(selectByID)).WithArgs("cp-1").WillReturnRows(rows)

	loaded, err := s.Load(context.Background(), "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "greet", loaded.NodeName)
	assert.Equal(t, "Hello, Alice!", loaded.State.(map[string]any)["greeting"])
	assert.Equal(t, "exec-1", loaded.Metadata[store.MetaExecutionID])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_Load_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectByID)).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

		loaded, err := s.Load(context.Background(), "missing")
		assert.Nil(t, loaded)
		assert.True(t, errors.Is(err, store.ErrCheckpointNotFound))
	})

	t.Run("database error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectByID)).WithArgs("cp-1").WillReturnError(errors.New("connection refused"))

		_, err := s.Load(context.Background(), "cp-1")
		assert.ErrorContains(t, err, "failed to load checkpoint")
	})

	t.Run("invalid state json", func(t *testing.T) {
		s, mock := newMockStore(t)
		rows := pgxmock.NewRows([]string{"id", "node_name", "state", "metadata", "timestamp", "version"}).
			AddRow("cp-1", "greet", []byte("{invalid"), []byte("{}"), time.Now(), 1)
		mock.ExpectQuery(regexp.QuoteMeta(selectByID)).WithArgs("cp-1").WillReturnRows(rows)

		_, err := s.Load(context.Background(), "cp-1")
		assert.ErrorContains(t, err, "failed to unmarshal state")
	})
}

func TestPostgresCheckpointStore_List(t *testing.T) {
	s, mock := newMockStore(t)

	stateJSON, _ := json.Marshal("x")
	rows := pgxmock.NewRows([]string{"id", "node_name", "state", "metadata", "timestamp", "version"}).
		AddRow("a", "outline", stateJSON, []byte(nil), time.Now(), 1).
		AddRow("b", "draft", stateJSON, []byte(nil), time.Now(), 2)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE execution_id = $1 OR thread_id = $1 ORDER BY version ASC")).
		WithArgs("run").
		WillReturnRows(rows)

	list, err := s.List(context.Background(), "run")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "draft", list[1].NodeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCheckpointStore_DeleteAndClear(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM checkpoints WHERE id = $1")).
		WithArgs("cp-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM checkpoints WHERE execution_id = $1 OR thread_id = $1")).
		WithArgs("run").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, s.Delete(context.Background(), "cp-1"))
	require.NoError(t, s.Clear(context.Background(), "run"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
