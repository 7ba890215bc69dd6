// Package redis stores checkpoints in Redis: one key per checkpoint plus a set
// per execution ID indexing its checkpoints.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/langgraphlab/store"
)

// RedisCheckpointStore implements store.CheckpointStore using Redis
type RedisCheckpointStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.CheckpointStore = (*RedisCheckpointStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "langgraphlab:"
	TTL      time.Duration // Expiration for checkpoints, default 0 (no expiration)
}

// NewRedisCheckpointStore creates a new Redis checkpoint store
func NewRedisCheckpointStore(opts RedisOptions) *RedisCheckpointStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisCheckpointStoreWithClient(client, opts.Prefix, opts.TTL)
}

// NewRedisCheckpointStoreWithClient uses an existing client.
func NewRedisCheckpointStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCheckpointStore {
	if prefix == "" {
		prefix = "langgraphlab:"
	}
	return &RedisCheckpointStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisCheckpointStore) checkpointKey(id string) string {
	return fmt.Sprintf("%scheckpoint:%s", s.prefix, id)
}

func (s *RedisCheckpointStore) executionKey(id string) string {
	return fmt.Sprintf("%sexecution:%s:checkpoints", s.prefix, id)
}

// Save stores a checkpoint and indexes it under every execution ID in its metadata.
func (s *RedisCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.checkpointKey(checkpoint.ID), data, s.ttl)

	for _, execID := range store.ExecutionIDs(checkpoint) {
		execKey := s.executionKey(execID)
		pipe.SAdd(ctx, execKey, checkpoint.ID)
		if s.ttl > 0 {
			pipe.Expire(ctx, execKey, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save checkpoint to redis: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by ID
func (s *RedisCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.checkpointKey(checkpointID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.NotFound(checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint from redis: %w", err)
	}

	var checkpoint store.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// List returns all checkpoints for a given execution ordered by version.
// Index entries whose checkpoint expired are skipped.
func (s *RedisCheckpointStore) List(ctx context.Context, executionID string) ([]*store.Checkpoint, error) {
	checkpointIDs, err := s.client.SMembers(ctx, s.executionKey(executionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints for execution %s: %w", executionID, err)
	}

	checkpoints := make([]*store.Checkpoint, 0, len(checkpointIDs))
	if len(checkpointIDs) == 0 {
		return checkpoints, nil
	}

	keys := make([]string, 0, len(checkpointIDs))
	for _, id := range checkpointIDs {
		keys = append(keys, s.checkpointKey(id))
	}

	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkpoints: %w", err)
	}

	for _, result := range results {
		data, ok := result.(string)
		if !ok {
			continue
		}
		var checkpoint store.Checkpoint
		if err := json.Unmarshal([]byte(data), &checkpoint); err != nil {
			continue
		}
		checkpoints = append(checkpoints, &checkpoint)
	}

	store.SortByVersion(checkpoints)
	return checkpoints, nil
}

// Delete removes a checkpoint and its index entries.
func (s *RedisCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	checkpoint, err := s.Load(ctx, checkpointID)
	if err != nil {
		if errors.Is(err, store.ErrCheckpointNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.checkpointKey(checkpointID))
	for _, execID := range store.ExecutionIDs(checkpoint) {
		pipe.SRem(ctx, s.executionKey(execID), checkpointID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoints for an execution
func (s *RedisCheckpointStore) Clear(ctx context.Context, executionID string) error {
	execKey := s.executionKey(executionID)
	checkpointIDs, err := s.client.SMembers(ctx, execKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get checkpoints for clearing: %w", err)
	}
	if len(checkpointIDs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, id := range checkpointIDs {
		pipe.Del(ctx, s.checkpointKey(id))
	}
	pipe.Del(ctx, execKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}
