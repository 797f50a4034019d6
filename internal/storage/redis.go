package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/royal-chronicle/pkg/world"
)

// AutosaveStore keeps the rolling autosave of each playthrough in Redis.
// One snapshot per playthrough; every save overwrites the last.
type AutosaveStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewAutosaveStore creates a Redis-backed autosave store.
func NewAutosaveStore(addr string, logger *slog.Logger) *AutosaveStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &AutosaveStore{
		client: rdb,
		logger: logger,
	}
}

// newAutosaveStoreWithClient is used by tests to inject a miniredis client.
func newAutosaveStoreWithClient(client *redis.Client, logger *slog.Logger) *AutosaveStore {
	return &AutosaveStore{client: client, logger: logger}
}

func autosaveKey(id uuid.UUID) string {
	return "autosave:" + id.String()
}

// Save overwrites the autosave for the snapshot's playthrough.
func (s *AutosaveStore) Save(ctx context.Context, snap *world.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("Failed to marshal snapshot", "playthrough", snap.ID, "error", err)
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, autosaveKey(snap.ID), data, 0).Err(); err != nil {
		s.logger.Error("Failed to save autosave", "playthrough", snap.ID, "error", err)
		return fmt.Errorf("failed to save autosave: %w", err)
	}
	return nil
}

// Load returns the autosave for a playthrough, or nil if there is none.
func (s *AutosaveStore) Load(ctx context.Context, id uuid.UUID) (*world.Snapshot, error) {
	data, err := s.client.Get(ctx, autosaveKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.logger.Error("Failed to load autosave", "playthrough", id, "error", err)
		return nil, fmt.Errorf("failed to load autosave: %w", err)
	}

	var snap world.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Error("Failed to unmarshal autosave", "playthrough", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal autosave: %w", err)
	}
	return &snap, nil
}

// Delete removes a playthrough's autosave.
func (s *AutosaveStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, autosaveKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete autosave: %w", err)
	}
	return nil
}

func (s *AutosaveStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *AutosaveStore) Close() error {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (s *AutosaveStore) WaitForConnection(ctx context.Context) error {
	const maxRetries = 30
	const retryDelay = 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := s.Ping(ctx); err != nil {
			s.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("redis not available after %d attempts", maxRetries)
}
