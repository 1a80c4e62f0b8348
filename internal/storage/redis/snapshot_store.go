package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mfeltz/heatsync/internal/storage"
	"github.com/redis/go-redis/v9"
)

type snapshotStore struct {
	client *redis.Client
}

// Get retrieves the last stored snapshot.
func (s *snapshotStore) Get(ctx context.Context) (*storage.SyncSnapshot, error) {
	data, err := s.client.Get(ctx, keySnapshot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap storage.SyncSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snap, nil
}

// Replace overwrites the snapshot with a single SET.
func (s *snapshotStore) Replace(ctx context.Context, snap storage.SyncSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, keySnapshot, data, 0).Err(); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Delete removes the stored snapshot; a missing record is not an error.
func (s *snapshotStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, keySnapshot).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
