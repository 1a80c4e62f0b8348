package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mfeltz/heatsync/internal/storage"
	"github.com/redis/go-redis/v9"
)

type credentialStore struct {
	client *redis.Client
}

// Get retrieves the stored credentials.
func (s *credentialStore) Get(ctx context.Context) (*storage.Credentials, error) {
	data, err := s.client.Get(ctx, keyCredentials).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	var creds storage.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}

	return &creds, nil
}

// Put writes the credentials with a single SET.
func (s *credentialStore) Put(ctx context.Context, creds storage.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if err := s.client.Set(ctx, keyCredentials, data, 0).Err(); err != nil {
		return fmt.Errorf("put credentials: %w", err)
	}
	return nil
}

// Delete removes the stored credentials; a missing record is not an error.
func (s *credentialStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, keyCredentials).Err(); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}
