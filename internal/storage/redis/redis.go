package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/mfeltz/heatsync/internal/config"
	"github.com/mfeltz/heatsync/internal/storage"
	"github.com/redis/go-redis/v9"
)

const (
	keyCredentials = "heatsync:credentials"
	keySnapshot    = "heatsync:snapshot"
)

// Store implements the storage.Store interface using Redis. Each record is
// a single JSON string written with one SET, which gives the required
// all-or-nothing write semantics.
type Store struct {
	client *redis.Client
}

// Open creates a new Redis-backed storage instance
func Open(cfg config.RedisConfig) (*Store, error) {
	dialTimeout, err := time.ParseDuration(cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid dial_timeout: %w", err)
	}

	readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid read_timeout: %w", err)
	}

	writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid write_timeout: %w", err)
	}

	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &Store{client: client}, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Credentials returns the credential store.
func (s *Store) Credentials() storage.CredentialStore { return &credentialStore{client: s.client} }

// Snapshots returns the snapshot store.
func (s *Store) Snapshots() storage.SnapshotStore { return &snapshotStore{client: s.client} }
