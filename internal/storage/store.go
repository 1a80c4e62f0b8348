package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Store represents the root storage interface. Backends must guarantee
// record-level atomicity: a partially written Credentials or SyncSnapshot
// must never be observable.
type Store interface {
	Close() error
	Credentials() CredentialStore
	Snapshots() SnapshotStore
}

// CredentialStore persists OAuth credentials as a single record.
// Confidentiality at rest is the backend's responsibility.
type CredentialStore interface {
	Get(ctx context.Context) (*Credentials, error)
	Put(ctx context.Context, creds Credentials) error
	// Delete removes stored credentials. Deleting credentials that do not
	// exist is not an error.
	Delete(ctx context.Context) error
}

// SnapshotStore persists the last computed sync snapshot.
type SnapshotStore interface {
	Get(ctx context.Context) (*SyncSnapshot, error)
	// Replace overwrites the snapshot wholesale. Levels from a previous
	// snapshot never survive a Replace.
	Replace(ctx context.Context, snap SyncSnapshot) error
	Delete(ctx context.Context) error
}
