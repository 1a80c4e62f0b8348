package bolt

import (
	"context"
	"fmt"

	"github.com/mfeltz/heatsync/internal/storage"
	"go.etcd.io/bbolt"
)

type snapshotStore struct {
	db *bbolt.DB
}

// Get retrieves the last stored snapshot.
func (s *snapshotStore) Get(ctx context.Context) (*storage.SyncSnapshot, error) {
	var snap storage.SyncSnapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return storage.ErrNotFound
		}

		data := bucket.Get([]byte(keyCurrent))
		if data == nil {
			return storage.ErrNotFound
		}

		return unmarshal(data, &snap)
	})

	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// Replace overwrites the snapshot wholesale in a single transaction.
func (s *snapshotStore) Replace(ctx context.Context, snap storage.SyncSnapshot) error {
	data, err := marshal(snap)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		return bucket.Put([]byte(keyCurrent), data)
	})
}

// Delete removes the stored snapshot; a missing record is not an error.
func (s *snapshotStore) Delete(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return nil
		}

		return bucket.Delete([]byte(keyCurrent))
	})
}
