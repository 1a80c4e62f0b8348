package bolt

import (
	"context"
	"fmt"

	"github.com/mfeltz/heatsync/internal/storage"
	"go.etcd.io/bbolt"
)

type credentialStore struct {
	db *bbolt.DB
}

// Get retrieves the stored credentials.
func (s *credentialStore) Get(ctx context.Context) (*storage.Credentials, error) {
	var creds storage.Credentials

	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		bucket := tx.Bucket([]byte(bucketCredentials))
		if bucket == nil {
			return storage.ErrNotFound
		}

		data := bucket.Get([]byte(keyCurrent))
		if data == nil {
			return storage.ErrNotFound
		}

		return unmarshal(data, &creds)
	})

	if err != nil {
		return nil, err
	}

	return &creds, nil
}

// Put writes the credentials as a single record, replacing any previous one.
func (s *credentialStore) Put(ctx context.Context, creds storage.Credentials) error {
	data, err := marshal(creds)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		bucket := tx.Bucket([]byte(bucketCredentials))
		if bucket == nil {
			return fmt.Errorf("credentials bucket not found")
		}

		return bucket.Put([]byte(keyCurrent), data)
	})
}

// Delete removes the stored credentials; a missing record is not an error.
func (s *credentialStore) Delete(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		bucket := tx.Bucket([]byte(bucketCredentials))
		if bucket == nil {
			return nil
		}

		return bucket.Delete([]byte(keyCurrent))
	})
}
