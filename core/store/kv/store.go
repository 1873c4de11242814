package kv

import (
	"go.dedis.ch/opcore/core/store"
	"golang.org/x/xerrors"
)

// Store exposes a bucket of the database as the committed ledger state.
//
// - implements store.Readable
type Store struct {
	db     DB
	bucket []byte
}

// NewStore returns a store reading and writing the given bucket. The bucket is
// created if it does not exist yet.
func NewStore(db DB, bucket []byte) (Store, error) {
	err := db.Update(bucket, func(Bucket) error { return nil })
	if err != nil {
		return Store{}, xerrors.Errorf("failed to prepare bucket: %v", err)
	}

	s := Store{
		db:     db,
		bucket: bucket,
	}

	return s, nil
}

// Get implements store.Readable. It returns a copy of the value, or nil when
// the key does not exist.
func (s Store) Get(key []byte) ([]byte, error) {
	var value []byte

	err := s.db.View(s.bucket, func(b Bucket) error {
		raw := b.Get(key)
		if raw != nil {
			value = append([]byte{}, raw...)
		}

		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to read db: %v", err)
	}

	return value, nil
}

// Commit writes the changes produced by the function atomically. Nothing is
// written if the function returns an error.
func (s Store) Commit(fn func(store.Writable) error) error {
	err := s.db.Update(s.bucket, func(b Bucket) error {
		return fn(b)
	})
	if err != nil {
		return xerrors.Errorf("failed to commit: %v", err)
	}

	return nil
}
