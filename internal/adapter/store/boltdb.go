package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"caselaw/internal/domain"
)

var (
	bucketCases = []byte("cases")
	bucketMeta  = []byte("meta")
)

// DefaultLockTimeout bounds the wait for another process to release the
// database file.
const DefaultLockTimeout = 5 * time.Second

// BoltStore keeps case records in a single bbolt bucket.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens or creates the store at path. A file held by another
// process for longer than lockTimeout is reported as locked; lockTimeout <= 0
// means DefaultLockTimeout.
func NewBoltStore(path string, lockTimeout time.Duration) (*BoltStore, error) {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: lockTimeout})
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, fmt.Errorf("document store %s is locked by another process: %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketCases, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) Get(_ context.Context, id uint32) (domain.Case, error) {
	var c domain.Case
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCases).Get(EncodeKey(id))
		if data == nil {
			return fmt.Errorf("%w: %d", domain.ErrNotFound, id)
		}
		var err error
		c, err = DecodeCase(data)
		return err
	})
	return c, err
}

func (s *BoltStore) Contains(_ context.Context, id uint32) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketCases).Get(EncodeKey(id)) != nil
		return nil
	})
	return found, err
}

// PutBatch writes all records in a single transaction. Any failure rolls the
// whole batch back.
func (s *BoltStore) PutBatch(_ context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCases)
		for _, rec := range records {
			if rec.ID == 0 {
				return domain.ErrInvalidID
			}
			if err := b.Put(EncodeKey(rec.ID), EncodeCase(rec.Case)); err != nil {
				return fmt.Errorf("failed to put case %d: %w", rec.ID, err)
			}
		}
		return nil
	})
}

func (s *BoltStore) Scan(ctx context.Context, from uint32, fn func(domain.Record) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketCases).Cursor()
		for k, v := c.Seek(EncodeKey(from)); k != nil; k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := DecodeKey(k)
			if err != nil {
				return err
			}
			cs, err := DecodeCase(v)
			if err != nil {
				return fmt.Errorf("failed to decode case %d: %w", id, err)
			}
			if err := fn(domain.Record{ID: id, Case: cs}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Count(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketCases).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
