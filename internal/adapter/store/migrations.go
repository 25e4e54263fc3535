package store

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current record layout version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var keySchemaVersion = []byte("schema_version")

// SchemaVersion returns the layout version recorded in the store, 0 for a
// store that predates versioning.
func (s *BoltStore) SchemaVersion() (int, error) {
	var v int
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if len(data) == 4 {
			v = int(binary.BigEndian.Uint32(data))
		}
		return nil
	})
	return v, err
}

func (s *BoltStore) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("store created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		data := make([]byte, 4)
		binary.BigEndian.PutUint32(data, CurrentSchemaVersion)
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
}

func (s *BoltStore) runMigration(from, to int) error {
	switch {
	case from == 0 && to == 1:
		// v1 introduced the meta bucket; nothing to rewrite.
		return nil
	default:
		return nil
	}
}
