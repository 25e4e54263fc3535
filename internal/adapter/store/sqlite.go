package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"caselaw/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cases (
	id   INTEGER PRIMARY KEY,
	body BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore keeps case records in a SQLite table, one row per case, with
// the same binary encoding as BoltStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens path with WAL journaling enabled.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprint(CurrentSchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id uint32) (domain.Case, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM cases WHERE id = ?`, int64(id)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Case{}, fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Case{}, err
	}
	return DecodeCase(body)
}

func (s *SQLiteStore) Contains(ctx context.Context, id uint32) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM cases WHERE id = ?`, int64(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PutBatch writes all records in one transaction; any failure rolls it back.
func (s *SQLiteStore) PutBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO cases (id, body) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.ID == 0 {
			return domain.ErrInvalidID
		}
		if _, err := stmt.ExecContext(ctx, int64(rec.ID), EncodeCase(rec.Case)); err != nil {
			return fmt.Errorf("failed to put case %d: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Scan(ctx context.Context, from uint32, fn func(domain.Record) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, body FROM cases WHERE id >= ? ORDER BY id`, int64(from))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return err
		}
		c, err := DecodeCase(body)
		if err != nil {
			return fmt.Errorf("failed to decode case %d: %w", id, err)
		}
		if err := fn(domain.Record{ID: uint32(id), Case: c}); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cases`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
