package port

import (
	"context"

	"caselaw/internal/domain"
)

// CaseStore persists case records keyed by their synthetic identifier.
type CaseStore interface {
	// Get returns domain.ErrNotFound when no record carries id.
	Get(ctx context.Context, id uint32) (domain.Case, error)

	Contains(ctx context.Context, id uint32) (bool, error)

	// PutBatch writes all records in one transaction. Either every record
	// becomes visible or none does.
	PutBatch(ctx context.Context, records []domain.Record) error

	// Scan calls fn for every record with ID >= from in ascending order.
	Scan(ctx context.Context, from uint32, fn func(domain.Record) error) error

	Count(ctx context.Context) (int, error)

	Close() error
}
