package port

import (
	"context"

	"caselaw/internal/domain"
)

// KeywordSearcher executes parsed keyword queries against the inverted index.
type KeywordSearcher interface {
	// Search returns the exact match count and the hits in [offset, offset+limit).
	Search(ctx context.Context, text string, limit, offset int) (uint64, []domain.Hit, error)
}

// VectorSearcher ranks cases by embedding similarity. No implementation ships
// with this module; the query engine only accepts vector mode when one is
// supplied.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, text string, limit, offset int) (uint64, []domain.Hit, error)
}

// IndexWriter feeds records into the inverted index.
type IndexWriter interface {
	// Add stages a record. Staged records become searchable on Commit.
	Add(ctx context.Context, rec domain.Record) error

	// Commit makes staged records visible and records lastID as the checkpoint.
	Commit(ctx context.Context, lastID uint32) error

	// Checkpoint returns the last committed identifier, 0 when none.
	Checkpoint(ctx context.Context) (uint32, error)

	DocCount() (uint64, error)
}
