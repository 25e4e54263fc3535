package port

import (
	"context"

	"caselaw/internal/domain"
)

// PageCache memoizes search pages by a normalized request key.
type PageCache interface {
	// GetOrCompute returns the cached page for key, or runs fn once for all
	// concurrent callers sharing key. fn gets a context that keeps the values
	// of ctx but is not canceled with it, so one caller giving up does not
	// fail the others; each caller still stops waiting when its own ctx ends.
	// The bool reports a cache hit.
	GetOrCompute(ctx context.Context, key string, fn func(context.Context) (*domain.SearchPage, error)) (*domain.SearchPage, bool, error)

	Invalidate(ctx context.Context) error
}
