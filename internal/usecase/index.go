package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"caselaw/internal/domain"
	"caselaw/internal/logger"
	"caselaw/internal/metrics"
	"caselaw/internal/port"
)

// DefaultCommitEvery is the number of documents per index commit.
const DefaultCommitEvery = 10000

// IndexUseCase feeds stored cases into the search index.
type IndexUseCase struct {
	store       port.CaseStore
	index       port.IndexWriter
	commitEvery int
	cache       port.PageCache
	metrics     *metrics.Metrics
}

// NewIndexUseCase creates a new index use case. cache and m may be nil; a
// cache is invalidated once indexing finishes.
func NewIndexUseCase(
	store port.CaseStore,
	index port.IndexWriter,
	commitEvery int,
	cache port.PageCache,
	m *metrics.Metrics,
) *IndexUseCase {
	if commitEvery <= 0 {
		commitEvery = DefaultCommitEvery
	}
	return &IndexUseCase{
		store:       store,
		index:       index,
		commitEvery: commitEvery,
		cache:       cache,
		metrics:     m,
	}
}

// IndexResult contains the results of an indexing run.
type IndexResult struct {
	ResumedAfter uint32
	Indexed      int
	Commits      int
	LastID       uint32
	DocCount     uint64
	Duration     time.Duration
}

// Index scans the store in identifier order and indexes every record. With
// resume set it starts after the index checkpoint.
func (u *IndexUseCase) Index(ctx context.Context, resume bool, progress ProgressFunc) (*IndexResult, error) {
	start := time.Now()
	log := logger.WithComponent("index")
	result := &IndexResult{}

	from := uint32(1)
	if resume {
		cp, err := u.index.Checkpoint(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read index checkpoint: %w", err)
		}
		result.ResumedAfter = cp
		if cp == math.MaxUint32 {
			return u.finish(ctx, result, start)
		}
		from = cp + 1
	}

	total, err := u.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	log.Info("indexing started", "from", from, "records", total)

	records := make(chan domain.Record, 256)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(records)
		return u.store.Scan(gctx, from, func(rec domain.Record) error {
			select {
			case records <- rec:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	g.Go(func() error {
		pending := 0
		for rec := range records {
			if err := u.index.Add(gctx, rec); err != nil {
				return fmt.Errorf("failed to index record %d: %w", rec.ID, err)
			}
			pending++
			result.Indexed++
			result.LastID = rec.ID

			if pending >= u.commitEvery {
				if err := u.commit(gctx, result, pending); err != nil {
					return err
				}
				pending = 0
			}
			if progress != nil {
				progress(int(result.ResumedAfter)+result.Indexed, total, "")
			}
		}
		if pending > 0 {
			return u.commit(gctx, result, pending)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return u.finish(ctx, result, start)
}

func (u *IndexUseCase) commit(ctx context.Context, result *IndexResult, docs int) error {
	err := u.index.Commit(ctx, result.LastID)
	u.metrics.RecordCommit(docs, err)
	if err != nil {
		return err
	}
	result.Commits++
	logger.WithComponent("index").Info("index committed", "docs", docs, "last_id", result.LastID)
	return nil
}

func (u *IndexUseCase) finish(ctx context.Context, result *IndexResult, start time.Time) (*IndexResult, error) {
	log := logger.WithComponent("index")

	n, err := u.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count index documents: %w", err)
	}
	result.DocCount = n

	if u.cache != nil && result.Indexed > 0 {
		if err := u.cache.Invalidate(ctx); err != nil {
			log.Warn("query cache invalidation failed", "error", err)
		}
	}

	result.Duration = time.Since(start)
	log.Info("indexing done",
		"indexed", result.Indexed,
		"commits", result.Commits,
		"doc_count", result.DocCount,
		"elapsed", result.Duration,
	)
	return result, nil
}
