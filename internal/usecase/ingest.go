package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"caselaw/internal/adapter/corpus"
	"caselaw/internal/adapter/textnorm"
	"caselaw/internal/domain"
	"caselaw/internal/logger"
	"caselaw/internal/metrics"
	"caselaw/internal/port"
)

// ProgressFunc reports progress. total is -1 when it is not known up front.
type ProgressFunc func(processed, total int, current string)

// IngestUseCase loads the raw corpus into the document store.
type IngestUseCase struct {
	store     port.CaseStore
	reader    *corpus.Reader
	batchSize int
	metrics   *metrics.Metrics
}

// NewIngestUseCase creates a new ingest use case. m may be nil.
func NewIngestUseCase(store port.CaseStore, reader *corpus.Reader, batchSize int, m *metrics.Metrics) *IngestUseCase {
	return &IngestUseCase{
		store:     store,
		reader:    reader,
		batchSize: batchSize,
		metrics:   m,
	}
}

// IngestResult contains the results of an ingestion run.
type IngestResult struct {
	RunID    string
	Rows     int
	Inserted int
	Skipped  int
	Batches  int
	LastID   uint32
	Duration time.Duration
}

// Ingest walks every archive under root in corpus order. Rows whose
// identifier is already stored are skipped, the rest are normalized and
// written in batches. Any read, decode or commit error aborts the run;
// batches committed before the failure stay in place and are skipped by the
// next run.
func (u *IngestUseCase) Ingest(ctx context.Context, root string, progress ProgressFunc) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{RunID: ulid.Make().String()}

	ctx = logger.WithRunID(ctx, result.RunID)
	log := logger.FromContext(ctx).With("component", "ingest")

	resumer := NewResumer(u.store, log)
	writer := NewBatchWriter(u.store, u.batchSize)
	writer.OnCommit(func(records int, lastID uint32, err error) {
		u.metrics.RecordBatch(err)
		if err != nil {
			log.Error("batch commit failed", "records", records, "last_id", lastID, "error", err)
			return
		}
		result.Batches++
		u.metrics.RecordIngest("inserted", records)
		log.Info("batch committed", "records", records, "last_id", lastID)
	})

	log.Info("ingestion started", "root", root)

	var archive, entry string
	err := u.reader.Walk(ctx, root, func(row corpus.Row) error {
		if row.Archive != archive {
			archive, entry = row.Archive, ""
			log.Info("scanning archive", "archive", archive)
		}
		if row.Entry != entry {
			entry = row.Entry
			log.Debug("reading entry", "archive", archive, "entry", entry)
		}
		result.Rows++

		id, exists, err := resumer.Next(ctx)
		if err != nil {
			return err
		}
		if exists {
			result.Skipped++
			u.metrics.RecordIngest("skipped", 1)
		} else {
			c := row.Case
			textnorm.NormalizeCase(&c)
			if err := writer.Add(ctx, domain.Record{ID: id, Case: c}); err != nil {
				return err
			}
			result.Inserted++
			result.LastID = id
		}

		if progress != nil {
			progress(result.Rows, -1, filepath.Base(archive))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingestion aborted after %d rows: %w", result.Rows, err)
	}
	if err := writer.Flush(ctx); err != nil {
		return nil, fmt.Errorf("ingestion aborted after %d rows: %w", result.Rows, err)
	}

	result.Duration = time.Since(start)
	log.Info("ingestion done",
		"rows", result.Rows,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"batches", result.Batches,
		"elapsed", result.Duration,
	)
	return result, nil
}
