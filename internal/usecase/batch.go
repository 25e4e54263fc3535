package usecase

import (
	"context"
	"fmt"

	"caselaw/internal/domain"
	"caselaw/internal/port"
)

// DefaultBatchSize is the number of records committed per store transaction.
const DefaultBatchSize = 10240

// BatchWriter buffers records and writes them to the store one transaction
// per batch. A failed batch is returned to the caller and never retried.
type BatchWriter struct {
	store    port.CaseStore
	size     int
	buf      []domain.Record
	written  int
	onCommit func(records int, lastID uint32, err error)
}

func NewBatchWriter(store port.CaseStore, size int) *BatchWriter {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &BatchWriter{
		store: store,
		size:  size,
		buf:   make([]domain.Record, 0, size),
	}
}

// OnCommit registers fn to be called after every batch write attempt.
func (w *BatchWriter) OnCommit(fn func(records int, lastID uint32, err error)) {
	w.onCommit = fn
}

// Add buffers rec and commits the batch once it is full.
func (w *BatchWriter) Add(ctx context.Context, rec domain.Record) error {
	w.buf = append(w.buf, rec)
	if len(w.buf) >= w.size {
		return w.Flush(ctx)
	}
	return nil
}

// Flush commits the buffered records, if any.
func (w *BatchWriter) Flush(ctx context.Context) error {
	if len(w.buf) == 0 {
		return nil
	}
	n, last := len(w.buf), w.buf[len(w.buf)-1].ID

	err := w.store.PutBatch(ctx, w.buf)
	if w.onCommit != nil {
		w.onCommit(n, last, err)
	}
	if err != nil {
		return fmt.Errorf("failed to commit batch ending at record %d: %w", last, err)
	}
	w.written += n
	w.buf = w.buf[:0]
	return nil
}

// Pending returns the number of buffered, uncommitted records.
func (w *BatchWriter) Pending() int {
	return len(w.buf)
}

// Written returns the number of records committed so far.
func (w *BatchWriter) Written() int {
	return w.written
}
