package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"caselaw/internal/port"
)

// ErrIDSpaceExhausted is returned when the corpus holds more rows than a
// uint32 identifier can address.
var ErrIDSpaceExhausted = errors.New("identifier space exhausted")

// Resumer hands out identifiers in corpus order and reports which of them
// are already stored, so an interrupted ingestion can restart from scratch
// without duplicating records.
type Resumer struct {
	store   port.CaseStore
	last    uint64
	skipped int
	log     *slog.Logger
}

func NewResumer(store port.CaseStore, log *slog.Logger) *Resumer {
	if log == nil {
		log = slog.Default()
	}
	return &Resumer{store: store, log: log}
}

// Next consumes the next identifier. exists is true when the store already
// holds it; the caller must then skip the row.
func (r *Resumer) Next(ctx context.Context) (id uint32, exists bool, err error) {
	if r.last >= math.MaxUint32 {
		return 0, false, ErrIDSpaceExhausted
	}
	r.last++
	id = uint32(r.last)

	exists, err = r.store.Contains(ctx, id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check record %d: %w", id, err)
	}
	if exists {
		r.skipped++
		r.log.Debug("skipping existing record", "id", id)
	}
	return id, exists, nil
}

// Skipped returns how many identifiers were found already stored.
func (r *Resumer) Skipped() int {
	return r.skipped
}
