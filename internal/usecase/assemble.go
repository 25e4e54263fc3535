package usecase

import (
	"context"
	"errors"
	"fmt"

	"caselaw/internal/adapter/textnorm"
	"caselaw/internal/domain"
	"caselaw/internal/logger"
	"caselaw/internal/port"
)

// DefaultPreviewChars is the preview length in characters.
const DefaultPreviewChars = 240

// Assembler resolves ranked hits against the document store.
type Assembler struct {
	store        port.CaseStore
	previewChars int
}

func NewAssembler(store port.CaseStore, previewChars int) *Assembler {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	return &Assembler{store: store, previewChars: previewChars}
}

// Assemble fetches the case behind every hit, keeping rank order and the
// first occurrence of a repeated identifier. Identifiers missing from the
// store are logged and left out.
func (a *Assembler) Assemble(ctx context.Context, hits []domain.Hit) ([]domain.CaseResult, error) {
	log := logger.FromContext(ctx).With("component", "assemble")
	seen := make(map[uint32]struct{}, len(hits))
	results := make([]domain.CaseResult, 0, len(hits))

	for _, h := range hits {
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}

		c, err := a.store.Get(ctx, h.ID)
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("indexed case missing from store", "id", h.ID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load case %d: %w", h.ID, err)
		}
		results = append(results, domain.CaseResult{
			ID:      h.ID,
			Score:   h.Score,
			Preview: textnorm.Preview(c.FullText, a.previewChars),
			Case:    c,
		})
	}
	return results, nil
}

// Case returns the detail view of one case.
func (a *Assembler) Case(ctx context.Context, id uint32) (domain.Case, error) {
	if id == 0 {
		return domain.Case{}, domain.ErrNotFound
	}
	c, err := a.store.Get(ctx, id)
	if err != nil {
		return domain.Case{}, err
	}
	return textnorm.DisplayCase(c), nil
}
