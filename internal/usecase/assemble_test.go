package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselaw/internal/adapter/memstore"
	"caselaw/internal/adapter/textnorm"
	"caselaw/internal/domain"
)

func TestAssemble_DedupAndMisses(t *testing.T) {
	logs := captureLogs(t)
	ctx := context.Background()
	st := memstore.NewMemoryStore()
	require.NoError(t, st.PutBatch(ctx, []domain.Record{
		{ID: 1, Case: domain.Case{CaseName: "one", FullText: "<p>alpha</p><p>beta</p>"}},
		{ID: 3, Case: domain.Case{CaseName: "three"}},
	}))

	hits := []domain.Hit{{ID: 3, Score: 9}, {ID: 2, Score: 5}, {ID: 1, Score: 4}, {ID: 3, Score: 1}}
	results, err := NewAssembler(st, 0).Assemble(ctx, hits)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, uint32(3), results[0].ID)
	assert.Equal(t, 9.0, results[0].Score)
	assert.Equal(t, uint32(1), results[1].ID)
	assert.Equal(t, "alpha beta", results[1].Preview)
	assert.Contains(t, logs.String(), "indexed case missing from store")
}

func TestAssemble_PreviewLength(t *testing.T) {
	ctx := context.Background()
	st := memstore.NewMemoryStore()
	long := strings.Repeat("判", 300)
	require.NoError(t, st.PutBatch(ctx, []domain.Record{{ID: 1, Case: domain.Case{FullText: "<p>" + long + "</p>"}}}))

	results, err := NewAssembler(st, 240).Assemble(ctx, []domain.Hit{{ID: 1}})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("判", 240), results[0].Preview)
}

func TestCase_DetailView(t *testing.T) {
	ctx := context.Background()
	st := memstore.NewMemoryStore()
	require.NoError(t, st.PutBatch(ctx, []domain.Record{{ID: 7, Case: domain.Case{
		Parties:    ",甲,乙,",
		LegalBasis: "第一条,第二条",
		FullText:   `<div>noise</div><div class="c_header">判决书</div>`,
	}}}))
	a := NewAssembler(st, 0)

	c, err := a.Case(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "甲，乙", c.Parties)
	assert.Equal(t, "第一条，第二条", c.LegalBasis)
	assert.Equal(t, `<div class="c_header">判决书</div>`, c.FullText)

	_, err = a.Case(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = a.Case(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssemble_NormalizedSourceMarkup(t *testing.T) {
	ctx := context.Background()
	st := memstore.NewMemoryStore()
	c := domain.Case{
		CaseName: "盗窃案",
		FullText: `<div class="nav">导航</div><div class="c_header">某某法院 刑事判决书</div> <div>本院认为 被告人</div>`,
	}
	textnorm.NormalizeCase(&c)
	require.NoError(t, st.PutBatch(ctx, []domain.Record{{ID: 1, Case: c}}))
	a := NewAssembler(st, 240)

	results, err := a.Assemble(ctx, []domain.Hit{{ID: 1}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "导航 某某法院 刑事判决书 本院认为 被告人", results[0].Preview)

	detail, err := a.Case(ctx, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(detail.FullText, `<div class="c_header"><p>某某法院</p>`), detail.FullText)
	assert.NotContains(t, detail.FullText, "导航")
}
