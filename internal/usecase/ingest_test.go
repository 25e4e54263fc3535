package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselaw/internal/adapter/corpus"
	"caselaw/internal/adapter/corpus/corpustest"
	"caselaw/internal/adapter/memstore"
	"caselaw/internal/domain"
	"caselaw/internal/metrics"
)

func threeRowCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	corpustest.WriteArchive(t, filepath.Join(root, "2021", "cases.zip"), corpustest.Entry{
		Name: "cases.csv",
		Cases: []domain.Case{
			{DocID: "https://wenshu.example/detail?docId=aaa", CaseID: "(2021)A1", CaseName: "loan dispute", FullText: "first  judgment"},
			{DocID: "https://wenshu.example/detail?docId=bbb", CaseID: "(2021)A2", CaseName: "loan dispute retrial"},
			{DocID: "https://wenshu.example/detail?docId=ccc", CaseID: "(2021)A3", CaseName: " loan dispute appeal ", Parties: ",alice,bob,"},
		},
	})
	return root
}

func TestIngest_EndToEnd(t *testing.T) {
	logs := captureLogs(t)
	ctx := context.Background()
	root := threeRowCorpus(t)

	st := memstore.NewMemoryStore()
	require.NoError(t, st.PutBatch(ctx, []domain.Record{{ID: 2, Case: domain.Case{CaseName: "lease"}}}))

	m := metrics.New(nil)
	uc := NewIngestUseCase(st, corpus.NewReader("", ""), 2, m)

	var progressed int
	res, err := uc.Ingest(ctx, root, func(processed, total int, _ string) {
		progressed = processed
		assert.Equal(t, -1, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, uint32(3), res.LastID)
	assert.Equal(t, 3, progressed)
	assert.Len(t, res.RunID, 26)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, strings.Count(logs.String(), "skipping existing record"))

	// The stored id 2 keeps its original content.
	c, err := st.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "lease", c.CaseName)

	// Rows were normalized on the way in.
	c, err = st.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "aaa", c.DocID)
	assert.Equal(t, "<p>first</p><p>judgment</p>", c.FullText)
	c, err = st.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "loan dispute appeal", c.CaseName)

	idx := newBleveIndex(t)
	_, err = NewIndexUseCase(st, idx, 10, nil, m).Index(ctx, false, nil)
	require.NoError(t, err)

	engine := NewQueryEngine(idx, testQueryConfig())
	page, err := engine.Search(ctx, SearchRequest{Text: "loan"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), page.Total)
	assert.ElementsMatch(t, []uint32{1, 3}, hitIDs(page.Hits))
}

func TestIngest_Idempotent(t *testing.T) {
	ctx := context.Background()
	root := threeRowCorpus(t)
	st := memstore.NewMemoryStore()
	uc := NewIngestUseCase(st, corpus.NewReader("", ""), 10, nil)

	first, err := uc.Ingest(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)

	snapshot := map[uint32]domain.Case{}
	for id := uint32(1); id <= 3; id++ {
		c, err := st.Get(ctx, id)
		require.NoError(t, err)
		snapshot[id] = c
	}

	second, err := uc.Ingest(ctx, root, nil)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 3, second.Skipped)
	assert.Zero(t, second.Batches)
	assert.NotEqual(t, first.RunID, second.RunID)

	n, _ := st.Count(ctx)
	assert.Equal(t, 3, n)
	for id, want := range snapshot {
		got, err := st.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIngest_ResumesAfterInterruptedRun(t *testing.T) {
	ctx := context.Background()
	root := threeRowCorpus(t)
	st := memstore.NewMemoryStore()

	// A run that committed only the first batch.
	require.NoError(t, st.PutBatch(ctx, []domain.Record{
		{ID: 1, Case: domain.Case{CaseName: "loan dispute"}},
	}))

	res, err := NewIngestUseCase(st, corpus.NewReader("", ""), 10, nil).Ingest(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Inserted)

	n, _ := st.Count(ctx)
	assert.Equal(t, 3, n)
}

func TestIngest_CommitFailureAborts(t *testing.T) {
	st := memstore.NewMemoryStore()
	st.FailPut = errors.New("disk full")

	_, err := NewIngestUseCase(st, corpus.NewReader("", ""), 2, nil).Ingest(context.Background(), threeRowCorpus(t), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, st.FailPut)
}

func TestIngest_DecodeErrorAborts(t *testing.T) {
	root := t.TempDir()
	corpustest.WriteArchive(t, filepath.Join(root, "bad.zip"), corpustest.Entry{
		Name: "bad.csv",
		Raw:  "案号,案件名称\nx,y\n",
	})

	_, err := NewIngestUseCase(memstore.NewMemoryStore(), corpus.NewReader("", ""), 2, nil).Ingest(context.Background(), root, nil)
	var de *corpus.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "bad.csv", de.Entry)
	assert.Equal(t, 1, de.Line)
}

func hitIDs(hits []domain.Hit) []uint32 {
	ids := make([]uint32, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	return ids
}
