package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselaw/internal/adapter/cache"
	"caselaw/internal/adapter/memstore"
	"caselaw/internal/domain"
)

// recordingIndex is an IndexWriter that keeps everything in memory.
type recordingIndex struct {
	mu         sync.Mutex
	staged     []uint32
	committed  []uint32
	commits    []uint32
	checkpoint uint32
	failAdd    error
}

func (r *recordingIndex) Add(_ context.Context, rec domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAdd != nil {
		return r.failAdd
	}
	r.staged = append(r.staged, rec.ID)
	return nil
}

func (r *recordingIndex) Commit(_ context.Context, lastID uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, r.staged...)
	r.staged = nil
	r.commits = append(r.commits, lastID)
	r.checkpoint = lastID
	return nil
}

func (r *recordingIndex) Checkpoint(context.Context) (uint32, error) {
	return r.checkpoint, nil
}

func (r *recordingIndex) DocCount() (uint64, error) {
	return uint64(len(r.committed)), nil
}

func storeWith(t *testing.T, n int) *memstore.MemoryStore {
	t.Helper()
	st := memstore.NewMemoryStore()
	recs := make([]domain.Record, 0, n)
	for id := 1; id <= n; id++ {
		recs = append(recs, domain.Record{ID: uint32(id), Case: domain.Case{CaseName: "case"}})
	}
	require.NoError(t, st.PutBatch(context.Background(), recs))
	return st
}

func TestIndex_CommitsEveryN(t *testing.T) {
	st := storeWith(t, 7)
	idx := &recordingIndex{}

	var last, total int
	res, err := NewIndexUseCase(st, idx, 3, nil, nil).Index(context.Background(), false, func(p, tot int, _ string) {
		last, total = p, tot
	})
	require.NoError(t, err)

	assert.Equal(t, []uint32{3, 6, 7}, idx.commits)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6, 7}, idx.committed)
	assert.Equal(t, 7, res.Indexed)
	assert.Equal(t, 3, res.Commits)
	assert.Equal(t, uint64(7), res.DocCount)
	assert.Equal(t, 7, last)
	assert.Equal(t, 7, total)
}

func TestIndex_ResumeFromCheckpoint(t *testing.T) {
	st := storeWith(t, 5)
	idx := &recordingIndex{checkpoint: 3}

	res, err := NewIndexUseCase(st, idx, 10, nil, nil).Index(context.Background(), true, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), res.ResumedAfter)
	assert.Equal(t, []uint32{4, 5}, idx.committed)
	assert.Equal(t, uint32(5), idx.checkpoint)
}

func TestIndex_WithoutResumeStartsOver(t *testing.T) {
	st := storeWith(t, 3)
	idx := &recordingIndex{checkpoint: 3}

	res, err := NewIndexUseCase(st, idx, 10, nil, nil).Index(context.Background(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Indexed)
	assert.Equal(t, []uint32{1, 2, 3}, idx.committed)
}

func TestIndex_AddFailureStopsPipeline(t *testing.T) {
	st := storeWith(t, 1000)
	boom := errors.New("boom")
	idx := &recordingIndex{failAdd: boom}

	_, err := NewIndexUseCase(st, idx, 10, nil, nil).Index(context.Background(), false, nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, idx.commits)
}

func TestIndex_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	st := storeWith(t, 2)
	qc := cache.NewQueryCache(10, 0)
	qc.Put("k", &domain.SearchPage{Query: "stale"})

	_, err := NewIndexUseCase(st, &recordingIndex{}, 10, qc, nil).Index(ctx, false, nil)
	require.NoError(t, err)
	_, ok := qc.Get("k")
	assert.False(t, ok)
}

func TestIndex_RealIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memstore.NewMemoryStore()
	require.NoError(t, st.PutBatch(ctx, []domain.Record{
		{ID: 1, Case: domain.Case{CaseName: "contract breach", JudgmentDate: "2019-05-20"}},
		{ID: 2, Case: domain.Case{CaseName: "traffic accident", JudgmentDate: "2020-01-02"}},
		{ID: 3, Case: domain.Case{CaseName: "contract renewal", JudgmentDate: "2020-03-04"}},
	}))
	idx := newBleveIndex(t)

	res, err := NewIndexUseCase(st, idx, 2, nil, nil).Index(ctx, false, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.DocCount)

	cp, err := idx.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cp)

	total, hits, err := idx.Search(ctx, "contract year:2020", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, []uint32{3}, hitIDs(hits))

	// Resuming with nothing new indexes nothing.
	res, err = NewIndexUseCase(st, idx, 2, nil, nil).Index(ctx, true, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Indexed)
}
