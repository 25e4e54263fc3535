package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"caselaw/config"
	"caselaw/internal/adapter/analyzer"
	"caselaw/internal/adapter/index"
	"caselaw/internal/adapter/schema"
	"caselaw/internal/domain"
)

// captureLogs routes the default logger into a buffer for the rest of the
// test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	buf := &bytes.Buffer{}
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func newBleveIndex(t *testing.T) *index.BleveIndex {
	t.Helper()
	sw, err := analyzer.LoadStopwords("")
	require.NoError(t, err)
	s := schema.New(schema.Options{
		DateParts: true,
		Boosts:    map[string]float64{"case_id": 9, "case_name": 3},
	})
	idx, err := index.Open(filepath.Join(t.TempDir(), "index"), s, index.Analysis{Stopwords: sw, MaxTokenLen: 40}, index.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func testQueryConfig() config.QueryConfig {
	return config.DefaultConfig().Query
}

// fakeSearcher serves a fixed hit list and records the requests it saw.
type fakeSearcher struct {
	mu    sync.Mutex
	hits  []domain.Hit
	err   error
	calls []searchCall
}

type searchCall struct {
	text          string
	limit, offset int
}

func (f *fakeSearcher) Search(_ context.Context, text string, limit, offset int) (uint64, []domain.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{text, limit, offset})
	if f.err != nil {
		return 0, nil, f.err
	}
	total := uint64(len(f.hits))
	if offset >= len(f.hits) {
		return total, nil, nil
	}
	end := offset + limit
	if end > len(f.hits) {
		end = len(f.hits)
	}
	return total, f.hits[offset:end], nil
}

func (f *fakeSearcher) SearchSimilar(ctx context.Context, text string, limit, offset int) (uint64, []domain.Hit, error) {
	return f.Search(ctx, text, limit, offset)
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
