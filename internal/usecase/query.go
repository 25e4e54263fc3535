package usecase

import (
	"context"
	"strings"
	"time"

	"caselaw/config"
	"caselaw/internal/adapter/cache"
	"caselaw/internal/adapter/textnorm"
	"caselaw/internal/domain"
	"caselaw/internal/logger"
	"caselaw/internal/metrics"
	"caselaw/internal/port"
)

// SearchRequest is one query as submitted by a user.
type SearchRequest struct {
	Text   string
	Offset int
	Export bool
	Mode   domain.QueryMode
}

// QueryEngine turns user requests into ranked pages of identifiers.
type QueryEngine struct {
	keyword port.KeywordSearcher
	vector  port.VectorSearcher
	cache   port.PageCache
	metrics *metrics.Metrics
	cfg     config.QueryConfig
}

// QueryOption configures optional collaborators of a QueryEngine.
type QueryOption func(*QueryEngine)

// WithVectorSearcher enables ModeVectorSimilarity.
func WithVectorSearcher(v port.VectorSearcher) QueryOption {
	return func(e *QueryEngine) { e.vector = v }
}

func WithPageCache(c port.PageCache) QueryOption {
	return func(e *QueryEngine) { e.cache = c }
}

func WithMetrics(m *metrics.Metrics) QueryOption {
	return func(e *QueryEngine) { e.metrics = m }
}

func NewQueryEngine(keyword port.KeywordSearcher, cfg config.QueryConfig, opts ...QueryOption) *QueryEngine {
	e := &QueryEngine{keyword: keyword, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Limit returns the page size for a normal or an export request.
func (e *QueryEngine) Limit(export bool) int {
	if export {
		return e.cfg.ExportLimit
	}
	return e.cfg.PageSize
}

// Search runs req. The offset is clamped to the configured maximum. Blank
// text returns an empty page without touching the index, and a failing
// search degrades to an empty page. The only error is ErrModeUnavailable.
func (e *QueryEngine) Search(ctx context.Context, req SearchRequest) (*domain.SearchPage, error) {
	var search func(context.Context, string, int, int) (uint64, []domain.Hit, error)
	switch req.Mode {
	case domain.ModeKeyword:
		search = e.keyword.Search
	case domain.ModeVectorSimilarity:
		if e.vector == nil {
			return nil, domain.ErrModeUnavailable
		}
		search = e.vector.SearchSimilar
	default:
		return nil, domain.ErrModeUnavailable
	}

	text := strings.TrimSpace(textnorm.FoldWidth(req.Text))
	if simplified, err := textnorm.Simplified(text); err != nil {
		logger.FromContext(ctx).Warn("query left unconverted", "error", err)
	} else {
		text = simplified
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > e.cfg.MaxOffset {
		offset = e.cfg.MaxOffset
	}
	page := &domain.SearchPage{
		Query:  text,
		Offset: offset,
		Limit:  e.Limit(req.Export),
		Hits:   []domain.Hit{},
	}
	if text == "" {
		return page, nil
	}

	start := time.Now()
	compute := func(ctx context.Context) (*domain.SearchPage, error) {
		sctx := ctx
		if e.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
			defer cancel()
		}
		total, hits, err := search(sctx, text, page.Limit, page.Offset)
		if err != nil {
			return nil, err
		}
		out := *page
		out.Total = total
		if hits != nil {
			out.Hits = hits
		}
		return &out, nil
	}

	var (
		result   *domain.SearchPage
		cacheHit bool
		err      error
	)
	if e.cache != nil {
		key := cache.Key(text, req.Mode, page.Offset, page.Limit)
		result, cacheHit, err = e.cache.GetOrCompute(ctx, key, compute)
	} else {
		result, err = compute(ctx)
	}

	elapsed := time.Since(start)
	log := logger.FromContext(ctx).With("component", "query")
	kind := "search"
	if req.Export {
		kind = "export"
	}

	if err != nil {
		e.metrics.RecordSearch(req.Mode.String(), 0, false, elapsed, err)
		log.Error(kind+" failed", "mode", req.Mode, "query", text, "error", err)
		return page, nil
	}

	e.metrics.RecordSearch(req.Mode.String(), result.Total, cacheHit, elapsed, nil)
	log.Info(kind,
		"mode", req.Mode,
		"query", text,
		"total", result.Total,
		"offset", result.Offset,
		"limit", result.Limit,
		"cache_hit", cacheHit,
		"elapsed", elapsed,
	)
	return result, nil
}
