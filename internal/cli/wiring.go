package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"caselaw/config"
	"caselaw/internal/adapter/analyzer"
	"caselaw/internal/adapter/cache"
	"caselaw/internal/adapter/index"
	"caselaw/internal/adapter/schema"
	"caselaw/internal/adapter/store"
	"caselaw/internal/port"
)

// caseSchema builds the index schema the configuration asks for.
func caseSchema(cfg *config.Config) *schema.Schema {
	return schema.New(schema.Options{
		WithFullText: cfg.Index.WithFullText,
		DateParts:    cfg.Index.DateParts,
		Boosts:       cfg.Query.Boosts,
	})
}

func openStore(ctx context.Context, cfg *config.Config) (port.CaseStore, error) {
	if err := cfg.EnsureDataDirs(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	return st, nil
}

// openIndex opens the search index. With mustExist set a missing index is
// reported instead of created.
func openIndex(cfg *config.Config, rebuild, mustExist bool) (*index.BleveIndex, error) {
	if mustExist {
		if _, err := os.Stat(cfg.Index.Path); os.IsNotExist(err) {
			return nil, fmt.Errorf("no index found at %s. Run 'caselaw index' first", cfg.Index.Path)
		}
	}
	sw, err := analyzer.LoadStopwords(cfg.Index.StopwordsFile)
	if err != nil {
		return nil, err
	}
	idx, err := index.Open(cfg.Index.Path, caseSchema(cfg), index.Analysis{
		Stopwords:   sw,
		MaxTokenLen: cfg.Index.MaxTokenLen,
	}, index.Options{Rebuild: rebuild})
	if errors.Is(err, index.ErrRebuildRequired) {
		return nil, fmt.Errorf("%w: run 'caselaw index --rebuild'", err)
	}
	return idx, err
}

// openCache returns the configured page cache, or nil when caching is off.
func openCache(ctx context.Context, cfg *config.Config) (port.PageCache, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	if cfg.Cache.RedisAddr == "" {
		return cache.NewQueryCache(cfg.Cache.Size, cfg.Cache.TTL), func() {}, nil
	}
	rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.TTL)
	if err != nil {
		return nil, nil, err
	}
	return rc, func() { rc.Close() }, nil
}
