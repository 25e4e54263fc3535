// Package index maintains the inverted index over case records.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"caselaw/internal/adapter/analyzer"
	"caselaw/internal/adapter/query"
	"caselaw/internal/adapter/schema"
	"caselaw/internal/domain"
)

var (
	keyConfigHash = []byte("_caselaw_config_hash")
	keyCheckpoint = []byte("_caselaw_checkpoint")
)

// ErrRebuildRequired is returned by Open when the index on disk was built
// with a different schema or analyzer chain.
var ErrRebuildRequired = errors.New("index configuration changed, rebuild required")

// Options controls how Open treats an existing index.
type Options struct {
	// Rebuild discards any existing index at the path.
	Rebuild bool
}

// BleveIndex is the index engine adapter. It serves as both the writer used
// by the index builder and the searcher used by the query engine.
type BleveIndex struct {
	idx    bleve.Index
	schema *schema.Schema
	parser *query.Parser
	hash   string

	mu    sync.Mutex
	batch *bleve.Batch
}

// Open opens the index at path, creating it when missing.
func Open(path string, s *schema.Schema, a Analysis, opts Options) (*BleveIndex, error) {
	hash := ConfigHash(s, a)

	if opts.Rebuild {
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("failed to remove index: %w", err)
		}
	}

	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		m, merr := buildMapping(s, a)
		if merr != nil {
			return nil, merr
		}
		idx, err = bleve.NewUsing(path, m, "scorch", "scorch", nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
		if err := idx.SetInternal(keyConfigHash, []byte(hash)); err != nil {
			idx.Close()
			return nil, fmt.Errorf("failed to record index config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	} else {
		stored, err := idx.GetInternal(keyConfigHash)
		if err != nil {
			idx.Close()
			return nil, fmt.Errorf("failed to read index config: %w", err)
		}
		if string(stored) != hash {
			idx.Close()
			return nil, ErrRebuildRequired
		}
	}

	b := &BleveIndex{
		idx:    idx,
		schema: s,
		hash:   hash,
	}
	b.batch = idx.NewBatch()
	b.parser = query.NewParser(s, b.Analyze)
	return b, nil
}

// ConfigHash fingerprints everything that changes how documents are indexed.
func ConfigHash(s *schema.Schema, a Analysis) string {
	h := sha256.New()
	fmt.Fprintf(h, "analyzer=%s/%d\n", analyzer.TokenizerName, analyzerRevision)
	fmt.Fprintf(h, "schema=%s\n", s.Signature())
	fmt.Fprintf(h, "max_token_len=%d\n", a.MaxTokenLen)
	fmt.Fprintf(h, "stopwords=%s\n", strings.Join(a.Stopwords.Sorted(), " "))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// Analyze runs text through the text analyzer and returns the terms.
func (b *BleveIndex) Analyze(text string) []string {
	an := b.idx.Mapping().AnalyzerNamed(TextAnalyzer)
	if an == nil {
		return nil
	}
	stream := an.Analyze([]byte(text))
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		terms = append(terms, string(tok.Term))
	}
	return terms
}

// Add stages rec in the current batch.
func (b *BleveIndex) Add(_ context.Context, rec domain.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batch.Index(strconv.FormatUint(uint64(rec.ID), 10), b.schema.Document(rec))
}

// Commit applies the staged batch together with the checkpoint, so a
// checkpoint never runs ahead of the documents it covers.
func (b *BleveIndex) Commit(_ context.Context, lastID uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, 4)
	binary.BigEndian.PutUint32(cp, lastID)
	b.batch.SetInternal(keyCheckpoint, cp)
	if err := b.idx.Batch(b.batch); err != nil {
		return fmt.Errorf("failed to commit index batch: %w", err)
	}
	b.batch.Reset()
	return nil
}

func (b *BleveIndex) Checkpoint(_ context.Context) (uint32, error) {
	v, err := b.idx.GetInternal(keyCheckpoint)
	if err != nil {
		return 0, err
	}
	if len(v) != 4 {
		return 0, nil
	}
	return binary.BigEndian.Uint32(v), nil
}

func (b *BleveIndex) DocCount() (uint64, error) {
	return b.idx.DocCount()
}

// Search parses text leniently and returns the exact total and one page of
// hits. Text that yields no query returns zero hits.
func (b *BleveIndex) Search(ctx context.Context, text string, limit, offset int) (uint64, []domain.Hit, error) {
	q := b.parser.Parse(text)
	if q == nil || limit <= 0 {
		return 0, nil, nil
	}

	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	res, err := b.idx.SearchInContext(ctx, req)
	if err != nil {
		return 0, nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]domain.Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseUint(h.ID, 10, 32)
		if err != nil {
			continue
		}
		hits = append(hits, domain.Hit{ID: uint32(id), Score: h.Score})
	}
	return res.Total, hits, nil
}

func (b *BleveIndex) Close() error {
	return b.idx.Close()
}
