package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	_ "github.com/blevesearch/bleve/v2/analysis/token/length"
	_ "github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	_ "github.com/blevesearch/bleve/v2/analysis/token/stop"
	_ "github.com/blevesearch/bleve/v2/analysis/tokenmap"
	"github.com/blevesearch/bleve/v2/mapping"

	"caselaw/internal/adapter/analyzer"
	"caselaw/internal/adapter/schema"
)

const (
	TextAnalyzer = "case_text"

	stopTokenMap    = "case_stopwords"
	stopFilter      = "case_stop"
	lengthFilter    = "case_length"
	lowercaseFilter = "to_lower"

	// analyzerRevision changes whenever tokenization changes, so indexes built
	// by an older tokenizer ask for a rebuild.
	analyzerRevision = 2
)

// Analysis holds the analyzer chain settings.
type Analysis struct {
	Stopwords   analyzer.Stopwords
	MaxTokenLen int
}

// buildMapping translates the schema into an index mapping. Every text field
// runs segmentation, lowercasing, stopword removal and the length filter.
func buildMapping(s *schema.Schema, a Analysis) (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()

	tokens := make([]interface{}, 0, len(a.Stopwords))
	for _, w := range a.Stopwords.Sorted() {
		tokens = append(tokens, w)
	}
	if err := m.AddCustomTokenMap(stopTokenMap, map[string]interface{}{
		"type":   "custom",
		"tokens": tokens,
	}); err != nil {
		return nil, fmt.Errorf("failed to add stopword map: %w", err)
	}

	if err := m.AddCustomTokenFilter(stopFilter, map[string]interface{}{
		"type":           "stop_tokens",
		"stop_token_map": stopTokenMap,
	}); err != nil {
		return nil, fmt.Errorf("failed to add stop filter: %w", err)
	}

	if err := m.AddCustomTokenFilter(lengthFilter, map[string]interface{}{
		"type": "length",
		"max":  float64(a.MaxTokenLen),
	}); err != nil {
		return nil, fmt.Errorf("failed to add length filter: %w", err)
	}

	if err := m.AddCustomAnalyzer(TextAnalyzer, map[string]interface{}{
		"type":      "custom",
		"tokenizer": analyzer.TokenizerName,
		"token_filters": []string{
			lowercaseFilter,
			stopFilter,
			lengthFilter,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to add analyzer: %w", err)
	}

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false

	idField := bleve.NewNumericFieldMapping()
	idField.Index = false
	idField.Store = true
	idField.IncludeInAll = false
	doc.AddFieldMappingsAt(schema.IDField, idField)

	for _, f := range s.Fields() {
		switch f.Kind {
		case schema.Text:
			fm := bleve.NewTextFieldMapping()
			fm.Analyzer = TextAnalyzer
			fm.Store = false
			fm.IncludeInAll = false
			fm.IncludeTermVectors = true
			doc.AddFieldMappingsAt(f.Name, fm)
		case schema.Numeric:
			fm := bleve.NewNumericFieldMapping()
			fm.Store = false
			fm.IncludeInAll = false
			doc.AddFieldMappingsAt(f.Name, fm)
		}
	}

	m.DefaultMapping = doc
	m.DefaultAnalyzer = TextAnalyzer
	m.StoreDynamic = false
	m.IndexDynamic = false
	m.DocValuesDynamic = false
	return m, nil
}
