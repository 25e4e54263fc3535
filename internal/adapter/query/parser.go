// Package query turns free-form search text into index queries. Parsing is
// lenient: anything it cannot interpret is dropped, never reported.
package query

import (
	"math"
	"strconv"
	"strings"

	bquery "github.com/blevesearch/bleve/v2/search/query"

	"caselaw/internal/adapter/schema"
)

// AnalyzeFunc returns the index terms text produces under the text analyzer.
type AnalyzeFunc func(text string) []string

// Parser builds conjunctive queries over a schema's default fields.
type Parser struct {
	schema  *schema.Schema
	analyze AnalyzeFunc
}

func NewParser(s *schema.Schema, analyze AnalyzeFunc) *Parser {
	return &Parser{schema: s, analyze: analyze}
}

// Parse returns nil when no clause of text produces a usable query.
func (p *Parser) Parse(text string) bquery.Query {
	clauses := lex(text, func(name string) bool {
		_, ok := p.schema.Field(name)
		return ok
	})

	var must, mustNot []bquery.Query
	for _, c := range clauses {
		q := p.build(c)
		if q == nil {
			continue
		}
		if c.occur == occurMustNot {
			mustNot = append(mustNot, q)
		} else {
			must = append(must, q)
		}
	}

	if len(must) == 0 {
		return nil
	}
	if len(mustNot) == 0 {
		if len(must) == 1 {
			return must[0]
		}
		return bquery.NewConjunctionQuery(must)
	}
	return bquery.NewBooleanQuery(must, nil, mustNot)
}

func (p *Parser) build(c clause) bquery.Query {
	if c.field != "" {
		f, _ := p.schema.Field(c.field)
		return p.fieldQuery(f, c)
	}
	if c.kind == rangeClause {
		return nil
	}

	var alts []bquery.Query
	for _, f := range p.schema.DefaultFields() {
		if q := p.fieldQuery(f, c); q != nil {
			alts = append(alts, q)
		}
	}
	switch len(alts) {
	case 0:
		return nil
	case 1:
		return alts[0]
	default:
		return bquery.NewDisjunctionQuery(alts)
	}
}

func (p *Parser) fieldQuery(f schema.Field, c clause) bquery.Query {
	if f.Kind == schema.Numeric {
		return numericQuery(f, c)
	}
	if c.kind == rangeClause || strings.TrimSpace(c.value) == "" {
		return nil
	}
	if len(p.analyze(c.value)) == 0 {
		return nil
	}

	switch c.kind {
	case phraseClause:
		q := bquery.NewMatchPhraseQuery(c.value)
		q.SetField(f.Name)
		q.SetBoost(f.Boost)
		return q
	default:
		q := bquery.NewMatchQuery(c.value)
		q.SetField(f.Name)
		q.SetBoost(f.Boost)
		q.SetOperator(bquery.MatchQueryOperatorAnd)
		return q
	}
}

func numericQuery(f schema.Field, c clause) bquery.Query {
	var lo, hi *float64
	switch c.kind {
	case rangeClause:
		var ok bool
		if lo, ok = bound(c.lo); !ok {
			return nil
		}
		if hi, ok = bound(c.hi); !ok {
			return nil
		}
		if lo == nil && hi == nil {
			return nil
		}
	default:
		v, err := strconv.ParseUint(strings.TrimSpace(c.value), 10, 64)
		if err != nil {
			return nil
		}
		fv := float64(v)
		lo, hi = &fv, &fv
	}

	inclusive := true
	q := bquery.NewNumericRangeInclusiveQuery(lo, hi, &inclusive, &inclusive)
	q.SetField(f.Name)
	q.SetBoost(f.Boost)
	return q
}

// bound parses one range endpoint. "*" is an open bound; anything else must
// be an unsigned integer.
func bound(s string) (*float64, bool) {
	if s == "*" {
		return nil, true
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || float64(v) > math.MaxInt64 {
		return nil, false
	}
	fv := float64(v)
	return &fv, true
}
