package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("case not found")
	ErrInvalidID       = errors.New("invalid case identifier")
	ErrModeUnavailable = errors.New("query mode unavailable")
)

// Case is one legal-case record. Field order is significant: it fixes the
// binary field numbering and the export column order.
type Case struct {
	DocID        string `json:"doc_id"`
	CaseID       string `json:"case_id"`
	CaseName     string `json:"case_name"`
	Court        string `json:"court"`
	Region       string `json:"region"`
	CaseType     string `json:"case_type"`
	Procedure    string `json:"procedure"`
	JudgmentDate string `json:"judgment_date"`
	PublicDate   string `json:"public_date"`
	Parties      string `json:"parties"`
	Cause        string `json:"cause"`
	LegalBasis   string `json:"legal_basis"`
	FullText     string `json:"full_text"`
}

// Record pairs a case with its synthetic identifier.
type Record struct {
	ID   uint32
	Case Case
}

// Hit is one ranked search match.
type Hit struct {
	ID    uint32  `json:"id"`
	Score float64 `json:"score"`
}

// SearchPage is the ranked page returned for a query.
type SearchPage struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Hits   []Hit  `json:"hits"`
}

// CaseResult is a hit resolved against the document store.
type CaseResult struct {
	ID      uint32  `json:"id"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
	Case    Case    `json:"case"`
}

// QueryMode selects the retrieval strategy.
type QueryMode int

const (
	ModeKeyword QueryMode = iota
	ModeVectorSimilarity
)

func (m QueryMode) String() string {
	switch m {
	case ModeKeyword:
		return "keyword"
	case ModeVectorSimilarity:
		return "vector"
	default:
		return fmt.Sprintf("QueryMode(%d)", int(m))
	}
}

// ParseQueryMode maps a user-supplied name to a mode. Empty means keyword.
func ParseQueryMode(s string) (QueryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keyword":
		return ModeKeyword, nil
	case "vector", "similarity":
		return ModeVectorSimilarity, nil
	default:
		return ModeKeyword, fmt.Errorf("unknown query mode %q", s)
	}
}

// FieldNames lists the case attributes in declared order.
var FieldNames = []string{
	"doc_id", "case_id", "case_name", "court", "region", "case_type", "procedure",
	"judgment_date", "public_date", "parties", "cause", "legal_basis", "full_text",
}

// Fields returns pointers to the attributes of c in FieldNames order.
func (c *Case) Fields() []*string {
	return []*string{
		&c.DocID, &c.CaseID, &c.CaseName, &c.Court, &c.Region, &c.CaseType, &c.Procedure,
		&c.JudgmentDate, &c.PublicDate, &c.Parties, &c.Cause, &c.LegalBasis, &c.FullText,
	}
}

// Field returns the attribute called name and whether the name is known.
func (c Case) Field(name string) (string, bool) {
	for i, n := range FieldNames {
		if n == name {
			return *c.Fields()[i], true
		}
	}
	return "", false
}
