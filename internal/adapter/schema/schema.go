// Package schema describes which case attributes are indexed and how. The
// index builder and the query parser are both driven by one Schema value.
package schema

import (
	"sort"
	"strconv"
	"strings"

	"caselaw/internal/adapter/textnorm"
	"caselaw/internal/domain"
)

// IDField holds the stored, unindexed record identifier.
const IDField = "id"

// Date part fields derived from the judgment date.
const (
	YearField  = "year"
	MonthField = "month"
	DayField   = "day"
)

type Kind int

const (
	Text Kind = iota
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "text"
}

// Field is one indexed field.
type Field struct {
	Name    string
	Kind    Kind
	Boost   float64
	Default bool // searched by clauses without a field prefix
}

// Schema is an ordered set of indexed fields.
type Schema struct {
	fields       []Field
	byName       map[string]int
	withFullText bool
	dateParts    bool
}

// Options controls which optional fields a Schema carries.
type Options struct {
	WithFullText bool
	DateParts    bool
	Boosts       map[string]float64
}

// New builds the case schema: every textual attribute except the source
// reference, the optional full text, and the optional judgment date parts.
func New(opts Options) *Schema {
	s := &Schema{
		byName:       make(map[string]int),
		withFullText: opts.WithFullText,
		dateParts:    opts.DateParts,
	}
	for _, name := range domain.FieldNames {
		switch name {
		case "doc_id":
			continue
		case "full_text":
			if !opts.WithFullText {
				continue
			}
		}
		s.add(Field{Name: name, Kind: Text, Default: true})
		if name == "judgment_date" && opts.DateParts {
			for _, part := range []string{YearField, MonthField, DayField} {
				s.add(Field{Name: part, Kind: Numeric, Default: true})
			}
		}
	}
	for name, boost := range opts.Boosts {
		if i, ok := s.byName[name]; ok && boost > 0 {
			s.fields[i].Boost = boost
		}
	}
	return s
}

func (s *Schema) add(f Field) {
	if f.Boost == 0 {
		f.Boost = 1
	}
	s.byName[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)
}

// Fields returns the indexed fields in order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Field looks up an indexed field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// DefaultFields returns the fields searched by unprefixed clauses.
func (s *Schema) DefaultFields() []Field {
	var out []Field
	for _, f := range s.fields {
		if f.Default {
			out = append(out, f)
		}
	}
	return out
}

func (s *Schema) WithFullText() bool {
	return s.withFullText
}

// Document projects rec onto the schema. Empty attributes are omitted and
// numeric values are float64, as the index engine expects.
func (s *Schema) Document(rec domain.Record) map[string]interface{} {
	doc := map[string]interface{}{
		IDField: float64(rec.ID),
	}
	for _, f := range s.fields {
		if f.Kind != Text {
			continue
		}
		v, _ := rec.Case.Field(f.Name)
		if f.Name == "full_text" {
			v = textnorm.StripMarkup(v)
		}
		if v == "" {
			continue
		}
		doc[f.Name] = v
	}
	if s.dateParts {
		for name, v := range DateParts(rec.Case.JudgmentDate) {
			doc[name] = float64(v)
		}
	}
	return doc
}

// DateParts splits a YYYY-MM-DD style date on '-'. A part is present only
// when its segment parses as an unsigned integer.
func DateParts(date string) map[string]uint64 {
	parts := make(map[string]uint64, 3)
	names := []string{YearField, MonthField, DayField}
	for i, seg := range strings.SplitN(strings.TrimSpace(date), "-", 3) {
		v, err := strconv.ParseUint(strings.TrimSpace(seg), 10, 64)
		if err != nil {
			continue
		}
		parts[names[i]] = v
	}
	return parts
}

// Signature is a stable description of the schema, used to detect indexes
// built with a different layout.
func (s *Schema) Signature() string {
	parts := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		parts = append(parts, f.Name+":"+f.Kind.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
