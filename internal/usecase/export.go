package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"caselaw/internal/adapter/textnorm"
	"caselaw/internal/domain"
)

// ExportHeader is the first line of every export.
var ExportHeader = append([]string{"id"}, domain.FieldNames...)

// Export writes results as CSV in the order given. List fields use the
// full-width separator; the full text is written as stored.
func Export(w io.Writer, results []domain.CaseResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	row := make([]string, len(ExportHeader))
	for _, r := range results {
		c := r.Case
		c.Parties = textnorm.DisplayList(c.Parties)
		c.LegalBasis = textnorm.DisplayList(c.LegalBasis)

		row[0] = strconv.FormatUint(uint64(r.ID), 10)
		for i, f := range c.Fields() {
			row[i+1] = *f
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write case %d: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename names an export after its request. Path separators and
// control characters in the query become underscores.
func ExportFilename(query string, total uint64, limit, offset int) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, query)
	return fmt.Sprintf("%s_%d_%d_%d.csv", safe, total, limit, offset)
}
