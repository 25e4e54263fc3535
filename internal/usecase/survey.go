package usecase

import (
	"context"
	"fmt"
	"strings"

	"caselaw/internal/adapter/analyzer"
	"caselaw/internal/adapter/corpus"
	"caselaw/internal/logger"
)

// DefaultSurveySample is how many rows of each corpus entry the stopword
// survey reads.
const DefaultSurveySample = 10000

// StopwordSurvey counts segmented words that are not stopwords yet, to help
// grow the stopword list. Metadata fields and full text are tallied apart
// because their vocabularies differ.
type StopwordSurvey struct {
	reader *corpus.Reader
	seg    *analyzer.Segmenter
	stop   analyzer.Stopwords
	sample int
}

func NewStopwordSurvey(reader *corpus.Reader, seg *analyzer.Segmenter, stop analyzer.Stopwords, sample int) *StopwordSurvey {
	if sample <= 0 {
		sample = DefaultSurveySample
	}
	return &StopwordSurvey{reader: reader, seg: seg, stop: stop, sample: sample}
}

// SurveyResult holds the term frequencies, most frequent first.
type SurveyResult struct {
	Rows     int
	Entries  int
	Meta     []analyzer.TermCount
	FullText []analyzer.TermCount
}

// Run reads up to the sample size of rows from every entry under root and
// returns the top terms of each tally. top <= 0 keeps every term.
func (s *StopwordSurvey) Run(ctx context.Context, root string, top int, progress ProgressFunc) (*SurveyResult, error) {
	log := logger.WithComponent("stopwords")
	meta := analyzer.NewTermCounter(s.seg, s.stop)
	full := analyzer.NewTermCounter(s.seg, s.stop)
	result := &SurveyResult{}

	var archive, entry string
	inEntry := 0
	err := s.reader.Walk(ctx, root, func(row corpus.Row) error {
		if row.Archive != archive || row.Entry != entry {
			archive, entry = row.Archive, row.Entry
			inEntry = 0
			result.Entries++
			log.Debug("surveying entry", "archive", archive, "entry", entry)
		}
		if inEntry >= s.sample {
			return corpus.SkipEntry
		}
		inEntry++
		result.Rows++

		c := row.Case
		fields := []string{
			c.CaseID, c.CaseName, c.Court, c.Region, c.CaseType, c.Procedure,
			c.JudgmentDate, c.PublicDate, c.Parties, c.Cause, c.LegalBasis,
		}
		meta.Add(strings.Join(fields, "\n"))
		full.Add(c.FullText)

		if progress != nil {
			progress(result.Rows, -1, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stopword survey failed: %w", err)
	}

	result.Meta = meta.Top(top)
	result.FullText = full.Top(top)
	log.Info("stopword survey done", "rows", result.Rows, "entries", result.Entries,
		"meta_terms", len(result.Meta), "full_text_terms", len(result.FullText))
	return result, nil
}
