package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselaw/internal/adapter/analyzer"
	"caselaw/internal/adapter/corpus"
	"caselaw/internal/adapter/corpus/corpustest"
	"caselaw/internal/domain"
)

func TestStopwordSurvey(t *testing.T) {
	root := t.TempDir()
	corpustest.WriteArchive(t, filepath.Join(root, "a.zip"),
		corpustest.Entry{Name: "one.csv", Cases: []domain.Case{
			{DocID: "ignored", CaseName: "alpha beta", FullText: "gamma gamma"},
			{CaseName: "alpha", Court: "beta", FullText: "gamma"},
			{CaseName: "unseen", FullText: "unseen"},
		}},
		corpustest.Entry{Name: "two.csv", Cases: []domain.Case{
			{CaseName: "alpha 的", FullText: "delta"},
		}},
	)

	seg, err := analyzer.Default()
	require.NoError(t, err)
	stop, err := analyzer.LoadStopwords("")
	require.NoError(t, err)

	res, err := NewStopwordSurvey(corpus.NewReader("", ""), seg, stop, 2).Run(context.Background(), root, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Entries)
	assert.Equal(t, []analyzer.TermCount{{Term: "alpha", Count: 3}, {Term: "beta", Count: 2}}, res.Meta)
	assert.Equal(t, []analyzer.TermCount{{Term: "gamma", Count: 3}, {Term: "delta", Count: 1}}, res.FullText)

	res, err = NewStopwordSurvey(corpus.NewReader("", ""), seg, stop, 2).Run(context.Background(), root, 1, nil)
	require.NoError(t, err)
	assert.Len(t, res.Meta, 1)
	assert.Len(t, res.FullText, 1)
}
