package analyzer

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// TermCount is a term and how often it was seen.
type TermCount struct {
	Term  string
	Count int
}

// TermCounter tallies segmented words that are not yet stopwords. It feeds
// the stopword survey.
type TermCounter struct {
	seg    *Segmenter
	stop   Stopwords
	counts map[string]int
}

func NewTermCounter(seg *Segmenter, stop Stopwords) *TermCounter {
	return &TermCounter{
		seg:    seg,
		stop:   stop,
		counts: make(map[string]int),
	}
}

func (c *TermCounter) Add(text string) {
	for _, w := range c.seg.Words(text) {
		w = strings.ToLower(w)
		if c.stop.Contains(w) {
			continue
		}
		c.counts[w]++
	}
}

// Top returns the n most frequent terms, most frequent first; ties break on
// the term. n <= 0 returns all terms.
func (c *TermCounter) Top(n int) []TermCount {
	out := make([]TermCount, 0, len(c.counts))
	for t, k := range c.counts {
		out = append(out, TermCount{Term: t, Count: k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WriteCounts writes one "count term" line per entry, the count zero-padded
// to five digits.
func WriteCounts(w io.Writer, counts []TermCount) error {
	for _, tc := range counts {
		if _, err := fmt.Fprintf(w, "%05d %s\n", tc.Count, tc.Term); err != nil {
			return err
		}
	}
	return nil
}
