package analyzer

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed stopwords_zh.txt
var standardStopwords string

// Stopwords is a set of terms excluded from indexing.
type Stopwords map[string]struct{}

// LoadStopwords returns the built-in list merged with the whitespace
// separated words of path. An empty path yields the built-in list only.
func LoadStopwords(path string) (Stopwords, error) {
	sw := make(Stopwords)
	sw.add(standardStopwords)
	if path == "" {
		return sw, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stopwords file: %w", err)
	}
	sw.add(string(data))
	return sw, nil
}

func (sw Stopwords) add(text string) {
	for _, w := range strings.Fields(text) {
		sw[Normalize(w)] = struct{}{}
	}
}

func (sw Stopwords) Contains(term string) bool {
	_, ok := sw[term]
	return ok
}

// Sorted returns the terms in lexical order.
func (sw Stopwords) Sorted() []string {
	out := make([]string, 0, len(sw))
	for w := range sw {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
