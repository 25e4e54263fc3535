package analyzer

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"
	"golang.org/x/text/width"
)

var (
	defaultSeg     *Segmenter
	defaultSegOnce sync.Once
	defaultSegErr  error
)

// Segmenter splits Chinese text into dictionary words. Loading the
// dictionary is slow, so one instance is shared by the whole process.
type Segmenter struct {
	seg gse.Segmenter
}

// Default returns the shared segmenter, loading the embedded dictionary on
// first use.
func Default() (*Segmenter, error) {
	defaultSegOnce.Do(func() {
		s := &Segmenter{}
		s.seg.SkipLog = true
		if err := s.seg.LoadDictEmbed(); err != nil {
			defaultSegErr = err
			return
		}
		defaultSeg = s
	})
	return defaultSeg, defaultSegErr
}

// Piece is a segmented word with its byte span in the input and its word
// position. Sub-words share the position of the word they came from.
type Piece struct {
	Text     string
	Start    int
	End      int
	Position int
}

// Normalize folds full-width forms to their narrow variants and lowercases
// text. Indexed text and query text go through the same mapping.
func Normalize(text string) string {
	norm, _ := normalize(text)
	return norm
}

// normalize returns the normalized text and, when it differs from text, the
// input byte offset of every normalized byte plus a final entry for the end.
func normalize(text string) (string, []int) {
	changed := false
	for _, r := range text {
		if foldRune(r) != r {
			changed = true
			break
		}
	}
	if !changed {
		return text, nil
	}

	buf := make([]byte, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		n := len(buf)
		buf = utf8.AppendRune(buf, foldRune(r))
		for range len(buf) - n {
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(text))
	return string(buf), offsets
}

func foldRune(r rune) rune {
	if f := width.LookupRune(r).Folded(); f != 0 {
		r = f
	}
	return unicode.ToLower(r)
}

// Words returns the normalized words of text in order, dropping whitespace
// and punctuation.
func (s *Segmenter) Words(text string) []string {
	words := s.seg.Cut(Normalize(text), true)
	out := words[:0]
	for _, w := range words {
		if isWord(w) {
			out = append(out, w)
		}
	}
	return out
}

// SearchPieces segments the normalized text in search mode: long words are
// emitted together with the shorter dictionary words inside them. Piece text
// is normalized; spans index into the original text.
func (s *Segmenter) SearchPieces(text string) []Piece {
	norm, offsets := normalize(text)
	words := s.seg.Cut(norm, true)
	search := s.seg.CutSearch(norm, true)
	starts := locate(norm, words)

	span := func(start, end int) (int, int) {
		if offsets == nil {
			return start, end
		}
		return offsets[start], offsets[end]
	}

	// Search mode emits the sub-words of a word right before the word.
	pieces := make([]Piece, 0, len(search))
	pos, j := 0, 0
	for _, tok := range search {
		if j < len(words) && tok == words[j] {
			if starts[j] >= 0 && isWord(tok) {
				pos++
				st, en := span(starts[j], starts[j]+len(tok))
				pieces = append(pieces, Piece{Text: tok, Start: st, End: en, Position: pos})
			}
			j++
			continue
		}
		if j >= len(words) || starts[j] < 0 || !isWord(tok) {
			continue
		}
		off := strings.Index(words[j], tok)
		if off < 0 {
			continue
		}
		st, en := span(starts[j]+off, starts[j]+off+len(tok))
		pieces = append(pieces, Piece{Text: tok, Start: st, End: en, Position: pos + 1})
	}
	return pieces
}

// locate returns the byte offset of every word in text, scanning forward.
// Words the segmenter did not take verbatim from text get -1.
func locate(text string, words []string) []int {
	starts := make([]int, len(words))
	cursor := 0
	for i, w := range words {
		off := strings.Index(text[cursor:], w)
		if w == "" || off < 0 {
			starts[i] = -1
			continue
		}
		starts[i] = cursor + off
		cursor += off + len(w)
	}
	return starts
}

// isWord reports whether tok holds at least one letter or digit.
func isWord(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasHan(tok string) bool {
	for _, r := range tok {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
