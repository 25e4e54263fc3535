package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type clauseKind int

const (
	termClause clauseKind = iota
	phraseClause
	rangeClause
)

type occur int

const (
	occurMust occur = iota
	occurMustNot
)

// clause is one whitespace-delimited unit of query text.
type clause struct {
	occur occur
	field string
	kind  clauseKind
	value string
	// range bounds, raw; "*" or "" means open
	lo, hi string
}

var closingQuote = map[rune]rune{
	'"': '"',
	'“': '”',
	'「': '」',
}

// lex splits text into clauses. It never fails: unterminated quotes and
// brackets run to the end of input.
func lex(text string, isField func(string) bool) []clause {
	var out []clause
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		c := clause{occur: occurMust}
		switch r {
		case '-':
			c.occur = occurMustNot
			i += size
		case '+':
			i += size
		}

		// field prefix
		if j := strings.IndexByte(text[i:], ':'); j > 0 {
			name := text[i : i+j]
			if isIdent(name) && isField(name) {
				c.field = name
				i += j + 1
			}
		}

		if i >= len(text) {
			break
		}
		r, size = utf8.DecodeRuneInString(text[i:])
		switch {
		case closingQuote[r] != 0:
			end := strings.IndexRune(text[i+size:], closingQuote[r])
			if end < 0 {
				c.value = text[i+size:]
				i = len(text)
			} else {
				c.value = text[i+size : i+size+end]
				i += size + end + utf8.RuneLen(closingQuote[r])
			}
			c.kind = phraseClause
		case r == '[':
			end := strings.IndexByte(text[i:], ']')
			var body string
			if end < 0 {
				body = text[i+1:]
				i = len(text)
			} else {
				body = text[i+1 : i+end]
				i += end + 1
			}
			c.kind = rangeClause
			c.lo, c.hi = splitRange(body)
		default:
			end := strings.IndexFunc(text[i:], unicode.IsSpace)
			if end == 0 {
				// a lone sign or an empty field value
				continue
			}
			if end < 0 {
				end = len(text) - i
			}
			c.value = text[i : i+end]
			i += end
			c.kind = termClause
		}
		out = append(out, c)
	}
	return out
}

// splitRange parses "lo TO hi". A body without TO yields two empty bounds.
func splitRange(body string) (string, string) {
	fields := strings.Fields(body)
	if len(fields) != 3 || !strings.EqualFold(fields[1], "TO") {
		return "", ""
	}
	return fields[0], fields[2]
}

func isIdent(s string) bool {
	for _, r := range s {
		if r != '_' && (r < 'a' || r > 'z') {
			return false
		}
	}
	return s != ""
}
