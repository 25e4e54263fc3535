// Package textnorm holds the pure text transforms applied to case records at
// ingestion, indexing and display time.
package textnorm

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/longbridgeapp/opencc"
	xhtml "golang.org/x/net/html"
	"golang.org/x/text/width"

	"caselaw/internal/domain"
)

// headerMarker tags the element that opens the judgment body in source markup.
const headerMarker = "c_header"

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Paragraphs wraps every whitespace-separated word of raw in a paragraph
// element. Tags already present in raw are kept as they are, so the header
// marker survives; only their text is split into words. Comments and the
// contents of script and style elements are dropped.
func Paragraphs(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + len(raw)/2)
	z := xhtml.NewTokenizer(strings.NewReader(raw))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			return b.String()
		case xhtml.TextToken:
			if skip > 0 {
				continue
			}
			for _, w := range strings.Fields(string(z.Text())) {
				b.WriteString("<p>")
				b.WriteString(html.EscapeString(w))
				b.WriteString("</p>")
			}
		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				if tt == xhtml.StartTagToken {
					skip++
				} else if tt == xhtml.EndTagToken && skip > 0 {
					skip--
				}
				continue
			}
			b.Write(z.Raw())
		}
	}
}

// StripMarkup removes tags and unescapes entities. Block elements end with a
// newline; trailing newlines are dropped.
func StripMarkup(markup string) string {
	if !strings.ContainsAny(markup, "<&") {
		return markup
	}
	z := xhtml.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	b.Grow(len(markup))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			return strings.TrimRight(b.String(), "\n")
		case xhtml.TextToken:
			b.Write(z.Text())
		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if !blockTags[tag] {
				continue
			}
			if tt == xhtml.StartTagToken && tag != "br" {
				continue
			}
			if s := b.String(); len(s) > 0 && !strings.HasSuffix(s, "\n") {
				b.WriteByte('\n')
			}
		}
	}
}

// Preview returns the first n characters of the stripped markup, with line
// breaks flattened to spaces.
func Preview(markup string, n int) string {
	if n <= 0 {
		return ""
	}
	text := strings.ReplaceAll(StripMarkup(markup), "\n", " ")
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// SourceRef keeps the part of a source URL after its last '='. URLs without
// one yield an empty reference.
func SourceRef(url string) string {
	i := strings.LastIndex(url, "=")
	if i < 0 {
		return ""
	}
	return url[i+1:]
}

// DisplayList trims separators from both ends of a comma-joined list and
// swaps the rest for the full-width comma.
func DisplayList(s string) string {
	return strings.ReplaceAll(strings.Trim(s, ","), ",", "，")
}

// FoldWidth maps full-width ASCII variants to their narrow forms and
// half-width CJK variants to their wide forms.
func FoldWidth(s string) string {
	return width.Fold.String(s)
}

var (
	t2s     *opencc.OpenCC
	t2sOnce sync.Once
	t2sErr  error
)

// Simplified converts traditional Chinese characters in s to their
// simplified forms. The conversion dictionaries load on first use.
func Simplified(s string) (string, error) {
	t2sOnce.Do(func() {
		t2s, t2sErr = opencc.New("t2s")
	})
	if t2sErr != nil {
		return s, fmt.Errorf("failed to load t2s dictionary: %w", t2sErr)
	}
	out, err := t2s.Convert(s)
	if err != nil {
		return s, fmt.Errorf("failed to convert to simplified: %w", err)
	}
	return out, nil
}

// ArticleBody drops everything before the element carrying the header
// marker. Markup without the marker is returned unchanged.
func ArticleBody(markup string) string {
	pos := strings.Index(markup, headerMarker)
	if pos < 0 {
		return markup
	}
	start := strings.LastIndex(markup[:pos], "<")
	if start < 0 {
		return markup
	}
	return markup[start:]
}

// NormalizeCase applies the ingestion-time cleanup to c in place.
func NormalizeCase(c *domain.Case) {
	for _, f := range c.Fields() {
		*f = strings.TrimSpace(*f)
	}
	c.DocID = SourceRef(c.DocID)
	c.FullText = Paragraphs(c.FullText)
}

// DisplayCase returns c prepared for rendering: list fields use the
// full-width separator and the full text starts at the judgment header.
func DisplayCase(c domain.Case) domain.Case {
	c.Parties = DisplayList(c.Parties)
	c.LegalBasis = DisplayList(c.LegalBasis)
	c.FullText = ArticleBody(c.FullText)
	return c
}
