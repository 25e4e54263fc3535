package analyzer

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

// TokenizerName is the name the segmenting tokenizer is registered under.
const TokenizerName = "gse"

func init() {
	registry.RegisterTokenizer(TokenizerName, tokenizerConstructor)
}

func tokenizerConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.Tokenizer, error) {
	seg, err := Default()
	if err != nil {
		return nil, err
	}
	return &Tokenizer{seg: seg}, nil
}

// Tokenizer adapts Segmenter to the index engine's tokenizer interface.
type Tokenizer struct {
	seg *Segmenter
}

func NewTokenizer(seg *Segmenter) *Tokenizer {
	return &Tokenizer{seg: seg}
}

func (t *Tokenizer) Tokenize(input []byte) analysis.TokenStream {
	pieces := t.seg.SearchPieces(string(input))
	stream := make(analysis.TokenStream, 0, len(pieces))
	for _, p := range pieces {
		typ := analysis.AlphaNumeric
		if hasHan(p.Text) {
			typ = analysis.Ideographic
		}
		stream = append(stream, &analysis.Token{
			Term:     []byte(p.Text),
			Start:    p.Start,
			End:      p.End,
			Position: p.Position,
			Type:     typ,
		})
	}
	return stream
}
