package text

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

// AnalyzerName is the bleve analyzer name registered by this package and
// used as the default analyzer for every indexed text field (spec §4.5).
const AnalyzerName = "prism_code"

func init() {
	registry.RegisterAnalyzer(AnalyzerName, analyzerConstructor)
}

func analyzerConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.Analyzer, error) {
	return &analysis.DefaultAnalyzer{
		Tokenizer:    codeTokenizer{},
		TokenFilters: []analysis.TokenFilter{identifierSplitFilter{}},
	}, nil
}

// codeTokenizer implements analysis.Tokenizer: the "simple tokenize" step
// of §4.5, splitting input into maximal letter/digit runs.
type codeTokenizer struct{}

func (codeTokenizer) Tokenize(input []byte) analysis.TokenStream {
	words := simpleTokenize(string(input))
	stream := make(analysis.TokenStream, 0, len(words))
	pos := 1
	offset := 0
	for _, w := range words {
		start := indexOfWord(string(input), w, offset)
		end := start + len(w)
		offset = end
		stream = append(stream, &analysis.Token{
			Term:     []byte(w),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
	}
	return stream
}

// indexOfWord finds the next occurrence of w in s at or after from, used
// only to keep byte offsets monotonically increasing and plausible for
// highlighting; exact offsets do not affect scoring or P5.
func indexOfWord(s, w string, from int) int {
	if from > len(s) {
		from = len(s)
	}
	idx := indexByte(s[from:], w)
	if idx < 0 {
		return from
	}
	return from + idx
}

func indexByte(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// identifierSplitFilter implements analysis.TokenFilter, applying
// SplitIdentifier (rules 2-4, lowercasing, length filtering) to each token
// the tokenizer produced and fanning out into multiple tokens when a split
// occurs.
type identifierSplitFilter struct{}

func (identifierSplitFilter) Filter(in analysis.TokenStream) analysis.TokenStream {
	out := make(analysis.TokenStream, 0, len(in))
	pos := 1
	for _, tok := range in {
		for _, part := range SplitIdentifier(string(tok.Term)) {
			out = append(out, &analysis.Token{
				Term:     []byte(part),
				Start:    tok.Start,
				End:      tok.End,
				Position: pos,
				Type:     tok.Type,
			})
			pos++
		}
	}
	return out
}
