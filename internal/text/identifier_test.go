package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_Scenario1(t *testing.T) {
	got := Tokenize("HTTPSConnection parseJSON get_user_by_id get2ndPlace")
	want := []string{"https", "connection", "parse", "json", "get", "user", "by", "id", "get", "2", "nd", "place"}
	assert.Equal(t, want, got)
}

func TestTokenize_Idempotent(t *testing.T) {
	// P5: idempotent under re-tokenization — splitting an already-split,
	// lowercased token stream should leave it unchanged.
	first := Tokenize("XMLParserFactory")
	second := Tokenize(join(first))
	assert.Equal(t, first, second)
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

func TestSplitIdentifier_AcronymBoundary(t *testing.T) {
	assert.Equal(t, []string{"xml", "parser"}, SplitIdentifier("XMLParser"))
}

func TestSplitIdentifier_DropsLongTokens(t *testing.T) {
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	assert.Empty(t, SplitIdentifier(string(long)))
}

func TestSplitIdentifier_DelimitersAndDigits(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, SplitIdentifier("foo_bar"))
	assert.Equal(t, []string{"foo", "bar"}, SplitIdentifier("foo-bar"))
	assert.Equal(t, []string{"v", "2", "release"}, SplitIdentifier("v2Release"))
}
