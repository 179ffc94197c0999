package lexsearch

import (
	"strings"
	"unicode"
)

// tokenize splits text into lowercased terms at every non-letter,
// non-digit boundary. Indexing and querying share this normalization so
// both sides see the same vocabulary. There is no stop-word list and no
// minimum token length; single-character terms are searched like any other.
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
