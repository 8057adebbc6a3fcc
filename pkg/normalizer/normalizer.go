package normalizer

import (
	"strings"
	"unicode"
)

// stopWords stay lowercase when they appear past the first word, following
// the usual title-case rules for articles, conjunctions and short
// prepositions.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "but": {}, "or": {},
	"for": {}, "nor": {}, "on": {}, "at": {}, "to": {}, "by": {},
	"with": {}, "of": {},
}

// Normalize title-cases a raw merchant name. Words are split on
// whitespace, capitalized (first letter upper, rest lower) unless they are
// a stop word in a non-leading position, and rejoined with single spaces.
// Punctuation is left in place. Idempotent.
func Normalize(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		lower := strings.ToLower(word)
		if _, stop := stopWords[lower]; stop && i > 0 {
			words[i] = lower
			continue
		}
		words[i] = capitalize(lower)
	}
	return strings.Join(words, " ")
}

func capitalize(word string) string {
	r := []rune(word)
	if len(r) == 0 {
		return word
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
