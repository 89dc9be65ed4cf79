// Package analyzer splits text into the lowercase word tokens used by text
// indexes and text filters.
package analyzer

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it on runs of non-word characters. Word
// characters are letters, digits and underscore. Repeated tokens are kept
// once, in order of first appearance.
func Tokenize(text string) []string {
	parts := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	seen := make(map[string]struct{}, len(parts))
	tokens := parts[:0]
	for _, p := range parts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		tokens = append(tokens, p)
	}
	return tokens
}

// TokenSet returns the tokens of text as a set.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// ContainsAll reports whether every token of term is a token of text. A term
// without tokens matches nothing.
func ContainsAll(text, term string) bool {
	want := Tokenize(term)
	if len(want) == 0 {
		return false
	}
	have := TokenSet(text)
	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}
