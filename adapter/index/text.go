package index

import (
	"maps"
	"slices"

	"github.com/vinicius-lino-figueiredo/gedoc/pkg/analyzer"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
)

// TextIndex maps the word tokens found at a path to the slots holding them.
type TextIndex struct {
	path    string
	buckets map[string]map[int]struct{}
}

// NewTextIndex returns an empty text index over path.
func NewTextIndex(path string) *TextIndex {
	return &TextIndex{
		path:    path,
		buckets: make(map[string]map[int]struct{}),
	}
}

// Text returns the indexed text of d. Only string values are indexed.
func (t *TextIndex) Text(d *doc.Document) (string, bool) {
	v, ok := d.GetEmbedded(t.path)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Add indexes the tokens of text under slot.
func (t *TextIndex) Add(slot int, text string) {
	for _, token := range analyzer.Tokenize(text) {
		bucket, ok := t.buckets[token]
		if !ok {
			bucket = make(map[int]struct{})
			t.buckets[token] = bucket
		}
		bucket[slot] = struct{}{}
	}
}

// Remove drops slot from the buckets of the tokens of text.
func (t *TextIndex) Remove(slot int, text string) {
	for _, token := range analyzer.Tokenize(text) {
		bucket, ok := t.buckets[token]
		if !ok {
			continue
		}
		delete(bucket, slot)
		if len(bucket) == 0 {
			delete(t.buckets, token)
		}
	}
}

// Lookup returns the slots holding every token of term.
func (t *TextIndex) Lookup(term string) []int {
	tokens := analyzer.Tokenize(term)
	if len(tokens) == 0 {
		return nil
	}

	var res map[int]struct{}
	for _, token := range tokens {
		bucket := t.buckets[token]
		if len(bucket) == 0 {
			return nil
		}
		if res == nil {
			res = maps.Clone(bucket)
			continue
		}
		for slot := range res {
			if _, ok := bucket[slot]; !ok {
				delete(res, slot)
			}
		}
	}
	return slices.Sorted(maps.Keys(res))
}

// Tokens returns the number of distinct tokens.
func (t *TextIndex) Tokens() int { return len(t.buckets) }
