// Package keyword extracts frequent terms from free text for diagnostic display.
package keyword

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultTopN is the number of keywords returned when no limit is given.
const DefaultTopN = 10

// MinLength is the length a token must exceed to be counted.
const MinLength = 3

// Keyword is a term and its occurrence count.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Extract returns the topN most frequent non-stopword tokens of text.
// Tokens are lowercased, stripped of every character other than ASCII letters,
// digits and underscore, and dropped when they are MinLength bytes or shorter.
// Ties keep first-encountered order. topN <= 0 means DefaultTopN.
func Extract(text string, topN int) []Keyword {
	if topN <= 0 {
		topN = DefaultTopN
	}

	counts := make(map[string]int)
	var order []string
	for _, w := range Tokenize(text) {
		if len(w) <= MinLength || IsStopword(w) {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	out := make([]Keyword, len(order))
	for i, w := range order {
		out[i] = Keyword{Word: w, Count: counts[w]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Tokenize lowercases text, deletes non-word characters and splits on whitespace.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case isWordRune(r), unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
