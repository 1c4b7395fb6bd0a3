// Package chunk splits long texts into pieces that fit an embedding request.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxTokens is the chunk ceiling used when none is configured.
const DefaultMaxTokens = 8000

// EstimateTokens approximates the token count of a word as ceil(runes/4).
func EstimateTokens(word string) int {
	return (utf8.RuneCountInString(word) + 3) / 4
}

// Split cuts text on single spaces into chunks whose estimated token count
// stays within maxTokens. A single word over the limit becomes its own chunk.
// Joining the chunks with a space restores text.
func Split(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if text == "" {
		return nil
	}

	var (
		chunks  []string
		current []string
		size    int
	)
	for _, w := range strings.Split(text, " ") {
		n := EstimateTokens(w)
		if size+n > maxTokens && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current, size = nil, 0
		}
		current = append(current, w)
		size += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
