// Package comparison computes literal word and phrase overlap between two texts.
package comparison

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	// MaxExactMatches caps the exact word matches kept in a Comparison.
	MaxExactMatches = 100
	// MaxPhraseMatches caps the phrase matches kept in a Comparison.
	MaxPhraseMatches = 50

	phraseWords     = 3
	minPhraseLength = 10
	minWordLength   = 3
)

// WordMatch is a word of the compared text that also appears in the draft.
type WordMatch struct {
	Word     string `json:"word"`
	Position int    `json:"position"`
}

// PhraseMatch is a three-word phrase shared by both texts.
type PhraseMatch struct {
	Phrase       string `json:"phrase"`
	DraftStart   int    `json:"draftStart"`
	SimilarStart int    `json:"similarStart"`
}

// Metrics summarises the overlap. Similarities are percentages formatted with one decimal.
type Metrics struct {
	TotalDraftWords   int    `json:"totalDraftWords"`
	TotalSimilarWords int    `json:"totalSimilarWords"`
	MatchingWords     int    `json:"matchingWords"`
	MatchingPhrases   int    `json:"matchingPhrases"`
	WordSimilarity    string `json:"wordSimilarity"`
	PhraseSimilarity  string `json:"phraseSimilarity"`
}

// Comparison is the literal overlap between a draft and one existing document.
type Comparison struct {
	ExactMatches  []WordMatch   `json:"exactMatches"`
	PhraseMatches []PhraseMatch `json:"phraseMatches"`
	Metrics       Metrics       `json:"metrics"`
}

// Compare finds words of similar that occur in draft, and three-word phrases
// that occur in both. Match totals in Metrics are counted before capping.
func Compare(draft, similar string) Comparison {
	draftWords := normalize(draft)
	similarWords := normalize(similar)

	draftSet := make(map[string]struct{}, len(draftWords))
	for _, w := range draftWords {
		draftSet[w] = struct{}{}
	}

	var exact []WordMatch
	matchingWords := 0
	for i, w := range similarWords {
		if _, ok := draftSet[w]; !ok || len(w) <= minWordLength {
			continue
		}
		matchingWords++
		if len(exact) < MaxExactMatches {
			exact = append(exact, WordMatch{Word: w, Position: i})
		}
	}

	// phrase -> ascending start positions in similar
	similarPhrases := make(map[string][]int)
	for j := 0; j+phraseWords <= len(similarWords); j++ {
		p := strings.Join(similarWords[j:j+phraseWords], " ")
		similarPhrases[p] = append(similarPhrases[p], j)
	}

	var phrases []PhraseMatch
	matchingPhrases := 0
	for i := 0; i+phraseWords <= len(draftWords); i++ {
		p := strings.Join(draftWords[i:i+phraseWords], " ")
		if len(p) <= minPhraseLength {
			continue
		}
		for _, j := range similarPhrases[p] {
			matchingPhrases++
			if len(phrases) < MaxPhraseMatches {
				phrases = append(phrases, PhraseMatch{Phrase: p, DraftStart: i, SimilarStart: j})
			}
		}
	}

	longest := max(len(draftWords), len(similarWords))
	return Comparison{
		ExactMatches:  exact,
		PhraseMatches: phrases,
		Metrics: Metrics{
			TotalDraftWords:   len(draftWords),
			TotalSimilarWords: len(similarWords),
			MatchingWords:     matchingWords,
			MatchingPhrases:   matchingPhrases,
			WordSimilarity:    percent(matchingWords, longest),
			PhraseSimilarity:  percent(matchingPhrases, longest),
		},
	}
}

// normalize lowercases text, turns non-word characters into spaces and splits it.
func normalize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r) || unicode.IsSpace(r)
	})
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(n)/float64(total)*100, 'f', 1, 64)
}
