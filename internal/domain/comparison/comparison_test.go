package comparison

import (
	"strings"
	"testing"
)

func TestCompare_ExactWords(t *testing.T) {
	c := Compare("Upload files with the picker", "The picker lets users upload images")

	words := make([]string, 0, len(c.ExactMatches))
	for _, m := range c.ExactMatches {
		words = append(words, m.Word)
	}
	if got := strings.Join(words, ","); got != "picker,upload" {
		t.Fatalf("exact matches = %s", got)
	}
	if c.ExactMatches[0].Position != 1 || c.ExactMatches[1].Position != 4 {
		t.Errorf("positions = %+v", c.ExactMatches)
	}
	if c.Metrics.TotalDraftWords != 5 || c.Metrics.TotalSimilarWords != 6 {
		t.Errorf("totals = %+v", c.Metrics)
	}
	// 2 of max(5, 6) words
	if c.Metrics.WordSimilarity != "33.3" {
		t.Errorf("word similarity = %s", c.Metrics.WordSimilarity)
	}
}

func TestCompare_Phrases(t *testing.T) {
	draft := "Learn how rich text editors handle pasted content today"
	similar := "We explain how rich text editors handle images"
	c := Compare(draft, similar)

	var phrases []string
	for _, p := range c.PhraseMatches {
		phrases = append(phrases, p.Phrase)
	}
	want := []string{"how rich text", "rich text editors", "text editors handle"}
	if strings.Join(phrases, "|") != strings.Join(want, "|") {
		t.Fatalf("phrases = %v, want %v", phrases, want)
	}
	if c.PhraseMatches[0].DraftStart != 1 || c.PhraseMatches[0].SimilarStart != 2 {
		t.Errorf("first phrase positions = %+v", c.PhraseMatches[0])
	}
	if c.Metrics.MatchingPhrases != 3 {
		t.Errorf("matching phrases = %d", c.Metrics.MatchingPhrases)
	}
	// 3 of max(9, 8) words
	if c.Metrics.PhraseSimilarity != "33.3" {
		t.Errorf("phrase similarity = %s", c.Metrics.PhraseSimilarity)
	}
}

func TestCompare_ShortPhrasesIgnored(t *testing.T) {
	c := Compare("a b c d", "a b c d")
	if len(c.PhraseMatches) != 0 {
		t.Errorf("expected short phrases to be ignored, got %v", c.PhraseMatches)
	}
}

func TestCompare_CapsButCountsAll(t *testing.T) {
	text := strings.Repeat("editor ", 150)
	c := Compare(text, text)
	if len(c.ExactMatches) != MaxExactMatches {
		t.Errorf("exact matches kept = %d", len(c.ExactMatches))
	}
	if c.Metrics.MatchingWords != 150 {
		t.Errorf("matching words = %d", c.Metrics.MatchingWords)
	}
	if len(c.PhraseMatches) != MaxPhraseMatches {
		t.Errorf("phrase matches kept = %d", len(c.PhraseMatches))
	}
}

func TestCompare_Empty(t *testing.T) {
	c := Compare("", "")
	if c.Metrics.WordSimilarity != "0.0" || c.Metrics.PhraseSimilarity != "0.0" {
		t.Errorf("metrics = %+v", c.Metrics)
	}
}

func TestNormalize_PunctuationBecomesSpace(t *testing.T) {
	got := normalize("Node.js, TypeScript!")
	if strings.Join(got, " ") != "node js typescript" {
		t.Errorf("normalize() = %v", got)
	}
}
