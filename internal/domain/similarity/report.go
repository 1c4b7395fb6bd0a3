package similarity

import (
	"strconv"
	"unicode/utf8"

	"github.com/kailas-cloud/simcheck/internal/domain/comparison"
	"github.com/kailas-cloud/simcheck/internal/domain/keyword"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

// TruncationSuffix marks display content that was cut.
const TruncationSuffix = "... (content truncated for display)"

// Report is the full similarity verdict for one draft. It is derived from
// the draft and the corpus state at query time and is never stored.
type Report struct {
	Recommendation  Recommendation         `json:"recommendation"`
	DraftKeywords   []keyword.Keyword      `json:"draftKeywords"`
	SimilarKeywords []keyword.Keyword      `json:"similarKeywords"`
	WordComparison  *comparison.Comparison `json:"wordComparison,omitempty"`
	Analyses        []Analysis             `json:"analyses"`
	Matches         []Match                `json:"matches"`
	Source          string                 `json:"source"`
	TotalChecked    int                    `json:"totalChecked"`
}

// Analysis is the narrative comparison of the draft with one match.
// Exactly one of Narrative and Error is set.
type Analysis struct {
	Title             string `json:"title"`
	URL               string `json:"url,omitempty"`
	SimilarityPercent string `json:"similarityPercent"`
	Narrative         string `json:"narrative,omitempty"`
	NarrativeHTML     string `json:"narrativeHtml,omitempty"`
	Error             string `json:"error,omitempty"`
}

// Match is the display view of a ranked search result.
type Match struct {
	ID         int64             `json:"id"`
	Title      string            `json:"title"`
	URL        string            `json:"url"`
	Category   string            `json:"category"`
	Score      float64           `json:"score"`
	Similarity string            `json:"similarity"`
	Content    string            `json:"content"`
	Keywords   []keyword.Keyword `json:"keywords"`
}

// NewMatch builds the display view of r, truncating content to displayChars
// runes (0 disables truncation).
func NewMatch(r result.Result, displayChars, keywords int) Match {
	d := r.Document()
	return Match{
		ID:         d.ID(),
		Title:      d.Title(),
		URL:        d.SourceURL(),
		Category:   d.Category(),
		Score:      r.Score(),
		Similarity: FormatPercent(r.Percent()),
		Content:    TruncateForDisplay(d.Content(), displayChars),
		Keywords:   keyword.Extract(d.Content(), keywords),
	}
}

// TruncateForDisplay cuts s to limit runes and appends TruncationSuffix.
func TruncateForDisplay(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + TruncationSuffix
		}
		n++
	}
	return s
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}
