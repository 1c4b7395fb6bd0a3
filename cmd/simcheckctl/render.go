package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
	"github.com/kailas-cloud/simcheck/internal/domain/keyword"
	domsim "github.com/kailas-cloud/simcheck/internal/domain/similarity"
	gapuc "github.com/kailas-cloud/simcheck/internal/usecase/gap"
)

func renderMarkdown(md, style string) (string, error) {
	out, err := glamour.Render(md, style)
	if err != nil {
		return "", fmt.Errorf("render output: %w", err)
	}
	return out, nil
}

func reportMarkdown(r *domsim.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Similarity check (%s)\n\n", orDash(r.Source))
	fmt.Fprintf(&b, "**%s**\n\n%s\n\n", r.Recommendation.Message, r.Recommendation.Details)

	if len(r.Matches) == 0 {
		b.WriteString("No similar content found.\n")
		return b.String()
	}

	b.WriteString("## Closest matches\n\n| # | Title | Similarity | Category |\n|---|---|---|---|\n")
	for i, m := range r.Matches {
		fmt.Fprintf(&b, "| %d | %s | %s%% | %s |\n", i+1, cell(m.Title), m.Similarity, cell(m.Category))
	}

	fmt.Fprintf(&b, "\n## Keywords\n\n- Draft: %s\n- Closest match: %s\n", keywordList(r.DraftKeywords), keywordList(r.SimilarKeywords))

	if wc := r.WordComparison; wc != nil {
		fmt.Fprintf(&b, "\n## Word overlap\n\n- Matching words: %d (%s%%)\n- Matching phrases: %d (%s%%)\n",
			wc.Metrics.MatchingWords, wc.Metrics.WordSimilarity,
			wc.Metrics.MatchingPhrases, wc.Metrics.PhraseSimilarity)
	}

	for _, an := range r.Analyses {
		fmt.Fprintf(&b, "\n## %s (%s%%)\n\n", an.Title, an.SimilarityPercent)
		if an.Error != "" {
			fmt.Fprintf(&b, "_%s_\n", an.Error)
			continue
		}
		b.WriteString(an.Narrative)
		b.WriteString("\n")
	}
	return b.String()
}

func gapsMarkdown(p domgap.RunParams, res gapuc.Result, top int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Content gaps: %s, %s depth\n\n", p.Variant, p.Depth)
	fmt.Fprintf(&b, "Analysed %d combinations in `%s` (floor %.2f). ", res.Analyzed, p.Collection, p.MinSimilarity)
	fmt.Fprintf(&b, "Found **%d** gaps: %d high, %d medium, %d low.\n", res.Stats.Total, res.Stats.High, res.Stats.Medium, res.Stats.Low)
	if len(res.FailedBatches) > 0 {
		fmt.Fprintf(&b, "\nBatches skipped after errors: %v\n", res.FailedBatches)
	}
	if len(res.Gaps) == 0 {
		return b.String()
	}

	b.WriteString("\n| Score | Search query | Reason |\n|---|---|---|\n")
	for _, g := range res.Gaps[:min(top, len(res.Gaps))] {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", g.OpportunityScore, cell(g.SearchQuery), cell(g.Reason))
	}
	if len(res.Gaps) > top {
		fmt.Fprintf(&b, "\n_%d more in the CSV export._\n", len(res.Gaps)-top)
	}
	return b.String()
}

func keywordList(kws []keyword.Keyword) string {
	if len(kws) == 0 {
		return "-"
	}
	parts := make([]string, len(kws))
	for i, k := range kws {
		parts[i] = fmt.Sprintf("%s (%d)", k.Word, k.Count)
	}
	return strings.Join(parts, ", ")
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
