// Package similarity turns ranked nearest-neighbor matches into a rewrite verdict.
package similarity

import (
	"strconv"

	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

// Action is the recommended next step for a draft.
type Action string

// Recommendation actions, from least to most severe.
const (
	ActionProceed         Action = "proceed"
	ActionMinorRevision   Action = "minor_revision"
	ActionMajorRevision   Action = "major_revision"
	ActionCompleteRewrite Action = "complete_rewrite"
)

// Color is the presentation tier of a recommendation.
type Color string

// Tier colors.
const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
)

// Band thresholds in percent. A score equal to a threshold belongs to the
// more severe band. These are product-tuned values.
const (
	RewriteThreshold       = 85.0
	MajorRevisionThreshold = 70.0
	MinorRevisionThreshold = 50.0
)

// Recommendation is the verdict for a draft.
type Recommendation struct {
	Action  Action `json:"action"`
	Message string `json:"message"`
	Details string `json:"details"`
	Color   Color  `json:"color"`
}

// Recommend decides on the single closest match, matches[0], which callers
// must pass sorted by descending score.
func Recommend(matches []result.Result) Recommendation {
	if len(matches) == 0 {
		return Recommendation{
			Action:  ActionProceed,
			Message: "🟢 GOOD: No similar content found. You're good to go!",
			Color:   ColorGreen,
		}
	}
	return ForPercent(matches[0].Percent())
}

// ForPercent maps a top similarity percentage onto its band.
func ForPercent(highest float64) Recommendation {
	pct := strconv.FormatFloat(highest, 'f', 1, 64) + "%"

	switch {
	case highest >= RewriteThreshold:
		return Recommendation{
			Action:  ActionCompleteRewrite,
			Message: "🔴 STOP: " + pct + " similarity detected! Complete rewrite required.",
			Details: "This content is too similar to existing articles. Consider a completely different angle or topic.",
			Color:   ColorRed,
		}
	case highest >= MajorRevisionThreshold:
		return Recommendation{
			Action:  ActionMajorRevision,
			Message: "🟡 CAUTION: " + pct + " similarity. Major revisions needed.",
			Details: "Significant overlap detected. Change your angle, add unique insights, or focus on different aspects.",
			Color:   ColorOrange,
		}
	case highest >= MinorRevisionThreshold:
		return Recommendation{
			Action:  ActionMinorRevision,
			Message: "🟡 REVIEW: " + pct + " similarity. Minor revisions suggested.",
			Details: "Some overlap detected. Add more unique content, personal insights, or different examples.",
			Color:   ColorYellow,
		}
	default:
		return Recommendation{
			Action:  ActionProceed,
			Message: "🟢 GOOD: " + pct + " similarity. Proceed with confidence!",
			Details: "Low similarity detected. Your content is sufficiently unique.",
			Color:   ColorGreen,
		}
	}
}
