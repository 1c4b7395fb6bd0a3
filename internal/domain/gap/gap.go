package gap

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

// Scorer turns a confirmed gap's priority into an opportunity score.
type Scorer interface {
	Opportunity(c Combination, existing int) int
}

// Gap is a combination the corpus does not cover closely enough.
type Gap struct {
	Combination

	ExistingMatches  int     `json:"existingMatches"`
	TopScore         float64 `json:"topScore"`
	ClosestTitle     string  `json:"closestTitle,omitempty"`
	OpportunityScore int     `json:"opportunityScore"`
	Reason           string  `json:"gapReason"`
}

// Assess classifies c given the index's answer to its search query. It is a
// gap when there are no matches or the best score is below floor.
func Assess(c Combination, matches []result.Result, floor float64, s Scorer) (Gap, bool) {
	if len(matches) > 0 && matches[0].Score() >= floor {
		return Gap{}, false
	}

	g := Gap{Combination: c, ExistingMatches: len(matches)}
	if len(matches) == 0 {
		g.Reason = "No existing content found"
	} else {
		top := matches[0]
		doc := top.Document()
		g.TopScore = top.Score()
		g.ClosestTitle = doc.Title()
		g.Reason = fmt.Sprintf("Closest existing content %q is only %s%% similar (threshold %s%%)",
			doc.Title(), pct(top.Score()), pct(floor))
	}
	g.OpportunityScore = s.Opportunity(c, len(matches))
	return g, true
}

// Level buckets an opportunity score.
type Level string

// Priority levels.
const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Level thresholds on the opportunity score.
const (
	HighLevelThreshold   = 80
	MediumLevelThreshold = 60
)

// LevelOf returns the priority level of an opportunity score.
func LevelOf(score int) Level {
	switch {
	case score >= HighLevelThreshold:
		return LevelHigh
	case score >= MediumLevelThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Stats summarises a set of gaps.
type Stats struct {
	Total          int `json:"total"`
	High           int `json:"high"`
	Medium         int `json:"medium"`
	Low            int `json:"low"`
	Awareness      int `json:"awareness"`
	AvgOpportunity int `json:"avgOpportunity"`
}

// Summarize counts gaps per level and stage.
func Summarize(gaps []Gap) Stats {
	s := Stats{Total: len(gaps)}
	sum := 0
	for _, g := range gaps {
		switch LevelOf(g.OpportunityScore) {
		case LevelHigh:
			s.High++
		case LevelMedium:
			s.Medium++
		default:
			s.Low++
		}
		if g.FunnelStage == StageAwareness {
			s.Awareness++
		}
		sum += g.OpportunityScore
	}
	if len(gaps) > 0 {
		s.AvgOpportunity = (sum + len(gaps)/2) / len(gaps)
	}
	return s
}

func pct(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 1, 64)
}
