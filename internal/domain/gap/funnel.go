package gap

import (
	"fmt"
	"slices"
	"strings"
)

// Funnel focus values that are not stage or industry names.
const (
	FocusMixed  = "mixed"
	IndustryAll = "all"
)

const (
	topicsPerCategory   = 50
	patternsPerTopic    = 3
	industryTopicsOnAll = 10
)

// ContentType is the editorial format implied by a query pattern.
type ContentType string

// Content types.
const (
	ContentGuide       ContentType = "guide"
	ContentExplanation ContentType = "explanation"
	ContentComparison  ContentType = "comparison"
	ContentList        ContentType = "list"
	ContentTrend       ContentType = "trend"
)

// FunnelOptions selects the slice of the funnel taxonomy to enumerate.
type FunnelOptions struct {
	Depth    Depth
	Focus    string // FocusMixed or a stage name
	Industry string // IndustryAll or an industry name
}

// Normalize fills defaults and validates names against t.
func (o FunnelOptions) Normalize(t FunnelTaxonomy) (FunnelOptions, error) {
	if o.Depth == "" {
		o.Depth = DepthStandard
	}
	if o.Focus == "" {
		o.Focus = FocusMixed
	}
	if o.Industry == "" {
		o.Industry = IndustryAll
	}
	if o.Focus != FocusMixed {
		if _, ok := t.Stage(o.Focus); !ok {
			return o, fmt.Errorf("unknown funnel focus %q", o.Focus)
		}
	}
	if o.Industry != IndustryAll && !t.HasIndustry(o.Industry) {
		return o, fmt.Errorf("unknown industry %q", o.Industry)
	}
	return o, nil
}

// FunnelRules are the point values of the funnel variant.
type FunnelRules struct {
	Base int

	HighValueTopics     []string // case-insensitive substrings of the topic
	HighValueTopicBonus int

	StageBonus map[string]int
	TypeBonus  map[ContentType]int

	FocusedIndustryBonus int

	SearchIntentTerms []string // substrings of the topic
	SearchIntentBonus int
}

// DefaultFunnelRules returns the stock funnel point system.
func DefaultFunnelRules() FunnelRules {
	return FunnelRules{
		Base: 50,
		HighValueTopics: []string{
			"AI", "machine learning", "cloud computing", "cybersecurity", "API",
			"SaaS", "DevOps", "automation", "digital transformation", "data analytics",
		},
		HighValueTopicBonus: 25,
		StageBonus: map[string]int{
			StageAwareness:           20,
			StageProblemRecognition:  15,
			StageSolutionExploration: 10,
		},
		TypeBonus: map[ContentType]int{
			ContentGuide:       15,
			ContentExplanation: 15,
			ContentComparison:  12,
			ContentList:        10,
			ContentTrend:       8,
		},
		FocusedIndustryBonus: 10,
		SearchIntentTerms:    []string{"what is", "how to", "best", "vs", "guide", "tutorial", "explained", "overview", "introduction"},
		SearchIntentBonus:    15,
	}
}

// Priority scores a funnel topic.
func (r FunnelRules) Priority(topic, stage string, ct ContentType, industry string) int {
	p := r.Base
	lower := strings.ToLower(topic)
	for _, hv := range r.HighValueTopics {
		if strings.Contains(lower, strings.ToLower(hv)) {
			p += r.HighValueTopicBonus
			break
		}
	}
	p += r.StageBonus[stage]
	p += r.TypeBonus[ct]
	if industry != IndustryAll {
		p += r.FocusedIndustryBonus
	}
	if containsAny(topic, r.SearchIntentTerms) {
		p += r.SearchIntentBonus
	}
	return clamp(p)
}

// Opportunity of a funnel gap is its priority.
func (r FunnelRules) Opportunity(c Combination, _ int) int {
	return clamp(c.PriorityScore)
}

// DetectContentType classifies a query pattern. Checks run in a fixed order
// and match on the raw pattern text, placeholder included.
func DetectContentType(pattern string) ContentType {
	has := func(subs ...string) bool { return containsAny(pattern, subs) }
	switch {
	case has("vs", "comparison"):
		return ContentComparison
	case has("guide", "how to"):
		return ContentGuide
	case has("what is", "explained"):
		return ContentExplanation
	case has("best", "top"):
		return ContentList
	case has("trends", "future"):
		return ContentTrend
	default:
		return ContentGuide
	}
}

// FunnelCombinations enumerates stage, category, topic and the first three
// stage patterns, merging industry topics into every category. Enumeration
// stops at the depth cap; the result is ordered by priority (stable).
func FunnelCombinations(t FunnelTaxonomy, opts FunnelOptions, rules FunnelRules) []Combination {
	limit := opts.Depth.Limit(VariantFunnel)
	industryTopics := t.IndustryTopics(opts.Industry)

	extra := industryTopics
	if opts.Industry == IndustryAll {
		extra = industryTopics[:min(industryTopicsOnAll, len(industryTopics))]
	}

	var out []Combination
	full := func() bool { return limit > 0 && len(out) >= limit }

	for _, stage := range t.Stages {
		if opts.Focus != FocusMixed && stage.Name != opts.Focus {
			continue
		}
		patterns := t.PatternsFor(stage.Name)
		patterns = patterns[:min(patternsPerTopic, len(patterns))]

		for _, cat := range stage.Categories {
			topics := append(slices.Clone(cat.Topics), extra...)
			topics = topics[:min(topicsPerCategory, len(topics))]

			for _, topic := range topics {
				if full() {
					break
				}
				for _, pattern := range patterns {
					if full() {
						break
					}
					ct := DetectContentType(pattern)
					relevance := "medium"
					if slices.Contains(industryTopics, topic) {
						relevance = "high"
					}
					out = append(out, Combination{
						Topic:             topic,
						Aspect:            pattern,
						TopicCategory:     cat.Name,
						AspectCategory:    stage.Name,
						SearchQuery:       strings.Replace(pattern, "{topic}", topic, 1),
						PriorityScore:     rules.Priority(topic, stage.Name, ct, opts.Industry),
						FunnelStage:       stage.Name,
						ContentType:       ct,
						IndustryRelevance: relevance,
					})
				}
			}
		}
	}

	SortByPriority(out)
	return out
}

// StageProfile describes who a funnel stage's content is for.
type StageProfile struct {
	Audience    string `json:"targetAudience"`
	Goal        string `json:"contentGoal"`
	Description string `json:"contentDescription"`
}

// ProfileFor returns the editorial brief for a funnel gap. Unknown stages
// use the awareness brief.
func ProfileFor(stage, topic string) StageProfile {
	switch stage {
	case StageProblemRecognition:
		return StageProfile{
			Audience: "People experiencing related challenges",
			Goal:     "Help identify problems and create urgency",
			Description: fmt.Sprintf("Develop content that helps readers recognize when they need to consider %q. "+
				"Focus on pain points, warning signs, and scenarios where this topic becomes relevant to their business or workflow.", topic),
		}
	case StageSolutionExploration:
		return StageProfile{
			Audience: "Actively evaluating options and approaches",
			Goal:     "Guide evaluation and build consideration",
			Description: fmt.Sprintf("Produce content that guides readers through different approaches to %q. "+
				"Compare options, methodologies, and help them understand how to evaluate different solutions.", topic),
		}
	default:
		return StageProfile{
			Audience: "Complete beginners, newcomers to the space",
			Goal:     "Educate and build brand awareness",
			Description: fmt.Sprintf("Create educational content that introduces %q to newcomers. "+
				"This content should focus on explaining basic concepts, providing clear definitions, "+
				"and helping readers understand the fundamentals without assuming prior knowledge.", topic),
		}
	}
}
