package gap

import (
	"slices"
	"strings"
)

// MaxScore caps every priority and opportunity score.
const MaxScore = 100

// Rules are the point values of the topic x aspect variant. The defaults are
// product-tuned and kept as data so they can be adjusted without code changes.
type Rules struct {
	Base int

	HighValueTopics     []string
	HighValueTopicBonus int

	HighValueAspects     []string // substrings of the aspect
	HighValueAspectBonus int

	GoodCombinations     map[string][]string // topic category -> aspect categories
	GoodCombinationBonus int

	ZeroMatchBonus int

	HighDemandKeywords []string // substrings of the aspect
	HighDemandBonus    int

	TrendingTopics []string
	TrendingBonus  int
}

// DefaultRules returns the stock point system.
func DefaultRules() Rules {
	return Rules{
		Base:                 50,
		HighValueTopics:      []string{"React", "Vue", "Angular", "Node.js", "Python", "AWS", "Docker", "Kubernetes"},
		HighValueTopicBonus:  20,
		HighValueAspects:     []string{"performance optimization", "security best practices", "beginner guide", "vs alternatives"},
		HighValueAspectBonus: 20,
		GoodCombinations: map[string][]string{
			"frontend": {"performance", "security", "testing", "skillLevel"},
			"backend":  {"performance", "security", "deployment", "comparison"},
			"cloud":    {"deployment", "security", "business", "comparison"},
		},
		GoodCombinationBonus: 15,
		ZeroMatchBonus:       30,
		HighDemandKeywords:   []string{"beginner", "tutorial", "guide", "vs", "best", "optimization"},
		HighDemandBonus:      20,
		TrendingTopics:       []string{"React", "Next.js", "TypeScript", "Docker", "Kubernetes", "AWS"},
		TrendingBonus:        15,
	}
}

// Priority scores a topic x aspect pair before any corpus lookup.
func (r Rules) Priority(topic, aspect, topicCategory, aspectCategory string) int {
	p := r.Base
	if slices.Contains(r.HighValueTopics, topic) {
		p += r.HighValueTopicBonus
	}
	if containsAny(aspect, r.HighValueAspects) {
		p += r.HighValueAspectBonus
	}
	if slices.Contains(r.GoodCombinations[topicCategory], aspectCategory) {
		p += r.GoodCombinationBonus
	}
	return clamp(p)
}

// Opportunity boosts the priority of a confirmed gap. existing is the number
// of matches the index returned for the combination's query.
func (r Rules) Opportunity(c Combination, existing int) int {
	s := c.PriorityScore
	if existing == 0 {
		s += r.ZeroMatchBonus
	}
	if containsAny(c.Aspect, r.HighDemandKeywords) {
		s += r.HighDemandBonus
	}
	if slices.Contains(r.TrendingTopics, c.Topic) {
		s += r.TrendingBonus
	}
	return clamp(s)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clamp(n int) int {
	return min(max(n, 0), MaxScore)
}
