package gap

import "sort"

// Combination is one candidate query. Funnel combinations put the pattern in
// Aspect and the funnel stage in AspectCategory, and fill the funnel fields.
type Combination struct {
	Topic          string `json:"topic"`
	Aspect         string `json:"aspect"`
	TopicCategory  string `json:"topicCategory"`
	AspectCategory string `json:"aspectCategory"`
	SearchQuery    string `json:"searchQuery"`
	PriorityScore  int    `json:"priorityScore"`

	FunnelStage       string      `json:"funnelStage,omitempty"`
	ContentType       ContentType `json:"contentType,omitempty"`
	IndustryRelevance string      `json:"industryRelevance,omitempty"`
}

// Combinations enumerates topic category, aspect category, topic and aspect
// in declaration order, stops at the depth cap, then orders by priority
// (descending, stable).
func Combinations(t Taxonomy, depth Depth, rules Rules) []Combination {
	limit := depth.Limit(VariantTopicAspect)
	var out []Combination

enumerate:
	for _, tc := range t.Topics {
		for _, ac := range t.Aspects {
			for _, topic := range tc.Items {
				for _, aspect := range ac.Items {
					if limit > 0 && len(out) >= limit {
						break enumerate
					}
					out = append(out, Combination{
						Topic:          topic,
						Aspect:         aspect,
						TopicCategory:  tc.Name,
						AspectCategory: ac.Name,
						SearchQuery:    topic + " " + aspect,
						PriorityScore:  rules.Priority(topic, aspect, tc.Name, ac.Name),
					})
				}
			}
		}
	}

	SortByPriority(out)
	return out
}

// SortByPriority orders combinations by descending priority, keeping
// enumeration order on ties.
func SortByPriority(cs []Combination) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].PriorityScore > cs[j].PriorityScore })
}
