package gap

import (
	"testing"
)

func smallFunnel() FunnelTaxonomy {
	return FunnelTaxonomy{
		Stages: []FunnelStage{
			{Name: StageAwareness, Categories: []FunnelCategory{{Name: "defs", Topics: []string{"what is X", "Y"}}}},
			{Name: StageProblemRecognition, Categories: []FunnelCategory{{Name: "pains", Topics: []string{"Z"}}}},
			{Name: IndustriesStage, Categories: []FunnelCategory{
				{Name: "saas", Topics: []string{"SaaS metrics", "churn"}},
				{Name: "fintech", Topics: []string{"wallets"}},
			}},
		},
		Patterns: map[string][]string{
			StageAwareness:          {"what is {topic}", "introduction to {topic}", "{topic} explained", "{topic} overview"},
			StageProblemRecognition: {"why {topic} matters", "{topic} challenges", "{topic} problems"},
		},
	}
}

func find(cs []Combination, query, stage string) (Combination, bool) {
	for _, c := range cs {
		if c.SearchQuery == query && c.FunnelStage == stage {
			return c, true
		}
	}
	return Combination{}, false
}

func TestFunnelCombinations_Mixed(t *testing.T) {
	tax := smallFunnel()
	opts, err := FunnelOptions{}.Normalize(tax)
	if err != nil {
		t.Fatal(err)
	}
	got := FunnelCombinations(tax, opts, DefaultFunnelRules())

	// awareness 5 topics, problem 4, saas 5, fintech 4; three patterns each
	if len(got) != 54 {
		t.Fatalf("got %d combinations, want 54", len(got))
	}
	if got[0].PriorityScore != 100 {
		t.Errorf("top priority = %d", got[0].PriorityScore)
	}
	for i := 1; i < len(got); i++ {
		if got[i].PriorityScore > got[i-1].PriorityScore {
			t.Fatalf("not sorted at %d", i)
		}
	}

	tests := []struct {
		query, stage string
		ct           ContentType
		priority     int
		relevance    string
	}{
		{"what is what is X", StageAwareness, ContentExplanation, 100, "medium"},
		{"introduction to Y", StageAwareness, ContentList, 80, "medium"},
		{"SaaS metrics explained", StageAwareness, ContentExplanation, 100, "high"},
		{"why Z matters", StageProblemRecognition, ContentList, 75, "medium"},
		{"why churn matters", StageProblemRecognition, ContentList, 75, "high"},
		{"churn explained", IndustriesStage, ContentExplanation, 65, "high"},
	}
	for _, tt := range tests {
		c, ok := find(got, tt.query, tt.stage)
		if !ok {
			t.Errorf("missing %q in %s", tt.query, tt.stage)
			continue
		}
		if c.ContentType != tt.ct || c.PriorityScore != tt.priority || c.IndustryRelevance != tt.relevance {
			t.Errorf("%q = %s/%d/%s, want %s/%d/%s", tt.query,
				c.ContentType, c.PriorityScore, c.IndustryRelevance, tt.ct, tt.priority, tt.relevance)
		}
		if c.AspectCategory != tt.stage {
			t.Errorf("%q aspect category = %s", tt.query, c.AspectCategory)
		}
	}
}

func TestFunnelCombinations_FocusedIndustry(t *testing.T) {
	tax := smallFunnel()
	opts, err := FunnelOptions{Focus: StageProblemRecognition, Industry: "saas"}.Normalize(tax)
	if err != nil {
		t.Fatal(err)
	}
	got := FunnelCombinations(tax, opts, DefaultFunnelRules())
	if len(got) != 9 {
		t.Fatalf("got %d combinations, want 9", len(got))
	}
	c, ok := find(got, "Z challenges", StageProblemRecognition)
	if !ok {
		t.Fatal("missing Z challenges")
	}
	// base 50 + stage 15 + list 10 + focused industry 10
	if c.PriorityScore != 85 {
		t.Errorf("priority = %d", c.PriorityScore)
	}
	if _, ok := find(got, "why wallets matters", StageProblemRecognition); ok {
		t.Error("other industries must not be merged when one is focused")
	}
}

func TestFunnelCombinations_DepthCap(t *testing.T) {
	tax := smallFunnel()
	opts, _ := FunnelOptions{Depth: DepthQuick}.Normalize(tax)
	if n := len(FunnelCombinations(tax, opts, DefaultFunnelRules())); n != 25 {
		t.Errorf("quick kept %d, want 25", n)
	}
}

func TestFunnelOptions_Normalize(t *testing.T) {
	tax := smallFunnel()
	if _, err := (FunnelOptions{Industry: "mining"}).Normalize(tax); err == nil {
		t.Error("expected unknown industry error")
	}
	if _, err := (FunnelOptions{Focus: "retention"}).Normalize(tax); err == nil {
		t.Error("expected unknown focus error")
	}
	o, err := FunnelOptions{}.Normalize(tax)
	if err != nil || o.Focus != FocusMixed || o.Industry != IndustryAll || o.Depth != DepthStandard {
		t.Errorf("defaults = %+v, %v", o, err)
	}
}

func TestDetectContentType(t *testing.T) {
	tests := map[string]ContentType{
		"{topic} vs {alternative}": ContentComparison,
		"{topic} comparison":       ContentComparison,
		"how to choose {topic}":    ContentGuide,
		"guide to {topic}":         ContentGuide,
		"what is {topic}":          ContentExplanation,
		"{topic} explained":        ContentExplanation,
		"best {topic} for":         ContentList,
		"{topic} challenges":       ContentList, // the placeholder contains "top"
		"future of tools":          ContentTrend,
		"plain pattern":            ContentGuide,
	}
	for pattern, want := range tests {
		if got := DetectContentType(pattern); got != want {
			t.Errorf("DetectContentType(%q) = %s, want %s", pattern, got, want)
		}
	}
}

func TestFunnelPriority_Capped(t *testing.T) {
	r := DefaultFunnelRules()
	got := r.Priority("what is AI automation guide", StageAwareness, ContentGuide, "saas")
	if got != MaxScore {
		t.Errorf("Priority() = %d", got)
	}
	if got := r.Priority("plumbing", "content_types", ContentTrend, IndustryAll); got != 58 {
		t.Errorf("Priority() = %d, want 58", got)
	}
	// High-value topics match as lowercase substrings, so "plain" contains "ai".
	if got := r.Priority("plain", "content_types", ContentTrend, IndustryAll); got != 83 {
		t.Errorf("Priority(plain) = %d, want 83", got)
	}
}

func TestProfileFor(t *testing.T) {
	p := ProfileFor(StageSolutionExploration, "CMS")
	if p.Goal != "Guide evaluation and build consideration" {
		t.Errorf("goal = %q", p.Goal)
	}
	if ProfileFor("unknown", "x").Audience != "Complete beginners, newcomers to the space" {
		t.Error("unknown stage should fall back to awareness")
	}
}
