// Package gap enumerates candidate content topics, scores them and classifies
// which ones the indexed corpus does not cover.
package gap

import (
	"fmt"
	"slices"
)

// Category is a named, ordered list of taxonomy entries.
type Category struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// Taxonomy is the topic x aspect catalog. Slice order is declaration order
// and drives enumeration.
type Taxonomy struct {
	Topics  []Category `yaml:"topics"`
	Aspects []Category `yaml:"aspects"`
}

// Validate checks that both sides of the cross product are non-empty.
func (t Taxonomy) Validate() error {
	if len(t.Topics) == 0 {
		return fmt.Errorf("taxonomy has no topic categories")
	}
	if len(t.Aspects) == 0 {
		return fmt.Errorf("taxonomy has no aspect categories")
	}
	if err := uniqueNames(t.Topics); err != nil {
		return fmt.Errorf("topics: %w", err)
	}
	if err := uniqueNames(t.Aspects); err != nil {
		return fmt.Errorf("aspects: %w", err)
	}
	return nil
}

// FunnelCategory is a named list of topics within a funnel stage.
type FunnelCategory struct {
	Name   string   `yaml:"name"`
	Topics []string `yaml:"topics"`
}

// FunnelStage groups categories by reader intent.
type FunnelStage struct {
	Name       string           `yaml:"name"`
	Categories []FunnelCategory `yaml:"categories"`
}

// FunnelTaxonomy is the top-of-funnel catalog. The stage named IndustriesStage
// holds industry topic lists that are merged into every other category.
type FunnelTaxonomy struct {
	Stages   []FunnelStage       `yaml:"stages"`
	Patterns map[string][]string `yaml:"patterns"`
}

// Funnel stage names with dedicated patterns and scores.
const (
	StageAwareness           = "awareness"
	StageProblemRecognition  = "problem_recognition"
	StageSolutionExploration = "solution_exploration"
	IndustriesStage          = "industries"
)

// Validate checks the funnel catalog is usable.
func (t FunnelTaxonomy) Validate() error {
	if len(t.Stages) == 0 {
		return fmt.Errorf("funnel taxonomy has no stages")
	}
	if len(t.Patterns[StageAwareness]) == 0 {
		return fmt.Errorf("funnel taxonomy needs %s patterns", StageAwareness)
	}
	seen := make(map[string]bool, len(t.Stages))
	for _, s := range t.Stages {
		if s.Name == "" {
			return fmt.Errorf("funnel stage without name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate funnel stage %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Stage returns the stage with the given name.
func (t FunnelTaxonomy) Stage(name string) (FunnelStage, bool) {
	for _, s := range t.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return FunnelStage{}, false
}

// HasIndustry reports whether name is a known industry.
func (t FunnelTaxonomy) HasIndustry(name string) bool {
	ind, ok := t.Stage(IndustriesStage)
	if !ok {
		return false
	}
	return slices.ContainsFunc(ind.Categories, func(c FunnelCategory) bool { return c.Name == name })
}

// IndustryTopics returns the topics of one industry, or of all industries
// flattened in declaration order when focus is IndustryAll.
func (t FunnelTaxonomy) IndustryTopics(focus string) []string {
	ind, ok := t.Stage(IndustriesStage)
	if !ok {
		return nil
	}
	var out []string
	for _, c := range ind.Categories {
		if focus == IndustryAll || c.Name == focus {
			out = append(out, c.Topics...)
		}
	}
	return out
}

// PatternsFor returns the query patterns of a stage, falling back to awareness.
func (t FunnelTaxonomy) PatternsFor(stage string) []string {
	if p, ok := t.Patterns[stage]; ok && len(p) > 0 {
		return p
	}
	return t.Patterns[StageAwareness]
}

func uniqueNames(cs []Category) error {
	seen := make(map[string]bool, len(cs))
	for _, c := range cs {
		if c.Name == "" {
			return fmt.Errorf("category without name")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate category %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
