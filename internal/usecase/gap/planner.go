package gap

import (
	"fmt"

	"github.com/kailas-cloud/simcheck/internal/domain"
	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
)

// Request selects what a gap analysis covers.
type Request struct {
	Variant       string  `json:"variant"`
	Source        string  `json:"source"`
	Depth         string  `json:"depth"`
	MinSimilarity float64 `json:"minSimilarity"` // 0 uses the variant floor
	FunnelFocus   string  `json:"funnelFocus"`
	IndustryFocus string  `json:"industryFocus"`
}

// PlannerOptions carries the catalogs, scoring rules and default floors.
type PlannerOptions struct {
	Topics      domgap.Taxonomy
	Funnel      domgap.FunnelTaxonomy
	Rules       domgap.Rules
	FunnelRules domgap.FunnelRules
	TopicFloor  float64
	FunnelFloor float64
}

// Planner turns a Request into an analyzer Job.
type Planner struct {
	opts    PlannerOptions
	sources CollectionResolver
}

// NewPlanner creates a planner.
func NewPlanner(sources CollectionResolver, opts PlannerOptions) *Planner {
	return &Planner{opts: opts, sources: sources}
}

// Plan validates req and enumerates its combinations.
func (p *Planner) Plan(req Request) (domgap.RunParams, Job, error) {
	variant, err := domgap.ParseVariant(req.Variant)
	if err != nil {
		return domgap.RunParams{}, Job{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	depth, err := domgap.ParseDepth(req.Depth)
	if err != nil {
		return domgap.RunParams{}, Job{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if req.MinSimilarity < 0 || req.MinSimilarity > 1 {
		return domgap.RunParams{}, Job{}, fmt.Errorf("%w: minSimilarity must be within [0, 1]", domain.ErrInvalidInput)
	}

	params := domgap.RunParams{
		Variant:       variant,
		Source:        req.Source,
		Collection:    p.sources.CollectionFor(req.Source),
		Depth:         depth,
		MinSimilarity: req.MinSimilarity,
	}
	job := Job{Variant: variant, Collection: params.Collection}

	switch variant {
	case domgap.VariantFunnel:
		opts, err := domgap.FunnelOptions{
			Depth:    depth,
			Focus:    req.FunnelFocus,
			Industry: req.IndustryFocus,
		}.Normalize(p.opts.Funnel)
		if err != nil {
			return domgap.RunParams{}, Job{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		params.FunnelFocus, params.IndustryFocus = opts.Focus, opts.Industry
		job.Combinations = domgap.FunnelCombinations(p.opts.Funnel, opts, p.opts.FunnelRules)
		job.Scorer = p.opts.FunnelRules
		job.Floor = orDefault(p.opts.FunnelFloor, variant.DefaultFloor())
	default:
		job.Combinations = domgap.Combinations(p.opts.Topics, depth, p.opts.Rules)
		job.Scorer = p.opts.Rules
		job.Floor = orDefault(p.opts.TopicFloor, variant.DefaultFloor())
	}

	if req.MinSimilarity > 0 {
		job.Floor = req.MinSimilarity
	}
	params.MinSimilarity = job.Floor
	return params, job, nil
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
