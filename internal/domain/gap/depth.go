package gap

import "fmt"

// Variant selects the combination generator and its scoring.
type Variant string

// Analyzer variants.
const (
	VariantTopicAspect Variant = "topic_aspect"
	VariantFunnel      Variant = "funnel"
)

// ParseVariant validates a variant name. Empty means topic x aspect.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case "", VariantTopicAspect:
		return VariantTopicAspect, nil
	case VariantFunnel:
		return VariantFunnel, nil
	default:
		return "", fmt.Errorf("unknown gap variant %q", s)
	}
}

// DefaultFloor is the similarity below which a combination counts as a gap.
func (v Variant) DefaultFloor() float64 {
	if v == VariantFunnel {
		return 0.3
	}
	return 0.4
}

// Depth caps how many combinations are analysed.
type Depth string

// Analysis depths.
const (
	DepthQuick         Depth = "quick"
	DepthStandard      Depth = "standard"
	DepthComprehensive Depth = "comprehensive"
)

// ParseDepth validates a depth name. Empty means standard.
func ParseDepth(s string) (Depth, error) {
	switch Depth(s) {
	case "", DepthStandard:
		return DepthStandard, nil
	case DepthQuick, DepthComprehensive:
		return Depth(s), nil
	default:
		return "", fmt.Errorf("unknown analysis depth %q", s)
	}
}

// Limit returns the combination cap for the variant; 0 means unbounded.
func (d Depth) Limit(v Variant) int {
	if v == VariantFunnel {
		switch d {
		case DepthQuick:
			return 25
		case DepthComprehensive:
			return 500
		default:
			return 100
		}
	}
	switch d {
	case DepthQuick:
		return 10
	case DepthComprehensive:
		return 0
	default:
		return 50
	}
}
