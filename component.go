package tvu

import "math"

// A ComponentKind identifies one independently modeled vertical uncertainty
// source.
type ComponentKind int

const (
	ComponentSource ComponentKind = iota
	ComponentDepth
	ComponentSubPixel
	ComponentInterpolation
	ComponentDatumTransform
)

func (k ComponentKind) String() string {
	switch k {
	case ComponentSource:
		return "source"
	case ComponentDepth:
		return "depth"
	case ComponentSubPixel:
		return "subpixel"
	case ComponentInterpolation:
		return "interpolation"
	case ComponentDatumTransform:
		return "datumtransform"
	default:
		return "unknown"
	}
}

// A Component is one uncertainty contribution to a cell, a non-negative 1σ
// magnitude in the elevation unit. A component absent from a cell's set did
// not apply there; a present component with value 0 did apply and measured
// zero. The two are deliberately distinct.
type Component struct {
	Kind  ComponentKind
	Value float64
}

// RSS combines components by root sum square:
//
//	TVU = sqrt( Σ cᵢ² )
//
// The components are modeled as statistically independent, so order does not
// matter. An empty set combines to 0.
func RSS(components []Component) float64 {
	var sum float64
	for _, c := range components {
		sum += c.Value * c.Value
	}
	return math.Sqrt(sum)
}

// Accumulate combines the TVU values of two passes touching the same cell,
// treating the passes as independent evidence: sqrt(prev² + next²). A NaN on
// either side (no data in that pass) yields the other value unchanged.
func Accumulate(prev, next float64) float64 {
	switch {
	case math.IsNaN(prev):
		return next
	case math.IsNaN(next):
		return prev
	default:
		return math.Sqrt(prev*prev + next*next)
	}
}

// FoldTVU reduces an ordered sequence of per-pass TVU values for one cell
// into a final value. In accumulate mode the passes are RSS-combined;
// otherwise the last pass with data wins. NaN marks a pass without data for
// the cell; a cell no pass touched folds to NaN.
func FoldTVU(passValues []float64, accumulate bool) float64 {
	result := math.NaN()
	for _, v := range passValues {
		if math.IsNaN(v) {
			continue
		}
		if accumulate {
			result = Accumulate(result, v)
		} else {
			result = v
		}
	}
	return result
}
