package tvu

import "math"

// CombineSourceUncertainty combines the resolved source uncertainties of a
// cell's contributing points into one cell-level value:
//
//	sqrt( Σ(wᵢ²·uᵢ²) / Σ(wᵢ²) )
//
// Weights enter squared because a contribution to a weighted average
// influences the result in proportion to its squared weight; this keeps a
// poorly-known minority contributor from being diluted by a high-weight,
// low-uncertainty source. With a single contributor it degenerates to that
// contributor's uncertainty.
func CombineSourceUncertainty(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var num, den float64
	for _, p := range points {
		w2 := p.Weight * p.Weight
		num += w2 * p.SourceUncertainty * p.SourceUncertainty
		den += w2
	}
	if den == 0 {
		return 0
	}
	return math.Sqrt(num / den)
}
