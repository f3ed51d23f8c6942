package tvu

import "gonum.org/v1/gonum/stat"

// SubPixelStdDev returns the weighted standard deviation of the elevations of
// the points mapped into one cell: the dispersion of raw observations below
// the grid resolution. A single observation has no measured dispersion and
// yields 0, which is still a valid component, distinct from "not applicable".
func SubPixelStdDev(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	zs := make([]float64, len(points))
	ws := make([]float64, len(points))
	for i, p := range points {
		zs[i] = p.Z
		ws[i] = p.Weight
	}
	_, stdDev := stat.PopMeanStdDev(zs, ws)
	return stdDev
}
