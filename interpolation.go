package tvu

import (
	"context"
	"math"
	"math/rand/v2"
)

// A Surface is an interpolated elevation surface produced by the external
// gridding engine. A NaN elevation means the surface has no estimate there.
type Surface interface {
	InterpolatedAt(ctx context.Context, x, y float64) (float64, error)
}

// A Gridder is the external gridding engine. It must support being invoked on
// an arbitrary subset of points; the split-sample estimator re-grids training
// subsets through it. The method selects the interpolation algorithm, using
// the gridding engine's own module vocabulary (surface, triangulate, IDW,
// linear, nearest, ...).
type Gridder interface {
	Estimate(ctx context.Context, points []Point, method string) (Surface, error)
}

// A GridSurface adapts a gridded elevation raster into a Surface by bilinear
// interpolation between the four surrounding cell centers.
type GridSurface struct {
	raster *Raster
}

func NewGridSurface(raster *Raster) *GridSurface {
	return &GridSurface{raster: raster}
}

// InterpolatedAt returns the bilinear interpolation of the four cell-center
// values around (x, y). Coordinates within half a cell of the grid edge
// clamp to the edge cells.
func (s *GridSurface) InterpolatedAt(ctx context.Context, x, y float64) (float64, error) {
	def := s.raster.def
	fc := (x-def.XMin)/def.CellSizeX - 0.5
	fr := (def.YMax-y)/def.CellSizeY - 0.5
	c0 := int(math.Floor(fc))
	r0 := int(math.Floor(fr))
	dx := fc - float64(c0)
	dy := fr - float64(r0)
	clampC := func(c int) int { return min(max(c, 0), def.Width-1) }
	clampR := func(r int) int { return min(max(r, 0), def.Height-1) }
	v00 := s.raster.Value(CellCoord{C: clampC(c0), R: clampR(r0)})
	v10 := s.raster.Value(CellCoord{C: clampC(c0 + 1), R: clampR(r0)})
	v01 := s.raster.Value(CellCoord{C: clampC(c0), R: clampR(r0 + 1)})
	v11 := s.raster.Value(CellCoord{C: clampC(c0 + 1), R: clampR(r0 + 1)})
	return v00*(1-dx)*(1-dy) +
		v10*dx*(1-dy) +
		v01*(1-dx)*dy +
		v11*dx*dy, nil
}

// An InterpolationModel maps distance from a cell to its nearest actual
// observation to an expected interpolation uncertainty. It is fitted once per
// pass by FitInterpolationModel and is read-only afterwards.
type InterpolationModel struct {
	binWidth  float64
	binValues []float64
}

// UncertaintyAt evaluates the model at the given distance to the nearest
// observation, interpolating linearly between bin centers and clamping
// beyond the last bin.
func (m *InterpolationModel) UncertaintyAt(distance float64) float64 {
	if len(m.binValues) == 1 || m.binWidth == 0 {
		return m.binValues[0]
	}
	// Bin i is centered at (i+0.5)*binWidth.
	f := distance/m.binWidth - 0.5
	i := int(math.Floor(f))
	switch {
	case i < 0:
		return m.binValues[0]
	case len(m.binValues)-1 <= i:
		return m.binValues[len(m.binValues)-1]
	default:
		t := f - float64(i)
		return m.binValues[i]*(1-t) + m.binValues[i+1]*t
	}
}

type splitSampleConfig struct {
	holdoutFraction float64
	seed            uint64
	minSamples      int
	distanceBins    int
}

// A SplitSampleOption sets an option on FitInterpolationModel.
type SplitSampleOption func(*splitSampleConfig)

// WithHoldoutFraction sets the fraction of points withheld as the test
// subset. The default is 0.2.
func WithHoldoutFraction(fraction float64) SplitSampleOption {
	return func(c *splitSampleConfig) {
		c.holdoutFraction = fraction
	}
}

// WithSeed seeds the hold-out selection. Results are deterministic for a
// given input and seed.
func WithSeed(seed uint64) SplitSampleOption {
	return func(c *splitSampleConfig) {
		c.seed = seed
	}
}

// WithMinSamples sets the minimum number of points required to form a
// meaningful hold-out set. The default is 10.
func WithMinSamples(minSamples int) SplitSampleOption {
	return func(c *splitSampleConfig) {
		c.minSamples = minSamples
	}
}

// WithDistanceBins sets the number of distance bins in the fitted model. The
// default is 10.
func WithDistanceBins(bins int) SplitSampleOption {
	return func(c *splitSampleConfig) {
		c.distanceBins = bins
	}
}

// FitInterpolationModel measures the gridder's interpolation error
// empirically: it withholds a reproducible random subset of points, re-grids
// the rest with the selected method, and bins the absolute residuals at the
// held-out points by their distance to the nearest training observation. The
// binned means are made monotone non-decreasing, since interpolation
// confidence cannot improve with distance from data.
//
// It returns an InsufficientSampleError if too few points exist to form a
// valid hold-out set.
func FitInterpolationModel(ctx context.Context, gridder Gridder, points []Point, method string, options ...SplitSampleOption) (*InterpolationModel, error) {
	config := splitSampleConfig{
		holdoutFraction: 0.2,
		minSamples:      10,
		distanceBins:    10,
	}
	for _, option := range options {
		option(&config)
	}
	if config.distanceBins < 1 {
		config.distanceBins = 1
	}

	if len(points) < config.minSamples {
		return nil, &InsufficientSampleError{Have: len(points), Want: config.minSamples}
	}
	testCount := int(float64(len(points)) * config.holdoutFraction)
	if testCount < 1 || len(points)-testCount < 2 {
		return nil, &InsufficientSampleError{Have: len(points), Want: config.minSamples}
	}

	r := rand.New(rand.NewPCG(config.seed, 0))
	perm := r.Perm(len(points))
	test := make([]Point, 0, testCount)
	train := make([]Point, 0, len(points)-testCount)
	for i, pi := range perm {
		if i < testCount {
			test = append(test, points[pi])
		} else {
			train = append(train, points[pi])
		}
	}

	surface, err := gridder.Estimate(ctx, train, method)
	if err != nil {
		return nil, err
	}
	trainIndex := NewObservationIndex(train)

	type residual struct {
		distance  float64
		magnitude float64
	}
	residuals := make([]residual, 0, len(test))
	maxDistance := 0.0
	for _, p := range test {
		z, err := surface.InterpolatedAt(ctx, p.X, p.Y)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(z) {
			continue
		}
		d := trainIndex.NearestDistance(p.X, p.Y)
		residuals = append(residuals, residual{
			distance:  d,
			magnitude: math.Abs(z - p.Z),
		})
		maxDistance = math.Max(maxDistance, d)
	}
	if len(residuals) == 0 {
		return nil, &InsufficientSampleError{Have: 0, Want: 1}
	}

	bins := config.distanceBins
	if maxDistance == 0 {
		bins = 1
	}
	binWidth := maxDistance / float64(bins)
	sums := make([]float64, bins)
	counts := make([]int, bins)
	for _, res := range residuals {
		i := bins - 1
		if binWidth > 0 {
			i = min(int(res.distance/binWidth), bins-1)
		}
		sums[i] += res.magnitude
		counts[i]++
	}
	binValues := make([]float64, bins)
	for i := range binValues {
		if counts[i] > 0 {
			binValues[i] = sums[i] / float64(counts[i])
		} else if i > 0 {
			// Empty bin: carry the previous bin's estimate forward.
			binValues[i] = binValues[i-1]
		}
	}
	// Enforce monotonicity.
	for i := 1; i < bins; i++ {
		binValues[i] = math.Max(binValues[i], binValues[i-1])
	}

	return &InterpolationModel{
		binWidth:  binWidth,
		binValues: binValues,
	}, nil
}
