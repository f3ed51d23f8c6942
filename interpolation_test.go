package tvu_test

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-tvu"
)

// constSurface is a Surface with the same elevation everywhere.
type constSurface struct {
	value float64
}

func (s constSurface) InterpolatedAt(ctx context.Context, x, y float64) (float64, error) {
	return s.value, nil
}

// biasGridder estimates a flat surface at the training points' weighted mean
// elevation plus a fixed bias, so every residual magnitude is known.
type biasGridder struct {
	bias float64
}

func (g biasGridder) Estimate(ctx context.Context, points []tvu.Point, method string) (tvu.Surface, error) {
	var zw, w float64
	for _, p := range points {
		zw += p.Weight * p.Z
		w += p.Weight
	}
	return constSurface{value: zw/w + g.bias}, nil
}

func flatPoints(n int) []tvu.Point {
	r := rand.New(rand.NewPCG(7, 0))
	points := make([]tvu.Point, n)
	for i := range points {
		points[i] = tvu.Point{
			X:      100 * r.Float64(),
			Y:      100 * r.Float64(),
			Z:      5,
			Weight: 1,
		}
	}
	return points
}

func TestFitInterpolationModelKnownResidual(t *testing.T) {
	// Flat data and a gridder biased by 0.5: every held-out residual is
	// exactly 0.5, so the model is 0.5 at every distance.
	model, err := tvu.FitInterpolationModel(t.Context(), biasGridder{bias: 0.5}, flatPoints(100), "linear", tvu.WithSeed(1))
	assert.NoError(t, err)
	for _, distance := range []float64{0, 1, 17.3, 1e6} {
		assert.Equal(t, 0.5, model.UncertaintyAt(distance))
	}
}

func TestFitInterpolationModelDeterministic(t *testing.T) {
	points := flatPoints(80)
	a, err := tvu.FitInterpolationModel(t.Context(), biasGridder{bias: 0.25}, points, "linear", tvu.WithSeed(42))
	assert.NoError(t, err)
	b, err := tvu.FitInterpolationModel(t.Context(), biasGridder{bias: 0.25}, points, "linear", tvu.WithSeed(42))
	assert.NoError(t, err)
	for _, distance := range []float64{0, 3, 12, 55} {
		assert.Equal(t, a.UncertaintyAt(distance), b.UncertaintyAt(distance))
	}
}

func TestFitInterpolationModelInsufficientSample(t *testing.T) {
	for i, tc := range []struct {
		points  []tvu.Point
		options []tvu.SplitSampleOption
	}{
		{points: nil},
		{points: flatPoints(5)},
		{
			points:  flatPoints(30),
			options: []tvu.SplitSampleOption{tvu.WithMinSamples(50)},
		},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			_, err := tvu.FitInterpolationModel(t.Context(), biasGridder{}, tc.points, "linear", tc.options...)
			var sampleErr *tvu.InsufficientSampleError
			assert.True(t, errors.As(err, &sampleErr))
		})
	}
}

func TestGridSurfaceInterpolatedAt(t *testing.T) {
	def := tvu.GridDef{
		XMin:      0,
		YMax:      30,
		CellSizeX: 10,
		CellSizeY: 10,
		Width:     3,
		Height:    3,
	}
	raster := tvu.NewRaster(def)
	for row, values := range [][]float64{
		{0, 1, 2},
		{2, 3, 4},
		{4, 5, 6},
	} {
		for col, v := range values {
			raster.SetValue(tvu.CellCoord{C: col, R: row}, v)
		}
	}
	surface := tvu.NewGridSurface(raster)

	for i, tc := range []struct {
		x        float64
		y        float64
		expected float64
	}{
		// Cell centers sample exactly.
		{x: 5, y: 25, expected: 0},
		{x: 15, y: 25, expected: 1},
		{x: 5, y: 15, expected: 2},
		{x: 15, y: 15, expected: 3},
		// Midpoints interpolate linearly.
		{x: 10, y: 25, expected: 0.5},
		{x: 5, y: 20, expected: 1},
		{x: 10, y: 20, expected: 1.5},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			actual, err := surface.InterpolatedAt(t.Context(), tc.x, tc.y)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestObservationIndexNearestDistance(t *testing.T) {
	points := []tvu.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 0, Y: 10},
	}
	index := tvu.NewObservationIndex(points)
	assert.Equal(t, 0.0, index.NearestDistance(0, 0))
	assert.Equal(t, 2.0, index.NearestDistance(8, 0))
	assert.Equal(t, 5.0, index.NearestDistance(3, 4))
	assert.Zero(t, tvu.NewObservationIndex(nil))
}

func TestInterpolationModelMonotone(t *testing.T) {
	// The fitted model must never decrease with distance, including
	// between bin centers.
	model, err := tvu.FitInterpolationModel(t.Context(), biasGridder{bias: 1}, flatPoints(200), "linear", tvu.WithSeed(3), tvu.WithDistanceBins(8))
	assert.NoError(t, err)
	prev := math.Inf(-1)
	for distance := 0.0; distance <= 50; distance += 0.5 {
		v := model.UncertaintyAt(distance)
		assert.True(t, prev <= v)
		prev = v
	}
}
