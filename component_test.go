package tvu_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-tvu"
)

func TestRSS(t *testing.T) {
	components := []tvu.Component{
		{Kind: tvu.ComponentSource, Value: 3},
		{Kind: tvu.ComponentDepth, Value: 4},
	}
	assert.Equal(t, 5.0, tvu.RSS(components))
	assert.Equal(t, 0.0, tvu.RSS(nil))

	// A present zero-valued component does not change the combination.
	withZero := append(components, tvu.Component{Kind: tvu.ComponentSubPixel, Value: 0})
	assert.Equal(t, 5.0, tvu.RSS(withZero))
}

func TestRSSOrderIndependent(t *testing.T) {
	components := []tvu.Component{
		{Kind: tvu.ComponentSource, Value: 0.12},
		{Kind: tvu.ComponentDepth, Value: 2},
		{Kind: tvu.ComponentSubPixel, Value: 0.034},
		{Kind: tvu.ComponentInterpolation, Value: 1.5},
		{Kind: tvu.ComponentDatumTransform, Value: 0.08},
	}
	expected := tvu.RSS(components)
	r := rand.New(rand.NewPCG(0, 0))
	for range 20 {
		r.Shuffle(len(components), func(i, j int) {
			components[i], components[j] = components[j], components[i]
		})
		actual := tvu.RSS(components)
		assert.True(t, math.Abs(actual-expected) < 1e-12)
	}
}

func TestAccumulate(t *testing.T) {
	// The 3-4-5 triangle.
	assert.Equal(t, 5.0, tvu.Accumulate(3, 4))
	assert.Equal(t, 5.0, tvu.Accumulate(4, 3))

	// A pass without data leaves the other side unchanged.
	assert.Equal(t, 3.0, tvu.Accumulate(3, math.NaN()))
	assert.Equal(t, 4.0, tvu.Accumulate(math.NaN(), 4))
	assert.True(t, math.IsNaN(tvu.Accumulate(math.NaN(), math.NaN())))
}

func TestFoldTVU(t *testing.T) {
	assert.Equal(t, 5.0, tvu.FoldTVU([]float64{3, 4}, true))
	assert.Equal(t, 4.0, tvu.FoldTVU([]float64{3, 4}, false))
	assert.Equal(t, 3.0, tvu.FoldTVU([]float64{3, math.NaN()}, false))
	assert.True(t, math.IsNaN(tvu.FoldTVU(nil, true)))
	assert.True(t, math.IsNaN(tvu.FoldTVU([]float64{math.NaN()}, false)))
}
