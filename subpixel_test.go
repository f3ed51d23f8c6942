package tvu_test

import (
	"strconv"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-tvu"
)

func TestSubPixelStdDev(t *testing.T) {
	for i, tc := range []struct {
		points   []tvu.Point
		expected float64
	}{
		// A single observation has no measured dispersion.
		{
			points:   []tvu.Point{{Z: 42, Weight: 1}},
			expected: 0,
		},
		// Identical elevations disperse by zero however many there are.
		{
			points: []tvu.Point{
				{Z: 7, Weight: 1},
				{Z: 7, Weight: 2},
				{Z: 7, Weight: 0.5},
			},
			expected: 0,
		},
		// Two equal-weight observations at 1 and 3: mean 2, variance 1.
		{
			points: []tvu.Point{
				{Z: 1, Weight: 1},
				{Z: 3, Weight: 1},
			},
			expected: 1,
		},
		// Weights shift the mean toward the heavier observation.
		{
			points: []tvu.Point{
				{Z: 0, Weight: 3},
				{Z: 4, Weight: 1},
			},
			expected: 1.7320508075688772, // sqrt(3).
		},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			assert.Equal(t, tc.expected, tvu.SubPixelStdDev(tc.points))
		})
	}
}
