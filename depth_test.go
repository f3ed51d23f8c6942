package tvu_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-tvu"
)

func TestDepthUncertainty(t *testing.T) {
	for i, tc := range []struct {
		depth    float64
		order    tvu.Order
		expected float64
	}{
		{depth: 0, order: tvu.OrderSpecial, expected: 2},
		{depth: 100, order: tvu.OrderSpecial, expected: 2},
		{depth: 0, order: tvu.Order1, expected: 5},
		{depth: 100, order: tvu.Order1, expected: 10},
		{depth: 0, order: tvu.Order2, expected: 20},
		{depth: 100, order: tvu.Order2, expected: 25},
		{depth: 0, order: tvu.Order3, expected: 150},
		{depth: 100, order: tvu.Order3, expected: 155},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			actual, err := tvu.DepthUncertainty(tc.depth, tc.order)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestDepthUncertaintyOrderNone(t *testing.T) {
	_, err := tvu.DepthUncertainty(10, tvu.OrderNone)
	var orderErr *tvu.InvalidOrderError
	assert.True(t, errors.As(err, &orderErr))
}
