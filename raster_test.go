package tvu_test

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-tvu"
)

func TestRasterNoDataDefault(t *testing.T) {
	raster := tvu.NewRaster(testGridDef())
	assert.True(t, math.IsNaN(raster.Value(tvu.CellCoord{C: 3, R: 7})))
	raster.SetValue(tvu.CellCoord{C: 3, R: 7}, 0)
	assert.Equal(t, 0.0, raster.Value(tvu.CellCoord{C: 3, R: 7}))
}

func TestRasterValueAt(t *testing.T) {
	raster := tvu.NewRaster(testGridDef())
	raster.SetValue(tvu.CellCoord{C: 2, R: 1}, 1.5)
	assert.Equal(t, 1.5, raster.ValueAt(2.5, 8.5))
	assert.True(t, math.IsNaN(raster.ValueAt(-1, 0)))
	assert.True(t, math.IsNaN(raster.ValueAt(5, 11)))
}

func TestRasterMerge(t *testing.T) {
	cell := tvu.CellCoord{C: 1, R: 1}
	other := tvu.CellCoord{C: 2, R: 2}

	a := tvu.NewRaster(testGridDef())
	a.SetValue(cell, 3)
	b := tvu.NewRaster(testGridDef())
	b.SetValue(cell, 4)
	b.SetValue(other, 7)

	accumulated := tvu.NewRaster(testGridDef())
	accumulated.Merge(a, true)
	accumulated.Merge(b, true)
	assert.Equal(t, 5.0, accumulated.Value(cell))
	assert.Equal(t, 7.0, accumulated.Value(other))

	overwritten := tvu.NewRaster(testGridDef())
	overwritten.Merge(a, false)
	overwritten.Merge(b, false)
	assert.Equal(t, 4.0, overwritten.Value(cell))

	// A no-data cell in the incoming raster never clobbers existing data.
	c := tvu.NewRaster(testGridDef())
	overwritten.Merge(c, false)
	assert.Equal(t, 4.0, overwritten.Value(cell))
}

func TestRasterAdd(t *testing.T) {
	cell := tvu.CellCoord{C: 0, R: 0}
	a := tvu.NewRaster(testGridDef())
	a.SetValue(cell, 2)
	b := tvu.NewRaster(testGridDef())
	b.SetValue(cell, 3)
	a.Add(b)
	assert.Equal(t, 5.0, a.Value(cell))
	a.Add(tvu.NewRaster(testGridDef()))
	assert.Equal(t, 5.0, a.Value(cell))
}
