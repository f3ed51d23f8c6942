// Package tvu computes per-cell Total Vertical Uncertainty rasters for
// digital elevation models assembled from multiple, unequally trusted
// elevation sources.
package tvu

import "math"

// A CellCoord is a grid cell coordinate.
type CellCoord struct {
	C int // Column.
	R int // Row.
}

// A GridDef defines an output grid: a north-up raster with its origin at the
// top-left corner, matching the companion elevation raster's geotransform.
type GridDef struct {
	XMin      float64
	YMax      float64
	CellSizeX float64
	CellSizeY float64
	Width     int
	Height    int
	SRID      int
}

// CellOf returns the cell containing the point (x, y) and whether it lies
// inside the grid.
func (g GridDef) CellOf(x, y float64) (CellCoord, bool) {
	c := int(math.Floor((x - g.XMin) / g.CellSizeX))
	r := int(math.Floor((g.YMax - y) / g.CellSizeY))
	if c < 0 || g.Width <= c || r < 0 || g.Height <= r {
		return CellCoord{}, false
	}
	return CellCoord{C: c, R: r}, true
}

// CellCenter returns the center coordinate of cell.
func (g GridDef) CellCenter(cell CellCoord) (float64, float64) {
	x := g.XMin + (float64(cell.C)+0.5)*g.CellSizeX
	y := g.YMax - (float64(cell.R)+0.5)*g.CellSizeY
	return x, y
}

// A Point is a single elevation observation contributing to a cell. Weight is
// inherited from the owning dataset unless overridden locally.
// SourceUncertainty is resolved once, before the point enters a pass, and is
// immutable afterwards.
type Point struct {
	X                 float64
	Y                 float64
	Z                 float64
	Weight            float64
	SourceUncertainty float64
	Dataset           *Dataset
}

// A Mask selects the region of a dataset that participates in a pass.
type Mask interface {
	Contains(x, y float64) bool
}

// A RectMask is a rectangular mask.
type RectMask struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

func (m RectMask) Contains(x, y float64) bool {
	return m.XMin <= x && x <= m.XMax && m.YMin <= y && y <= m.YMax
}
