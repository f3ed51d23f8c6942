package tvu

import "math"

// A Raster is a single-band grid of float64 values aligned to a GridDef. NaN
// is the no-data sentinel, distinct from a stored 0.
type Raster struct {
	def    GridDef
	values []float64
}

// NewRaster returns a raster over def with every cell set to no-data.
func NewRaster(def GridDef) *Raster {
	values := make([]float64, def.Width*def.Height)
	for i := range values {
		values[i] = math.NaN()
	}
	return &Raster{
		def:    def,
		values: values,
	}
}

// Def returns r's grid definition.
func (r *Raster) Def() GridDef {
	return r.def
}

// Value returns the value at cell, NaN if the cell holds no data.
func (r *Raster) Value(cell CellCoord) float64 {
	return r.values[cell.R*r.def.Width+cell.C]
}

// SetValue sets the value at cell.
func (r *Raster) SetValue(cell CellCoord, value float64) {
	r.values[cell.R*r.def.Width+cell.C] = value
}

// ValueAt returns the value of the cell containing (x, y), NaN outside the
// grid.
func (r *Raster) ValueAt(x, y float64) float64 {
	cell, ok := r.def.CellOf(x, y)
	if !ok {
		return math.NaN()
	}
	return r.Value(cell)
}

// Merge folds other into r cell by cell. In accumulate mode overlapping
// values are RSS-combined as independent evidence; otherwise other's data
// overwrites r's unconditionally wherever other has data.
func (r *Raster) Merge(other *Raster, accumulate bool) {
	for i, v := range other.values {
		if math.IsNaN(v) {
			continue
		}
		if accumulate {
			r.values[i] = Accumulate(r.values[i], v)
		} else {
			r.values[i] = v
		}
	}
}

// Add adds other's values into r cell by cell, treating no-data as zero on
// either side unless both sides are no-data.
func (r *Raster) Add(other *Raster) {
	for i, v := range other.values {
		switch {
		case math.IsNaN(v):
		case math.IsNaN(r.values[i]):
			r.values[i] = v
		default:
			r.values[i] += v
		}
	}
}
