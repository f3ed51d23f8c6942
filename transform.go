package tvu

import (
	"math"

	"github.com/twpayne/go-proj/v10"
)

// A TransformStep is one applied vertical datum or geoid transform, with its
// declared uncertainty magnitude. A NaN uncertainty means the transform
// declared none; it contributes zero and is surfaced as a warning.
type TransformStep struct {
	Name        string
	Uncertainty float64
}

// Transforms returns the ordered chain of vertical transforms applied to d.
func (d *Dataset) Transforms() []TransformStep {
	return d.transforms
}

// AppendTransform records a further transform applied to d.
func (d *Dataset) AppendTransform(step TransformStep) {
	d.transforms = append(d.transforms, step)
}

// DatumTransformUncertainty reduces d's transform chain to a single 1σ value
// by root sum square. The value is constant across the dataset because the
// chain is dataset-level. Steps without a declared uncertainty contribute
// zero and are returned as TransformUncertaintyMissingError warnings. The
// second return value reports whether any transform was applied at all: a
// dataset with no transforms has no datum transform component.
func (d *Dataset) DatumTransformUncertainty() (float64, bool, []error) {
	if len(d.transforms) == 0 {
		return 0, false, nil
	}
	var sum float64
	var warnings []error
	for _, step := range d.transforms {
		if math.IsNaN(step.Uncertainty) {
			warnings = append(warnings, &TransformUncertaintyMissingError{
				DatasetID: d.id,
				Step:      step.Name,
			})
			continue
		}
		sum += step.Uncertainty * step.Uncertainty
	}
	return math.Sqrt(sum), true, warnings
}

// A VerticalTransformer applies a vertical datum transform to a dataset's
// points and records the step, with its declared uncertainty, on the
// dataset's chain.
type VerticalTransformer struct {
	pj   *proj.PJ
	step TransformStep
}

// NewVerticalTransformer returns a transformer between the two CRSs, carrying
// the given step metadata.
func NewVerticalTransformer(srcCRS, dstCRS string, step TransformStep) (*VerticalTransformer, error) {
	pj, err := proj.NewCRSToCRS(srcCRS, dstCRS, nil)
	if err != nil {
		return nil, err
	}
	return &VerticalTransformer{
		pj:   pj,
		step: step,
	}, nil
}

// Step returns the transform step metadata.
func (t *VerticalTransformer) Step() TransformStep {
	return t.step
}

// Apply transforms points in place and appends t's step to d's chain.
func (t *VerticalTransformer) Apply(d *Dataset, points []Point) error {
	coordsFlat := make([]float64, 3*len(points))
	coords := make([][]float64, len(points))
	for i, p := range points {
		coordsFlat[3*i+0] = p.X
		coordsFlat[3*i+1] = p.Y
		coordsFlat[3*i+2] = p.Z
		coords[i] = coordsFlat[3*i : 3*i+3]
	}
	if err := t.pj.ForwardFloat64Slices(coords); err != nil {
		return err
	}
	for i := range points {
		points[i].X = coords[i][0]
		points[i].Y = coords[i][1]
		points[i].Z = coords[i][2]
	}
	d.AppendTransform(t.step)
	return nil
}
