package tvu

import (
	"context"
	"math"
)

// confidence95Divisor converts a 95% confidence figure to 1σ.
const confidence95Divisor = 1.96

// An UncertaintySource samples a per-value uncertainty co-registered with a
// dataset, for example a sidecar uncertainty raster. A NaN sample means no
// value at that location.
type UncertaintySource interface {
	Sample(ctx context.Context, x, y float64) (float64, error)
}

// A Dataset describes one input elevation source: its weight relative to
// other sources, how its source uncertainty is resolved, its survey order
// classification, the mask limiting its coverage in a pass, and the chain of
// vertical transforms applied to it before merge.
type Dataset struct {
	id                   string
	weight               float64
	sourceUncertainty    float64
	hasSourceUncertainty bool
	uncertaintySource    UncertaintySource
	order                Order
	mask                 Mask
	maskInvert           bool
	transforms           []TransformStep
}

// A DatasetOption sets an option on a Dataset.
type DatasetOption func(*Dataset)

// NewDataset returns a new Dataset with the given options. The default weight
// is 1.
func NewDataset(id string, options ...DatasetOption) *Dataset {
	d := &Dataset{
		id:     id,
		weight: 1,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

func WithWeight(weight float64) DatasetOption {
	return func(d *Dataset) {
		d.weight = weight
	}
}

// WithSourceUncertainty sets the dataset-wide source uncertainty, already
// expressed as 1σ.
func WithSourceUncertainty(uncertainty float64) DatasetOption {
	return func(d *Dataset) {
		d.sourceUncertainty = uncertainty
		d.hasSourceUncertainty = true
	}
}

// WithSourceUncertainty95 sets the dataset-wide source uncertainty from a 95%
// confidence figure. The value is normalized to 1σ here, at construction, so
// resolved values are always comparable.
func WithSourceUncertainty95(uncertainty float64) DatasetOption {
	return func(d *Dataset) {
		d.sourceUncertainty = uncertainty / confidence95Divisor
		d.hasSourceUncertainty = true
	}
}

// WithUncertaintySource sets a per-value uncertainty source. Per-value
// uncertainties take precedence over the dataset-wide value.
func WithUncertaintySource(source UncertaintySource) DatasetOption {
	return func(d *Dataset) {
		d.uncertaintySource = source
	}
}

func WithOrder(order Order) DatasetOption {
	return func(d *Dataset) {
		d.order = order
	}
}

// WithMask limits the dataset to points inside mask, or outside it when
// invert is set.
func WithMask(mask Mask, invert bool) DatasetOption {
	return func(d *Dataset) {
		d.mask = mask
		d.maskInvert = invert
	}
}

// WithTransforms sets the ordered chain of vertical transforms already
// applied to the dataset.
func WithTransforms(steps ...TransformStep) DatasetOption {
	return func(d *Dataset) {
		d.transforms = steps
	}
}

// ID returns d's identity.
func (d *Dataset) ID() string {
	return d.id
}

// Weight returns d's weight.
func (d *Dataset) Weight() float64 {
	return d.weight
}

// Order returns d's survey order classification.
func (d *Dataset) Order() Order {
	return d.order
}

// InMask reports whether the point (x, y) participates in a pass, honoring
// the mask's invert flag. Datasets without a mask cover everything.
func (d *Dataset) InMask(x, y float64) bool {
	if d.mask == nil {
		return true
	}
	return d.mask.Contains(x, y) != d.maskInvert
}

// ResolveSourceUncertainty returns the source uncertainty applicable at
// (x, y): the per-value source's sample when one is available, the
// dataset-wide value otherwise. It returns a MissingUncertaintyError if the
// dataset declares neither.
func (d *Dataset) ResolveSourceUncertainty(ctx context.Context, x, y float64) (float64, error) {
	if d.uncertaintySource != nil {
		u, err := d.uncertaintySource.Sample(ctx, x, y)
		if err != nil {
			return 0, err
		}
		if !math.IsNaN(u) {
			return u, nil
		}
	}
	if d.hasSourceUncertainty {
		return d.sourceUncertainty, nil
	}
	return 0, &MissingUncertaintyError{DatasetID: d.id}
}

// Point returns an observation owned by d with its source uncertainty
// resolved once.
func (d *Dataset) Point(ctx context.Context, x, y, z float64) (Point, error) {
	u, err := d.ResolveSourceUncertainty(ctx, x, y)
	if err != nil {
		return Point{}, err
	}
	return Point{
		X:                 x,
		Y:                 y,
		Z:                 z,
		Weight:            d.weight,
		SourceUncertainty: u,
		Dataset:           d,
	}, nil
}

// PointWithUncertainty returns an observation carrying its own per-value
// uncertainty, for sources whose records include an uncertainty field. The
// field value takes precedence over any dataset-level source.
func (d *Dataset) PointWithUncertainty(x, y, z, u float64) Point {
	return Point{
		X:                 x,
		Y:                 y,
		Z:                 z,
		Weight:            d.weight,
		SourceUncertainty: u,
		Dataset:           d,
	}
}
