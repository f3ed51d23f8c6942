package tvu

import "fmt"

// A MissingUncertaintyError indicates that a dataset declares neither a
// dataset-wide nor a per-value source uncertainty.
type MissingUncertaintyError struct {
	DatasetID string
}

func (e *MissingUncertaintyError) Error() string {
	return fmt.Sprintf("tvu: dataset %s has no resolvable source uncertainty", e.DatasetID)
}

// An InsufficientSampleError indicates that the split-sample estimator could
// not form a valid hold-out set.
type InsufficientSampleError struct {
	Have int
	Want int
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf("tvu: %d points, need at least %d for a hold-out set", e.Have, e.Want)
}

// An InvalidOrderError indicates a depth uncertainty request on a dataset
// without a survey order classification.
type InvalidOrderError struct {
	Order Order
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("tvu: no depth uncertainty model for order %s", e.Order)
}

// A TransformUncertaintyMissingError indicates a vertical transform step with
// no declared uncertainty magnitude. It contributes zero and is surfaced as a
// warning.
type TransformUncertaintyMissingError struct {
	DatasetID string
	Step      string
}

func (e *TransformUncertaintyMissingError) Error() string {
	return fmt.Sprintf("tvu: dataset %s: transform %s declares no uncertainty, treating as zero", e.DatasetID, e.Step)
}

// An InvalidPointError indicates a point with a non-positive weight or a
// non-finite coordinate. The point is excluded from its cell's contributor
// set; the pass continues.
type InvalidPointError struct {
	X      float64
	Y      float64
	Z      float64
	Reason string
}

func (e *InvalidPointError) Error() string {
	return fmt.Sprintf("tvu: invalid point (%g, %g, %g): %s", e.X, e.Y, e.Z, e.Reason)
}
