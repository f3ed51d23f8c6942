package tvu

import (
	"context"
	"errors"
	"math"
	"sync"
)

// A MissingUncertaintyPolicy decides what the engine does with a point whose
// source uncertainty could not be resolved (SourceUncertainty is NaN).
type MissingUncertaintyPolicy int

const (
	// MissingUncertaintyAbort fails the pass. This is the default.
	MissingUncertaintyAbort MissingUncertaintyPolicy = iota
	// MissingUncertaintyZero treats the value as zero and surfaces a
	// warning.
	MissingUncertaintyZero
)

// An Engine computes per-cell Total Vertical Uncertainty rasters over a fixed
// output grid.
type Engine struct {
	def     GridDef
	config  Config
	gridder Gridder
	policy  MissingUncertaintyPolicy
	warn    func(error)
}

// An EngineOption sets an option on an Engine.
type EngineOption func(*Engine)

// WithGridder sets the external gridding engine used by the split-sample
// interpolation uncertainty estimator. Without a gridder the interpolation
// component is never applied.
func WithGridder(gridder Gridder) EngineOption {
	return func(e *Engine) {
		e.gridder = gridder
	}
}

// WithMissingUncertaintyPolicy sets the policy for unresolved source
// uncertainties.
func WithMissingUncertaintyPolicy(policy MissingUncertaintyPolicy) EngineOption {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithWarningFunc sets the hook receiving recoverable per-point and
// per-dataset warnings.
func WithWarningFunc(warn func(error)) EngineOption {
	return func(e *Engine) {
		e.warn = warn
	}
}

// NewEngine returns a new Engine over def with the given configuration.
func NewEngine(def GridDef, config Config, options ...EngineOption) *Engine {
	config.applyDefaults()
	e := &Engine{
		def:    def,
		config: config,
		warn:   func(error) {},
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// A Pass is one merge pass over the output grid: the contributing points of
// the active dataset stack, plus the companion elevation surface produced by
// the external gridding engine for that stack. The surface decides which
// cells without direct data are interpolated rather than no-data; a nil
// surface marks all such cells no-data.
type Pass struct {
	Points  []Point
	Surface Surface
}

// A PassResult holds the rasters produced by one pass: per-cell TVU and the
// count of direct observations per cell (0 for interpolated cells, no-data
// where the pass has no elevation estimate at all).
type PassResult struct {
	TVU    *Raster
	Counts *Raster
}

// Run executes the ordered sequence of passes and folds their per-cell TVU
// values according to the accumulate flag: accumulate mode RSS-combines
// passes as independent evidence, otherwise the last pass to touch a cell
// wins. Counts follow the same mode, summing across passes when accumulating
// and replaced alongside the TVU value otherwise, so the two bands stay
// consistent.
func (e *Engine) Run(ctx context.Context, passes []Pass) (*PassResult, error) {
	result := &PassResult{
		TVU:    NewRaster(e.def),
		Counts: NewRaster(e.def),
	}
	for i := range passes {
		passResult, err := e.RunPass(ctx, passes[i])
		if err != nil {
			return nil, err
		}
		result.TVU.Merge(passResult.TVU, e.config.Accumulate)
		if e.config.Accumulate {
			result.Counts.Add(passResult.Counts)
		} else {
			result.Counts.Merge(passResult.Counts, false)
		}
	}
	return result, nil
}

// RunPass executes a single pass. Invalid points are excluded from their
// cell's contributor set with a warning; no recoverable component failure
// aborts the pass.
func (e *Engine) RunPass(ctx context.Context, pass Pass) (*PassResult, error) {
	points, err := e.admitPoints(pass.Points)
	if err != nil {
		return nil, err
	}

	// Phase 1: fit the interpolation error model over the whole stack before
	// any cell applies it.
	var model *InterpolationModel
	if e.gridder != nil && pass.Surface != nil {
		model, err = FitInterpolationModel(ctx, e.gridder, points, e.config.WafflesModule,
			WithHoldoutFraction(e.config.HoldoutFraction),
			WithSeed(e.config.Seed),
			WithMinSamples(e.config.MinSamples),
			WithDistanceBins(e.config.DistanceBins),
		)
		if err != nil {
			var sampleErr *InsufficientSampleError
			if !errors.As(err, &sampleErr) {
				return nil, err
			}
			// Degraded mode: the interpolation component is omitted.
			e.warn(err)
			model = nil
		}
	}

	cells := make([][]Point, e.def.Width*e.def.Height)
	for _, p := range points {
		cell, ok := e.def.CellOf(p.X, p.Y)
		if !ok {
			continue
		}
		i := cell.R*e.def.Width + cell.C
		cells[i] = append(cells[i], p)
	}
	index := NewObservationIndex(points)

	result := &PassResult{
		TVU:    NewRaster(e.def),
		Counts: NewRaster(e.def),
	}
	transformValues := e.datasetTransformValues(points)

	// Phase 2: per-cell component evaluation, parallel over rows. Cells are
	// independent once the point assignment is fixed; each worker writes only
	// its own rows.
	var wg sync.WaitGroup
	rows := make(chan int)
	var firstErr error
	var errMutex sync.Mutex
	for range e.config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rows {
				if err := e.runRow(ctx, row, cells, pass.Surface, model, index, transformValues, result); err != nil {
					errMutex.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMutex.Unlock()
				}
			}
		}()
	}
	for row := range e.def.Height {
		rows <- row
	}
	close(rows)
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	passesCompleted.Inc()
	return result, nil
}

// admitPoints validates and mask-filters the incoming points. Points with a
// non-positive weight or non-finite values are excluded with a warning.
// Points with an unresolved source uncertainty follow the engine's policy.
func (e *Engine) admitPoints(points []Point) ([]Point, error) {
	admitted := make([]Point, 0, len(points))
	for _, p := range points {
		switch {
		case math.IsNaN(p.X) || math.IsInf(p.X, 0) ||
			math.IsNaN(p.Y) || math.IsInf(p.Y, 0) ||
			math.IsNaN(p.Z) || math.IsInf(p.Z, 0):
			e.warn(&InvalidPointError{X: p.X, Y: p.Y, Z: p.Z, Reason: "non-finite value"})
			invalidPointsRejected.Inc()
			continue
		case p.Weight <= 0:
			e.warn(&InvalidPointError{X: p.X, Y: p.Y, Z: p.Z, Reason: "non-positive weight"})
			invalidPointsRejected.Inc()
			continue
		}
		if p.Dataset != nil && !p.Dataset.InMask(p.X, p.Y) {
			continue
		}
		if math.IsNaN(p.SourceUncertainty) {
			id := ""
			if p.Dataset != nil {
				id = p.Dataset.ID()
			}
			err := &MissingUncertaintyError{DatasetID: id}
			if e.policy == MissingUncertaintyAbort {
				return nil, err
			}
			e.warn(err)
			missingUncertaintyWarnings.Inc()
			p.SourceUncertainty = 0
		}
		admitted = append(admitted, p)
	}
	return admitted, nil
}

type transformValue struct {
	value   float64
	applied bool
}

// datasetTransformValues reduces each contributing dataset's transform chain
// once, surfacing missing-uncertainty warnings a single time per dataset.
func (e *Engine) datasetTransformValues(points []Point) map[*Dataset]transformValue {
	values := make(map[*Dataset]transformValue)
	for _, p := range points {
		if p.Dataset == nil {
			continue
		}
		if _, ok := values[p.Dataset]; ok {
			continue
		}
		value, applied, warnings := p.Dataset.DatumTransformUncertainty()
		for _, warning := range warnings {
			e.warn(warning)
			transformUncertaintyWarnings.Inc()
		}
		values[p.Dataset] = transformValue{value: value, applied: applied}
	}
	return values
}

func (e *Engine) runRow(ctx context.Context, row int, cells [][]Point, surface Surface, model *InterpolationModel, index *ObservationIndex, transformValues map[*Dataset]transformValue, result *PassResult) error {
	for col := range e.def.Width {
		cell := CellCoord{C: col, R: row}
		cellPoints := cells[row*e.def.Width+col]
		if len(cellPoints) == 0 {
			if err := e.runEmptyCell(ctx, cell, surface, model, index, result); err != nil {
				return err
			}
			continue
		}
		components := e.cellComponents(cellPoints, transformValues)
		result.TVU.SetValue(cell, RSS(components))
		result.Counts.SetValue(cell, float64(len(cellPoints)))
	}
	return nil
}

// runEmptyCell handles a cell without direct observations: if the companion
// surface has an elevation estimate there and an interpolation model was
// fitted, the cell gets the distance-dependent interpolation component;
// otherwise it stays no-data.
func (e *Engine) runEmptyCell(ctx context.Context, cell CellCoord, surface Surface, model *InterpolationModel, index *ObservationIndex, result *PassResult) error {
	if surface == nil {
		return nil
	}
	x, y := e.def.CellCenter(cell)
	z, err := surface.InterpolatedAt(ctx, x, y)
	if err != nil {
		return err
	}
	if math.IsNaN(z) {
		return nil
	}
	if model == nil || index == nil {
		return nil
	}
	distance := index.NearestDistance(x, y)
	components := []Component{
		{Kind: ComponentInterpolation, Value: model.UncertaintyAt(distance)},
	}
	result.TVU.SetValue(cell, RSS(components))
	result.Counts.SetValue(cell, 0)
	cellsInterpolated.Inc()
	return nil
}

// cellComponents assembles the set of applicable uncertainty components for a
// cell with direct observations.
func (e *Engine) cellComponents(cellPoints []Point, transformValues map[*Dataset]transformValue) []Component {
	components := []Component{
		{Kind: ComponentSource, Value: CombineSourceUncertainty(cellPoints)},
		{Kind: ComponentSubPixel, Value: SubPixelStdDev(cellPoints)},
	}

	// Depth: one contribution per dataset with an order classification,
	// evaluated at that dataset's weighted mean elevation in the cell.
	// Contributions above the datum are omitted.
	byDataset := make(map[*Dataset][]Point)
	for _, p := range cellPoints {
		byDataset[p.Dataset] = append(byDataset[p.Dataset], p)
	}
	for dataset, datasetPoints := range byDataset {
		if dataset == nil || dataset.Order() == OrderNone {
			continue
		}
		var zw, w float64
		for _, p := range datasetPoints {
			zw += p.Weight * p.Z
			w += p.Weight
		}
		zMean := zw / w
		if zMean >= 0 {
			continue
		}
		value, err := DepthUncertainty(-zMean, dataset.Order())
		if err != nil {
			continue
		}
		components = append(components, Component{Kind: ComponentDepth, Value: value})
	}

	// Datum transform: points of transform-bearing datasets carry their
	// dataset's chain value; combine them like source uncertainties so the
	// cell sees a single component.
	var transformPoints []Point
	for _, p := range cellPoints {
		if tv, ok := transformValues[p.Dataset]; ok && tv.applied {
			p.SourceUncertainty = tv.value
			transformPoints = append(transformPoints, p)
		}
	}
	if len(transformPoints) > 0 {
		components = append(components, Component{
			Kind:  ComponentDatumTransform,
			Value: CombineSourceUncertainty(transformPoints),
		})
	}

	return components
}
