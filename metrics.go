package tvu

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invalidPointsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvu_invalid_points_rejected_total",
		Help: "The total number of points excluded for invalid weight or non-finite values",
	})
	missingUncertaintyWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvu_missing_uncertainty_warnings_total",
		Help: "The total number of contributions with no resolvable source uncertainty treated as zero",
	})
	transformUncertaintyWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvu_transform_uncertainty_warnings_total",
		Help: "The total number of transform steps with no declared uncertainty treated as zero",
	})
	passesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvu_passes_completed_total",
		Help: "The total number of merge passes completed",
	})
	cellsInterpolated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvu_cells_interpolated_total",
		Help: "The total number of cells whose uncertainty came from the interpolation model",
	})
	uncertaintyTileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvu_uncertainty_tile_cache_hits_total",
		Help: "The total number of hits on the uncertainty raster tile cache",
	})
	uncertaintyTileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvu_uncertainty_tile_cache_misses_total",
		Help: "The total number of misses on the uncertainty raster tile cache",
	})
)
