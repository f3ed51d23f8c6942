package tvu

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// An obsPoint is a 2D observation location in the k-d tree.
type obsPoint struct {
	x float64
	y float64
}

func (p obsPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(obsPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("illegal dimension")
	}
}

func (p obsPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between two points.
func (p obsPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(obsPoint)
	dx := p.x - q.x
	dy := p.y - q.y
	return dx*dx + dy*dy
}

// obsPoints satisfies kdtree.Interface.
type obsPoints []obsPoint

func (p obsPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p obsPoints) Len() int                              { return len(p) }
func (p obsPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p obsPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(obsPlane{obsPoints: p, Dim: d}, kdtree.MedianOfMedians(obsPlane{obsPoints: p, Dim: d}))
}

// obsPlane implements sort.Interface and kdtree.SortSlicer over one
// dimension of obsPoints.
type obsPlane struct {
	obsPoints
	kdtree.Dim
}

func (p obsPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.obsPoints[i].x < p.obsPoints[j].x
	case 1:
		return p.obsPoints[i].y < p.obsPoints[j].y
	default:
		panic("illegal dimension")
	}
}

func (p obsPlane) Slice(start, end int) kdtree.SortSlicer {
	return obsPlane{obsPoints: p.obsPoints[start:end], Dim: p.Dim}
}

func (p obsPlane) Swap(i, j int) {
	p.obsPoints[i], p.obsPoints[j] = p.obsPoints[j], p.obsPoints[i]
}

// An ObservationIndex answers distance-to-nearest-observation queries over a
// fixed set of points. It is read-only after construction and safe for
// concurrent use.
type ObservationIndex struct {
	tree *kdtree.Tree
}

// NewObservationIndex returns an index over the locations of points. It
// returns nil for an empty set.
func NewObservationIndex(points []Point) *ObservationIndex {
	if len(points) == 0 {
		return nil
	}
	obs := make(obsPoints, len(points))
	for i, p := range points {
		obs[i] = obsPoint{x: p.X, y: p.Y}
	}
	return &ObservationIndex{
		tree: kdtree.New(obs, true),
	}
}

// NearestDistance returns the Euclidean distance from (x, y) to the nearest
// indexed observation.
func (ix *ObservationIndex) NearestDistance(x, y float64) float64 {
	_, distSq := ix.tree.Nearest(obsPoint{x: x, y: y})
	return math.Sqrt(distSq)
}
