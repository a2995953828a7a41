package cluster

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
)

// NeighborIndex answers radius queries over a fixed set of points.
type NeighborIndex interface {
	// Build replaces the indexed points.
	Build(points [][]float32) error
	// Neighbors returns the positions of all points within eps of point i,
	// including i itself.
	Neighbors(i int, eps float64) ([]int, error)
}

// NewNeighborIndex returns the index named by kind.
func NewNeighborIndex(kind string, minPts int) (NeighborIndex, error) {
	switch kind {
	case "", config.NeighborIndexExact:
		return &ExactIndex{}, nil
	case config.NeighborIndexHNSW:
		return NewHNSWNeighbors(minPts), nil
	default:
		return nil, fmt.Errorf("unknown neighbor index %q", kind)
	}
}

// ExactIndex compares every pair of points.
type ExactIndex struct {
	points [][]float32
}

func (e *ExactIndex) Build(points [][]float32) error {
	e.points = points
	return nil
}

func (e *ExactIndex) Neighbors(i int, eps float64) ([]int, error) {
	if i < 0 || i >= len(e.points) {
		return nil, fmt.Errorf("point %d out of range", i)
	}
	var out []int
	for j := range e.points {
		if database.EuclideanDistance(e.points[i], e.points[j]) <= eps {
			out = append(out, j)
		}
	}
	return out, nil
}

// HNSWNeighbors answers radius queries with k-NN searches on an HNSW graph.
// k starts at a multiple of minPts and doubles until the farthest hit lies
// outside eps or every point was returned. Results are approximate.
type HNSWNeighbors struct {
	index  *database.HNSWIndex
	points [][]float32
	minPts int
}

// NewHNSWNeighbors creates an HNSW backed neighbor index.
func NewHNSWNeighbors(minPts int) *HNSWNeighbors {
	return &HNSWNeighbors{index: database.NewHNSWIndex(), minPts: minPts}
}

func (h *HNSWNeighbors) Build(points [][]float32) error {
	if err := h.index.Build(points); err != nil {
		return fmt.Errorf("building HNSW index: %w", err)
	}
	h.points = points
	return nil
}

func (h *HNSWNeighbors) Neighbors(i int, eps float64) ([]int, error) {
	n := len(h.points)
	if i < 0 || i >= n {
		return nil, fmt.Errorf("point %d out of range", i)
	}

	k := min(max(h.minPts*database.HNSWSearchMultiplier, database.HNSWMaxNeighbors), n)
	var ids []int
	var dists []float64
	for {
		var err error
		ids, dists, err = h.index.Search(h.points[i], k)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, errors.New("HNSW search returned no results")
		}
		if k >= n || maxOf(dists) > eps {
			break
		}
		k = min(k*2, n)
	}

	out := make([]int, 0, len(ids))
	self := false
	for j, id := range ids {
		if dists[j] <= eps {
			out = append(out, id)
			if id == i {
				self = true
			}
		}
	}
	if !self {
		out = append(out, i)
	}
	return out, nil
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		m = max(m, v)
	}
	return m
}
