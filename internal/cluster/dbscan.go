// Package cluster groups face embeddings into people with DBSCAN and
// persists the result for the gallery.
package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/photo-faces/internal/database"
)

// DBSCAN labels every point with a cluster id, or database.NoiseClusterID.
// A point is a core point when at least minPts points, itself included, lie
// within eps. Clusters are numbered from 0 in the order their first core
// point appears; a border point joins the first cluster that reaches it.
func DBSCAN(ctx context.Context, points [][]float32, eps float64, minPts int, index NeighborIndex) ([]int, error) {
	if eps <= 0 {
		return nil, errors.New("epsilon must be positive")
	}
	if minPts < 1 {
		return nil, errors.New("min points must be at least 1")
	}

	n := len(points)
	if err := index.Build(points); err != nil {
		return nil, err
	}

	neighborhoods := make([][]int, n)
	core := make([]bool, n)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nb, err := index.Neighbors(i, eps)
		if err != nil {
			return nil, fmt.Errorf("neighbors of point %d: %w", i, err)
		}
		neighborhoods[i] = nb
		core[i] = len(nb) >= minPts
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = database.NoiseClusterID
	}

	next := 0
	for i := range n {
		if labels[i] != database.NoiseClusterID || !core[i] {
			continue
		}
		labels[i] = next
		stack := []int{i}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, q := range neighborhoods[p] {
				if labels[q] != database.NoiseClusterID {
					continue
				}
				labels[q] = next
				if core[q] {
					stack = append(stack, q)
				}
			}
		}
		next++
	}

	return labels, nil
}
