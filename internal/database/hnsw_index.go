package database

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/coder/hnsw"
)

// HNSWIndex wraps an HNSW graph over face embeddings using Euclidean distance.
// Nodes are keyed by the position of the embedding in the slice passed to Build.
type HNSWIndex struct {
	graph   *hnsw.Graph[int]
	vectors [][]float32
	mu      sync.RWMutex
}

// NewHNSWIndex creates a new empty HNSW index.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{}
}

func newEuclideanGraph() *hnsw.Graph[int] {
	g := hnsw.NewGraph[int]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.EfSearch = HNSWEfSearch
	g.Distance = hnsw.EuclideanDistance
	g.Rng = rand.New(rand.NewSource(HNSWSeed)) //nolint:gosec // level sampling, not security
	return g
}

// Build replaces the index contents with the given embeddings.
func (h *HNSWIndex) Build(vectors [][]float32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(vectors) == 0 {
		h.graph = nil
		h.vectors = nil
		return nil
	}

	g := newEuclideanGraph()
	for i, v := range vectors {
		if len(v) == 0 {
			return errors.New("cannot index an empty embedding")
		}
		g.Add(hnsw.MakeNode(i, v))
	}

	h.graph = g
	h.vectors = vectors
	return nil
}

// Search finds the k nearest neighbours of the query embedding.
// Returns positions and exact Euclidean distances, closest first.
func (h *HNSWIndex) Search(query []float32, k int) ([]int, []float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, nil, errors.New("index not initialized")
	}

	neighbors := h.graph.Search(query, k)

	ids := make([]int, len(neighbors))
	distances := make([]float64, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.Key
		// Recompute in float64 so the radius check matches the exact index.
		distances[i] = EuclideanDistance(query, n.Value)
	}

	return ids, distances, nil
}

// Count returns the number of indexed embeddings.
func (h *HNSWIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.vectors)
}
