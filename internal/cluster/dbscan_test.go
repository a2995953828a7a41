package cluster

import (
	"context"
	"math/rand"
	"testing"

	"github.com/kozaktomas/photo-faces/internal/database"
)

// fivePoints is two tight pairs and one isolated point.
var fivePoints = [][]float32{
	{0.0, 0.0},
	{0.1, 0.0},
	{5.0, 5.0},
	{5.0, 5.1},
	{10.0, -10.0},
}

func runDBSCAN(t *testing.T, points [][]float32, eps float64, minPts int, index NeighborIndex) []int {
	t.Helper()
	labels, err := DBSCAN(context.Background(), points, eps, minPts, index)
	if err != nil {
		t.Fatalf("DBSCAN failed: %v", err)
	}
	if len(labels) != len(points) {
		t.Fatalf("got %d labels for %d points", len(labels), len(points))
	}
	return labels
}

// canonical renumbers labels by first appearance so partitions can be compared.
func canonical(labels []int) []int {
	mapping := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		if l == database.NoiseClusterID {
			out[i] = l
			continue
		}
		if _, ok := mapping[l]; !ok {
			mapping[l] = len(mapping)
		}
		out[i] = mapping[l]
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDBSCAN_TwoPairsAndNoise(t *testing.T) {
	labels := runDBSCAN(t, fivePoints, 0.4, 2, &ExactIndex{})
	want := []int{0, 0, 1, 1, database.NoiseClusterID}
	if !equalInts(labels, want) {
		t.Errorf("DBSCAN() = %v, want %v", labels, want)
	}
}

func TestDBSCAN_Threshold(t *testing.T) {
	tests := []struct {
		name   string
		points [][]float32
		eps    float64
		minPts int
		want   []int
	}{
		{"distance equal to eps is close", [][]float32{{0}, {0.5}}, 0.5, 2, []int{0, 0}},
		{"distance above eps is noise", [][]float32{{0}, {0.6}}, 0.5, 2, []int{-1, -1}},
		{"single point with minPts 1 is a cluster", [][]float32{{0}, {3}}, 0.5, 1, []int{0, 1}},
		{"chain is density reachable", [][]float32{{0}, {1}, {2}, {3}}, 1, 2, []int{0, 0, 0, 0}},
		{
			"border point joins first cluster",
			[][]float32{{0}, {1}, {1}, {2}, {3.5}, {5}, {6}, {6}, {7}},
			1.5, 4,
			[]int{0, 0, 0, 0, 0, 1, 1, 1, 1},
		},
		{"too few neighbours", [][]float32{{0}, {0.1}, {5}, {5.1}}, 0.4, 3, []int{-1, -1, -1, -1}},
		{"no points", nil, 0.4, 2, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := runDBSCAN(t, tt.points, tt.eps, tt.minPts, &ExactIndex{})
			if !equalInts(labels, tt.want) {
				t.Errorf("DBSCAN() = %v, want %v", labels, tt.want)
			}
		})
	}
}

func TestDBSCAN_InvalidParameters(t *testing.T) {
	if _, err := DBSCAN(context.Background(), fivePoints, 0, 2, &ExactIndex{}); err == nil {
		t.Error("expected error for eps = 0")
	}
	if _, err := DBSCAN(context.Background(), fivePoints, 0.4, 0, &ExactIndex{}); err == nil {
		t.Error("expected error for minPts = 0")
	}
}

func TestDBSCAN_Deterministic(t *testing.T) {
	points := blobs(3, 20, 8, 7)
	first := runDBSCAN(t, points, 0.5, 2, &ExactIndex{})
	second := runDBSCAN(t, points, 0.5, 2, &ExactIndex{})
	if !equalInts(canonical(first), canonical(second)) {
		t.Errorf("partitions differ between runs:\n%v\n%v", first, second)
	}
}

func TestDBSCAN_HNSWMatchesExact(t *testing.T) {
	points := blobs(4, 25, 16, 11)
	// A few isolated points that must stay noise.
	points = append(points, []float32{50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50})

	exact := runDBSCAN(t, points, 0.6, 2, &ExactIndex{})
	approx := runDBSCAN(t, points, 0.6, 2, NewHNSWNeighbors(2))

	if !equalInts(canonical(exact), canonical(approx)) {
		t.Errorf("HNSW partition differs from exact:\nexact:  %v\napprox: %v", exact, approx)
	}
	if exact[len(exact)-1] != database.NoiseClusterID {
		t.Errorf("isolated point label = %d, want noise", exact[len(exact)-1])
	}
}

func TestNewNeighborIndex(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"", false},
		{"exact", false},
		{"hnsw", false},
		{"kdtree", true},
	}
	for _, tt := range tests {
		_, err := NewNeighborIndex(tt.kind, 2)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewNeighborIndex(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
		}
	}
}

// blobs generates count tight groups of size points in dim dimensions.
// Group centres are 10 apart on the first axis, members within 0.1 of the centre.
func blobs(count, size, dim int, seed int64) [][]float32 {
	rng := rand.New(rand.NewSource(seed))
	var points [][]float32
	for c := range count {
		for range size {
			p := make([]float32, dim)
			for d := range p {
				p[d] = float32(rng.Float64()*0.1 - 0.05)
			}
			p[0] += float32(c * 10)
			points = append(points, p)
		}
	}
	return points
}
