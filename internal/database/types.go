package database

import (
	"time"
)

// NoiseClusterID marks a face that is not density-reachable from enough
// neighbours to belong to any cluster.
const NoiseClusterID = -1

// FaceRecord is one detected face, as appended by the indexer.
type FaceRecord struct {
	FaceID    int64     // unique across the store, never reused
	ImagePath string    // absolute path, shared by all faces of one image
	Embedding []float32 // fixed dimension set by the face service (128 for dlib)
}

// ProcessedImage records that an image went through detection successfully,
// including images where no face was found.
type ProcessedImage struct {
	ImagePath   string
	FaceCount   int
	ProcessedAt time.Time
}

// ClusteredFace is one row of the clustering result: the face record plus its cluster.
type ClusteredFace struct {
	FaceRecord
	ClusterID int // NoiseClusterID for noise
}

// IsNoise reports whether the face was left out of every cluster.
func (f *ClusteredFace) IsNoise() bool {
	return f.ClusterID == NoiseClusterID
}

// ClusterName is a user supplied display name for a cluster id.
type ClusterName struct {
	ClusterID int
	Name      string
	RunID     string // clustering run the name was given against, empty if unknown
	UpdatedAt time.Time
}

// ClusteringStats are the operator-facing counts of a clustering result.
type ClusteringStats struct {
	Faces    int
	Clusters int
	Noise    int
}

// Summarize recomputes cluster and noise counts from the result rows alone.
func Summarize(rows []ClusteredFace) ClusteringStats {
	clusters := make(map[int]struct{})
	stats := ClusteringStats{Faces: len(rows)}
	for i := range rows {
		if rows[i].IsNoise() {
			stats.Noise++
			continue
		}
		clusters[rows[i].ClusterID] = struct{}{}
	}
	stats.Clusters = len(clusters)
	return stats
}
