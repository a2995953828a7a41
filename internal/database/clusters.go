package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"
)

const clusteringResultVersion = 1

// ClusteringResult is the persisted output of one cluster builder run: every
// face record of the embedding store with its cluster id attached.
type ClusteringResult struct {
	Version   int
	RunID     string
	CreatedAt time.Time
	Epsilon   float64
	MinPoints int
	Rows      []ClusteredFace
}

// ClusterGroup is the non-noise members of one cluster, in result order.
type ClusterGroup struct {
	ClusterID int
	Faces     []ClusteredFace
}

// Representative returns the image path shown for the cluster.
func (g *ClusterGroup) Representative() string {
	if len(g.Faces) == 0 {
		return ""
	}
	return g.Faces[0].ImagePath
}

// Stats recomputes the cluster and noise counts from the rows.
func (r *ClusteringResult) Stats() ClusteringStats {
	return Summarize(r.Rows)
}

// Groups returns all non-noise clusters sorted by cluster id.
func (r *ClusteringResult) Groups() []ClusterGroup {
	byID := make(map[int]*ClusterGroup)
	var ids []int
	for i := range r.Rows {
		row := r.Rows[i]
		if row.IsNoise() {
			continue
		}
		g, ok := byID[row.ClusterID]
		if !ok {
			g = &ClusterGroup{ClusterID: row.ClusterID}
			byID[row.ClusterID] = g
			ids = append(ids, row.ClusterID)
		}
		g.Faces = append(g.Faces, row)
	}

	sort.Ints(ids)
	groups := make([]ClusterGroup, 0, len(ids))
	for _, id := range ids {
		groups = append(groups, *byID[id])
	}
	return groups
}

// Members returns the faces of one cluster. Noise ids and ids without rows
// yield ErrClusterNotFound.
func (r *ClusteringResult) Members(clusterID int) ([]ClusteredFace, error) {
	if clusterID == NoiseClusterID {
		return nil, fmt.Errorf("%w: %d", ErrClusterNotFound, clusterID)
	}
	var faces []ClusteredFace
	for i := range r.Rows {
		if r.Rows[i].ClusterID == clusterID {
			faces = append(faces, r.Rows[i])
		}
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrClusterNotFound, clusterID)
	}
	return faces, nil
}

// ImagePaths returns the distinct images of one cluster in first-seen order.
func (r *ClusteringResult) ImagePaths(clusterID int) ([]string, error) {
	faces, err := r.Members(clusterID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(faces))
	paths := make([]string, 0, len(faces))
	for i := range faces {
		p := faces[i].ImagePath
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	return paths, nil
}

// SaveClusteringResult rewrites the clustering result file atomically.
func SaveClusteringResult(path string, result *ClusteringResult) error {
	result.Version = clusteringResultVersion
	if err := writeGobAtomic(path, result); err != nil {
		return fmt.Errorf("saving clustering result: %w", err)
	}
	return nil
}

// LoadClusteringResult reads the clustering result file. A missing file
// yields ErrNoClusteringResult and an undecodable one ErrCorruptStore.
func LoadClusteringResult(path string) (*ClusteringResult, error) {
	var result ClusteringResult
	if err := readGob(path, &result); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoClusteringResult, path)
		}
		if errors.Is(err, ErrCorruptStore) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read clustering result: %w", err)
	}
	if result.Version != clusteringResultVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptStore, path, result.Version)
	}
	return &result, nil
}

// ClusterFile reads the clustering result from disk on every call, so a
// long-running reader picks up new cluster builder runs.
type ClusterFile struct {
	path string
}

// NewClusterFile creates a reader for the clustering result at path.
func NewClusterFile(path string) *ClusterFile {
	return &ClusterFile{path: path}
}

// Result loads the current clustering result.
func (f *ClusterFile) Result(ctx context.Context) (*ClusteringResult, error) {
	return LoadClusteringResult(f.path)
}
