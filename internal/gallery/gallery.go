// Package gallery is the read and naming surface over the clustering result
// used by the CLI and the web server.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/database"
)

var (
	// ErrInvalidName is returned for names that are empty after cleaning or too long.
	ErrInvalidName = errors.New("invalid cluster name")
	// ErrInvalidClusterID is returned for negative cluster ids.
	ErrInvalidClusterID = errors.New("invalid cluster id")
)

// ClusterSummary describes one non-noise cluster.
type ClusterSummary struct {
	ClusterID           int    `json:"cluster_id"`
	Name                string `json:"name"`
	Named               bool   `json:"named"`
	FaceCount           int    `json:"face_count"`
	RepresentativeImage string `json:"representative_image"`
	// Stale is set when the name was given against an earlier clustering run.
	Stale bool `json:"stale"`
}

// ClusterDetail is one cluster with its images.
type ClusterDetail struct {
	ClusterID int
	Name      string
	Named     bool
	Stale     bool
	Images    []string
}

// Service answers gallery queries. The clustering result is re-read on
// every call so new cluster builder runs show up without a restart.
type Service struct {
	clusters database.ClusterReader
	names    database.NameWriter
	now      func() time.Time
}

// NewService creates a gallery over a clustering result and a name store.
func NewService(clusters database.ClusterReader, names database.NameWriter) *Service {
	return &Service{
		clusters: clusters,
		names:    names,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DefaultName is the display name of an unnamed cluster.
func DefaultName(clusterID int) string {
	return fmt.Sprintf("%s %d", constants.DefaultNamePrefix, clusterID+1)
}

// ListClusters returns all non-noise clusters sorted by id. A non-empty
// query keeps clusters whose display name contains it, ignoring case and
// diacritics.
func (s *Service) ListClusters(ctx context.Context, query string) ([]ClusterSummary, error) {
	result, err := s.clusters.Result(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.names.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list names: %w", err)
	}

	needle := NormalizePersonName(query)
	groups := result.Groups()
	summaries := make([]ClusterSummary, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		summary := ClusterSummary{
			ClusterID:           g.ClusterID,
			Name:                DefaultName(g.ClusterID),
			FaceCount:           len(g.Faces),
			RepresentativeImage: g.Representative(),
		}
		if name, ok := names[g.ClusterID]; ok {
			summary.Name = name.Name
			summary.Named = true
			summary.Stale = isStale(name, result)
		}
		if needle != "" && !strings.Contains(NormalizePersonName(summary.Name), needle) {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ClusterImages returns the distinct image paths of a cluster in first-seen order.
func (s *Service) ClusterImages(ctx context.Context, clusterID int) ([]string, error) {
	result, err := s.clusters.Result(ctx)
	if err != nil {
		return nil, err
	}
	return result.ImagePaths(clusterID)
}

// Cluster returns a cluster with its display name and images.
func (s *Service) Cluster(ctx context.Context, clusterID int) (*ClusterDetail, error) {
	result, err := s.clusters.Result(ctx)
	if err != nil {
		return nil, err
	}
	images, err := result.ImagePaths(clusterID)
	if err != nil {
		return nil, err
	}

	detail := &ClusterDetail{ClusterID: clusterID, Name: DefaultName(clusterID), Images: images}
	name, err := s.names.GetName(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get name: %w", err)
	}
	if name != nil {
		detail.Name = name.Name
		detail.Named = true
		detail.Stale = isStale(*name, result)
	}
	return detail, nil
}

// NameCluster upserts the display name of a cluster of the current result.
func (s *Service) NameCluster(ctx context.Context, clusterID int, name string) (*database.ClusterName, error) {
	if clusterID < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidClusterID, clusterID)
	}
	cleaned, ok := CleanDisplayName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	result, err := s.clusters.Result(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := result.Members(clusterID); err != nil {
		return nil, err
	}

	record := database.ClusterName{
		ClusterID: clusterID,
		Name:      cleaned,
		RunID:     result.RunID,
		UpdatedAt: s.now(),
	}
	if err := s.names.SetName(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save name: %w", err)
	}
	return &record, nil
}

// ImageRoot returns the deepest directory containing every clustered image.
// A result without rows has no root and reports ErrNoClusteringResult.
func (s *Service) ImageRoot(ctx context.Context) (string, error) {
	result, err := s.clusters.Result(ctx)
	if err != nil {
		return "", err
	}
	if len(result.Rows) == 0 {
		return "", fmt.Errorf("%w: result holds no faces", database.ErrNoClusteringResult)
	}
	paths := make([]string, len(result.Rows))
	for i := range result.Rows {
		paths[i] = result.Rows[i].ImagePath
	}
	return CommonRoot(paths), nil
}

func isStale(name database.ClusterName, result *database.ClusteringResult) bool {
	return name.RunID != "" && name.RunID != result.RunID
}
