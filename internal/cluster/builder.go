package cluster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
)

// Builder recomputes the clustering result from the whole embedding store.
type Builder struct {
	cfg        config.ClusteringConfig
	storePath  string
	resultPath string
	now        func() time.Time
	newRunID   func() string
}

// NewBuilder creates a builder reading storePath and writing resultPath.
func NewBuilder(cfg config.ClusteringConfig, storePath, resultPath string) *Builder {
	return &Builder{
		cfg:        cfg,
		storePath:  storePath,
		resultPath: resultPath,
		now:        func() time.Time { return time.Now().UTC() },
		newRunID:   func() string { return uuid.New().String() },
	}
}

// Report summarises one clustering run.
type Report struct {
	RunID     string
	Epsilon   float64
	MinPoints int
	database.ClusteringStats
}

// Lines returns the operator-facing summary.
func (r *Report) Lines() []string {
	return []string{
		fmt.Sprintf("Found %d distinct people (clusters).", r.Clusters),
		fmt.Sprintf("%d faces were considered unique and not clustered.", r.Noise),
	}
}

// Run clusters every face record and atomically replaces the result file.
// Nothing is written when the store is missing, empty, corrupted or holds
// embeddings of different dimensions.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	if b.cfg.Epsilon <= 0 || b.cfg.MinPoints < 1 {
		return nil, fmt.Errorf("invalid clustering parameters: epsilon=%v min_points=%d", b.cfg.Epsilon, b.cfg.MinPoints)
	}

	store, err := database.LoadEmbeddingStore(b.storePath)
	if err != nil {
		return nil, err
	}
	if store.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", database.ErrEmptyStore, b.storePath)
	}
	if _, err := store.Dim(); err != nil {
		return nil, err
	}

	index, err := NewNeighborIndex(b.cfg.NeighborIndex, b.cfg.MinPoints)
	if err != nil {
		return nil, err
	}

	records := store.Records()
	points := make([][]float32, len(records))
	for i := range records {
		points[i] = records[i].Embedding
	}

	log.Debug("Clustering faces", "faces", len(points), "epsilon", b.cfg.Epsilon,
		"min_points", b.cfg.MinPoints, "index", b.cfg.NeighborIndex)

	labels, err := DBSCAN(ctx, points, b.cfg.Epsilon, b.cfg.MinPoints, index)
	if err != nil {
		return nil, err
	}

	rows := make([]database.ClusteredFace, len(records))
	for i := range records {
		rows[i] = database.ClusteredFace{FaceRecord: records[i], ClusterID: labels[i]}
	}

	result := &database.ClusteringResult{
		RunID:     b.newRunID(),
		CreatedAt: b.now(),
		Epsilon:   b.cfg.Epsilon,
		MinPoints: b.cfg.MinPoints,
		Rows:      rows,
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := database.SaveClusteringResult(b.resultPath, result); err != nil {
		return nil, err
	}

	return &Report{
		RunID:           result.RunID,
		Epsilon:         result.Epsilon,
		MinPoints:       result.MinPoints,
		ClusteringStats: result.Stats(),
	}, nil
}

// IsNoData reports whether err means there was nothing to cluster.
func IsNoData(err error) bool {
	return errors.Is(err, database.ErrMissingStore) || errors.Is(err, database.ErrEmptyStore)
}
