package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-faces/internal/cluster"
	"github.com/kozaktomas/photo-faces/internal/config"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Group stored face embeddings into people",
	Long: `Run DBSCAN over every embedding in the store and replace the clustering
result. Two faces are close when their Euclidean distance is at most
--epsilon; a person needs at least --min-points close faces (including the
face itself) to form a cluster. Faces that belong to no cluster are noise.

Cluster ids are recomputed from scratch on every run, so names given in the
web UI may point at a different group after re-clustering.`,
	Args: cobra.NoArgs,
	RunE: runCluster,
}

func init() {
	rootCmd.AddCommand(clusterCmd)

	clusterCmd.Flags().Float64("epsilon", 0, "Neighbourhood radius (default from CLUSTER_EPSILON or 0.4)")
	clusterCmd.Flags().Int("min-points", 0, "Minimum neighbourhood size (default from CLUSTER_MIN_POINTS or 2)")
	clusterCmd.Flags().String("index", "", "Neighbour search: exact or hnsw (default from CLUSTER_NEIGHBOR_INDEX)")
	clusterCmd.Flags().Bool("json", false, "Output as JSON")
}

// ClusterResult is the JSON output of the cluster command.
type ClusterResult struct {
	Success    bool    `json:"success"`
	RunID      string  `json:"run_id"`
	Epsilon    float64 `json:"epsilon"`
	MinPoints  int     `json:"min_points"`
	Faces      int     `json:"faces"`
	Clusters   int     `json:"clusters"`
	Noise      int     `json:"noise"`
	DurationMs int64   `json:"duration_ms"`
}

// applyClusterFlags overrides the clustering config with explicitly set flags.
func applyClusterFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("epsilon") {
		cfg.Clustering.Epsilon = mustGetFloat64(cmd, "epsilon")
	}
	if cmd.Flags().Changed("min-points") {
		cfg.Clustering.MinPoints = mustGetInt(cmd, "min-points")
	}
	if cmd.Flags().Changed("index") {
		cfg.Clustering.NeighborIndex = mustGetString(cmd, "index")
	}
	return cfg.Validate()
}

func runCluster(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyClusterFlags(cmd, cfg); err != nil {
		return err
	}
	jsonOutput := mustGetBool(cmd, "json")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := cluster.NewBuilder(cfg.Clustering, cfg.Store.EmbeddingsPath(), cfg.Store.ClustersPath())

	startTime := time.Now()
	report, err := builder.Run(ctx)
	if err != nil {
		if cluster.IsNoData(err) {
			return fmt.Errorf("nothing to cluster, run 'photo-faces index' first: %w", err)
		}
		return err
	}
	duration := time.Since(startTime)

	if jsonOutput {
		return outputJSON(ClusterResult{
			Success:    true,
			RunID:      report.RunID,
			Epsilon:    report.Epsilon,
			MinPoints:  report.MinPoints,
			Faces:      report.Faces,
			Clusters:   report.Clusters,
			Noise:      report.Noise,
			DurationMs: duration.Milliseconds(),
		})
	}

	fmt.Printf("Clustered %d face(s) with epsilon=%g, min-points=%d in %s\n",
		report.Faces, report.Epsilon, report.MinPoints, formatDuration(duration))
	for _, line := range report.Lines() {
		fmt.Println(line)
	}
	return nil
}
