package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show embedding store and clustering result statistics",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("Embedding store: %s\n", cfg.Store.EmbeddingsPath())
	store, err := database.LoadEmbeddingStore(cfg.Store.EmbeddingsPath())
	switch {
	case errors.Is(err, database.ErrMissingStore):
		fmt.Println("  not created yet, run 'photo-faces index'")
	case err != nil:
		fmt.Printf("  unreadable: %v\n", err)
	default:
		fmt.Printf("  Faces:             %d\n", store.Len())
		fmt.Printf("  Processed images:  %d\n", store.SeenCount())
		fmt.Printf("  Images with faces: %d\n", store.ImagesWithFaces())
		fmt.Printf("  Next face id:      %d\n", store.NextFaceID())
	}

	fmt.Printf("\nClustering result: %s\n", cfg.Store.ClustersPath())
	result, err := database.LoadClusteringResult(cfg.Store.ClustersPath())
	switch {
	case errors.Is(err, database.ErrNoClusteringResult):
		fmt.Println("  not created yet, run 'photo-faces cluster'")
	case err != nil:
		fmt.Printf("  unreadable: %v\n", err)
	default:
		stats := result.Stats()
		fmt.Printf("  Run:        %s (%s)\n", result.RunID, result.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("  Parameters: epsilon=%g min-points=%d\n", result.Epsilon, result.MinPoints)
		fmt.Printf("  Faces:      %d\n", stats.Faces)
		fmt.Printf("  Clusters:   %d\n", stats.Clusters)
		fmt.Printf("  Noise:      %d\n", stats.Noise)
		if store != nil && store.Len() != stats.Faces {
			fmt.Printf("  Out of date: the store now holds %d face(s), run 'photo-faces cluster'\n", store.Len())
		}
	}
	return nil
}
