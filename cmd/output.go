package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/gallery"
)

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// openGallery opens the configured name store and returns a gallery over
// the clustering result file. The returned func closes the name store.
func openGallery(ctx context.Context, cfg *config.Config) (*gallery.Service, func(), error) {
	names, err := database.OpenNameStore(ctx, &cfg.Naming)
	if err != nil {
		return nil, nil, err
	}
	svc := gallery.NewService(database.NewClusterFile(cfg.Store.ClustersPath()), names)
	return svc, func() { names.Close() }, nil
}
