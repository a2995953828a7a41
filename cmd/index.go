package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/indexer"
	"github.com/kozaktomas/photo-faces/internal/recognition"
)

var indexCmd = &cobra.Command{
	Use:   "index [library-path]",
	Short: "Detect faces in new photos and store their embeddings",
	Long: `Walk the photo library, send every image that has not been processed yet
to the face service and append one embedding per detected face to the
embedding store.

Images already in the store are skipped, including images in which no face
was found. Images that fail to load or that the face service rejects are
reported and retried on the next run. The store is rewritten once at the
end of the run.

The library path defaults to FACES_LIBRARY_PATH.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().Int("limit", 0, "Process at most this many new images (0 = no limit)")
	indexCmd.Flags().Bool("json", false, "Output as JSON")
}

// IndexFailure is one skipped image in JSON output.
type IndexFailure struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// IndexResult is the JSON output of the index command.
type IndexResult struct {
	Success               bool           `json:"success"`
	Root                  string         `json:"root"`
	Eligible              int            `json:"eligible"`
	AlreadyIndexed        int            `json:"already_indexed"`
	Processed             int            `json:"processed"`
	Indexed               int            `json:"indexed"`
	NoFaces               int            `json:"no_faces"`
	Failed                int            `json:"failed"`
	FacesFound            int            `json:"faces_found"`
	TotalFaces            int            `json:"total_faces"`
	UpToDate              bool           `json:"up_to_date"`
	RecoveredCorruptStore bool           `json:"recovered_corrupt_store"`
	Failures              []IndexFailure `json:"failures,omitempty"`
	DurationMs            int64          `json:"duration_ms"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	limit := mustGetInt(cmd, "limit")
	jsonOutput := mustGetBool(cmd, "json")

	root := cfg.Library.Root
	if len(args) > 0 {
		root = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ix := indexer.New(cfg.Library, cfg.Store.EmbeddingsPath(), recognition.NewClient(cfg.Recognition))

	var bar *progressbar.ProgressBar
	opts := indexer.Options{Limit: limit}
	if !jsonOutput {
		opts.OnStart = func(n int) {
			fmt.Printf("Found %d new image(s) to process\n\n", n)
			bar = progressbar.NewOptions(n,
				progressbar.OptionSetDescription("Indexing"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("images"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		opts.Progress = func(r indexer.ImageResult) {
			if r.Status == indexer.StatusIndexed {
				bar.Clear()
				fmt.Printf("[Found %d face(s)] in %s\n", r.Faces, filepath.Base(r.Path))
			}
			bar.Add(1)
		}
	}

	startTime := time.Now()
	summary, err := ix.Run(ctx, root, opts)
	if err != nil {
		return err
	}
	if bar != nil {
		fmt.Println()
	}
	duration := time.Since(startTime)

	if jsonOutput {
		return outputJSON(newIndexResult(summary, duration))
	}
	printIndexSummary(summary, duration)
	return nil
}

func newIndexResult(s *indexer.Summary, duration time.Duration) IndexResult {
	result := IndexResult{
		Success:               true,
		Root:                  s.Root,
		Eligible:              s.Eligible,
		AlreadyIndexed:        s.AlreadyIndexed,
		Processed:             s.Candidates,
		Indexed:               s.Indexed,
		NoFaces:               s.NoFaces,
		Failed:                s.Failed,
		FacesFound:            s.FacesFound,
		TotalFaces:            s.TotalFaces,
		UpToDate:              s.UpToDate,
		RecoveredCorruptStore: s.RecoveredCorruptStore,
		DurationMs:            duration.Milliseconds(),
	}
	for _, e := range s.Errors() {
		result.Failures = append(result.Failures, IndexFailure{
			Path:  e.Path,
			Stage: string(e.Stage),
			Error: e.Err.Error(),
		})
	}
	return result
}

func printIndexSummary(s *indexer.Summary, duration time.Duration) {
	if s.RecoveredCorruptStore {
		fmt.Println("Warning: the embedding store was corrupted and has been rebuilt.")
	}
	if s.UpToDate {
		fmt.Printf("No new images to process (%d already indexed).\n", s.AlreadyIndexed)
		fmt.Printf("Embedding store holds %d face(s).\n", s.TotalFaces)
		return
	}

	fmt.Printf("Processed %d new image(s) in %s\n", s.Candidates, formatDuration(duration))
	fmt.Printf("  With faces:     %d\n", s.Indexed)
	fmt.Printf("  Without faces:  %d\n", s.NoFaces)
	fmt.Printf("  Failed:         %d\n", s.Failed)
	fmt.Printf("  Faces found:    %d\n", s.FacesFound)
	fmt.Printf("Embedding store holds %d face(s).\n", s.TotalFaces)

	if remaining := s.Eligible - s.AlreadyIndexed - s.Candidates; remaining > 0 {
		fmt.Printf("%d image(s) left for the next run.\n", remaining)
	}
	for _, e := range s.Errors() {
		fmt.Printf("  ! %s (%s): %v\n", e.Path, e.Stage, e.Err)
	}
}
