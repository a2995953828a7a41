// Package indexer walks an image library, detects faces in images it has not
// seen yet and appends their embeddings to the embedding store.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/recognition"
)

// Options tune a single run.
type Options struct {
	// Limit caps the number of candidates processed; 0 means no limit.
	Limit int
	// OnStart is called once with the number of candidates before processing starts.
	OnStart func(candidates int)
	// Progress is called after each candidate image.
	Progress func(ImageResult)
}

// Indexer appends face embeddings of new images to the embedding store.
type Indexer struct {
	library    config.LibraryConfig
	storePath  string
	recognizer recognition.Recognizer
	now        func() time.Time
}

// New creates an indexer writing to the store at storePath.
func New(library config.LibraryConfig, storePath string, recognizer recognition.Recognizer) *Indexer {
	return &Indexer{
		library:    library,
		storePath:  storePath,
		recognizer: recognizer,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run indexes every eligible image under root that the store has not seen.
// The store is rewritten once at the end, and only if the run changed it.
func (ix *Indexer) Run(ctx context.Context, root string, opts Options) (*Summary, error) {
	root, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	paths, err := newWalker(root, ix.library.Extensions, ix.library.IgnoreFile).Walk()
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	summary := &Summary{Root: root, Eligible: len(paths)}

	store, err := ix.loadStore(summary)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, p := range paths {
		if !store.IsSeen(p) {
			candidates = append(candidates, p)
		}
	}
	summary.AlreadyIndexed = len(paths) - len(candidates)
	if opts.Limit > 0 && len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
	}

	if len(candidates) == 0 {
		summary.UpToDate = true
		summary.TotalFaces = store.Len()
		return summary, nil
	}

	dim, err := store.Dim()
	if err != nil {
		return nil, err
	}

	if opts.OnStart != nil {
		opts.OnStart(len(candidates))
	}

	results := make([]ImageResult, 0, len(candidates))
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := ix.processImage(ctx, path, dim)
		if result.Status != StatusFailed {
			// Images without faces are recorded too so they are not revisited.
			embeddings := result.embeddings
			result.FaceIDs = store.Append(path, embeddings, ix.now())
			if dim == 0 && len(embeddings) > 0 {
				dim = len(embeddings[0])
			}
		} else {
			log.Warn("Skipping image", "path", path, "stage", result.Err.Stage, "error", result.Err.Err)
		}

		if opts.Progress != nil {
			opts.Progress(result.ImageResult)
		}
		results = append(results, result.ImageResult)
	}

	if store.Dirty() {
		if err := store.Save(); err != nil {
			return nil, err
		}
	}

	summary.tally(results)
	summary.TotalFaces = store.Len()
	return summary, nil
}

// resolveRoot makes root absolute and checks it is a directory.
func resolveRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: no image root configured", ErrInvalidSource)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidSource, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidSource, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidSource, abs)
	}
	return abs, nil
}

// loadStore opens the embedding store. A missing store starts empty and a
// corrupted one is replaced by an empty store; any other read error aborts.
func (ix *Indexer) loadStore(summary *Summary) (*database.EmbeddingStore, error) {
	store, err := database.LoadEmbeddingStore(ix.storePath)
	switch {
	case err == nil:
		return store, nil
	case errors.Is(err, database.ErrMissingStore):
		log.Debug("No embedding store yet, starting empty", "path", ix.storePath)
		return database.NewEmbeddingStore(ix.storePath), nil
	case errors.Is(err, database.ErrCorruptStore):
		log.Warn("Embedding store is corrupted, rebuilding from scratch", "path", ix.storePath, "error", err)
		summary.RecoveredCorruptStore = true
		return database.NewEmbeddingStore(ix.storePath), nil
	default:
		return nil, err
	}
}

// processed carries the embeddings alongside the public result.
type processed struct {
	ImageResult
	embeddings [][]float32
}

func (ix *Indexer) processImage(ctx context.Context, path string, dim int) processed {
	fail := func(stage Stage, err error) processed {
		return processed{ImageResult: ImageResult{
			Path:   path,
			Status: StatusFailed,
			Err:    &ImageError{Path: path, Stage: stage, Err: err},
		}}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(StageRead, err)
	}

	upload, err := recognition.ResizeImage(data, ix.library.MaxImageSize)
	if err != nil {
		return fail(StageDecode, err)
	}

	boxes, err := ix.recognizer.DetectFaces(ctx, upload)
	if err != nil {
		return fail(StageDetect, err)
	}
	if len(boxes) == 0 {
		return processed{ImageResult: ImageResult{Path: path, Status: StatusNoFaces}}
	}

	embeddings, err := ix.recognizer.EncodeFaces(ctx, upload, boxes)
	if err != nil {
		return fail(StageEncode, err)
	}
	if len(embeddings) != len(boxes) {
		return fail(StageEncode, fmt.Errorf("expected %d embeddings, got %d", len(boxes), len(embeddings)))
	}
	want := dim
	for i, emb := range embeddings {
		if want == 0 {
			want = len(emb)
		}
		if len(emb) == 0 || len(emb) != want {
			return fail(StageEncode, fmt.Errorf("%w: face %d has %d values, want %d",
				database.ErrDimensionMismatch, i, len(emb), want))
		}
	}

	return processed{
		ImageResult: ImageResult{Path: path, Status: StatusIndexed, Faces: len(embeddings)},
		embeddings:  embeddings,
	}
}
