package database

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

const embeddingStoreVersion = 1

// embeddingStoreFile is the persisted envelope of the embedding store.
type embeddingStoreFile struct {
	Version    int
	SavedAt    time.Time
	NextFaceID int64
	Records    []FaceRecord
	Processed  []ProcessedImage
}

// EmbeddingStore holds every face record in memory. It is loaded whole,
// appended to, and written back whole by Save.
type EmbeddingStore struct {
	path       string
	records    []FaceRecord
	processed  []ProcessedImage
	seen       map[string]struct{}
	nextFaceID int64
	dirty      bool
}

// NewEmbeddingStore returns an empty store that will be saved to path.
func NewEmbeddingStore(path string) *EmbeddingStore {
	return &EmbeddingStore{
		path: path,
		seen: make(map[string]struct{}),
	}
}

// LoadEmbeddingStore reads the store at path. A missing file yields
// ErrMissingStore and an undecodable one ErrCorruptStore.
func LoadEmbeddingStore(path string) (*EmbeddingStore, error) {
	var file embeddingStoreFile
	if err := readGob(path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingStore, path)
		}
		if errors.Is(err, ErrCorruptStore) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read embedding store: %w", err)
	}

	if file.Version != embeddingStoreVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptStore, path, file.Version)
	}

	s := NewEmbeddingStore(path)
	s.records = file.Records
	s.processed = file.Processed
	s.nextFaceID = file.NextFaceID

	for i := range s.records {
		s.seen[s.records[i].ImagePath] = struct{}{}
		if id := s.records[i].FaceID; id >= s.nextFaceID {
			s.nextFaceID = id + 1
		}
	}
	for i := range s.processed {
		s.seen[s.processed[i].ImagePath] = struct{}{}
	}

	return s, nil
}

// Path returns the file the store is saved to.
func (s *EmbeddingStore) Path() string {
	return s.path
}

// Len returns the number of face records.
func (s *EmbeddingStore) Len() int {
	return len(s.records)
}

// Records returns the face records in insertion order. Callers must not modify the slice.
func (s *EmbeddingStore) Records() []FaceRecord {
	return s.records
}

// Processed returns the processed-image ledger in insertion order.
func (s *EmbeddingStore) Processed() []ProcessedImage {
	return s.processed
}

// IsSeen reports whether the image already went through detection, with or without faces.
func (s *EmbeddingStore) IsSeen(imagePath string) bool {
	_, ok := s.seen[imagePath]
	return ok
}

// SeenCount returns the number of distinct images the store knows about.
func (s *EmbeddingStore) SeenCount() int {
	return len(s.seen)
}

// ImagesWithFaces returns the number of distinct images that have at least one record.
func (s *EmbeddingStore) ImagesWithFaces() int {
	paths := make(map[string]struct{})
	for i := range s.records {
		paths[s.records[i].ImagePath] = struct{}{}
	}
	return len(paths)
}

// NextFaceID returns the id the next appended face will get.
func (s *EmbeddingStore) NextFaceID() int64 {
	return s.nextFaceID
}

// Append adds one record per embedding for imagePath and marks the image as
// processed. An empty embeddings slice only marks the image. Returns the new face ids.
func (s *EmbeddingStore) Append(imagePath string, embeddings [][]float32, at time.Time) []int64 {
	ids := make([]int64, 0, len(embeddings))
	for _, emb := range embeddings {
		id := s.nextFaceID
		s.nextFaceID++
		s.records = append(s.records, FaceRecord{
			FaceID:    id,
			ImagePath: imagePath,
			Embedding: emb,
		})
		ids = append(ids, id)
	}

	s.processed = append(s.processed, ProcessedImage{
		ImagePath:   imagePath,
		FaceCount:   len(embeddings),
		ProcessedAt: at,
	})
	s.seen[imagePath] = struct{}{}
	s.dirty = true

	return ids
}

// Dirty reports whether the store changed since it was loaded or last saved.
func (s *EmbeddingStore) Dirty() bool {
	return s.dirty
}

// Dim returns the shared embedding dimension, 0 for an empty store.
func (s *EmbeddingStore) Dim() (int, error) {
	if len(s.records) == 0 {
		return 0, nil
	}
	dim := len(s.records[0].Embedding)
	for i := range s.records {
		if len(s.records[i].Embedding) != dim {
			return 0, fmt.Errorf("%w: face %d has %d values, face %d has %d",
				ErrDimensionMismatch, s.records[0].FaceID, dim, s.records[i].FaceID, len(s.records[i].Embedding))
		}
	}
	return dim, nil
}

// Save rewrites the whole store atomically.
func (s *EmbeddingStore) Save() error {
	file := embeddingStoreFile{
		Version:    embeddingStoreVersion,
		SavedAt:    time.Now().UTC(),
		NextFaceID: s.nextFaceID,
		Records:    s.records,
		Processed:  s.processed,
	}
	if err := writeGobAtomic(s.path, &file); err != nil {
		return fmt.Errorf("saving embedding store: %w", err)
	}
	s.dirty = false
	return nil
}
