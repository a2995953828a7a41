package indexer

import (
	"errors"
	"fmt"
)

// ErrInvalidSource is returned when the image root is missing or not a directory.
var ErrInvalidSource = errors.New("invalid image source")

// Status is the outcome of processing one candidate image.
type Status string

const (
	StatusIndexed Status = "indexed"
	StatusNoFaces Status = "no_faces"
	StatusFailed  Status = "failed"
)

// Stage names the step at which an image failed.
type Stage string

const (
	StageRead   Stage = "read"
	StageDecode Stage = "decode"
	StageDetect Stage = "detect"
	StageEncode Stage = "encode"
)

// ImageError describes why a single image was skipped.
type ImageError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Path, e.Stage, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// ImageResult is the outcome for one candidate image.
type ImageResult struct {
	Path    string
	Status  Status
	Faces   int
	FaceIDs []int64
	Err     *ImageError
}

// Summary describes one indexer run.
type Summary struct {
	Root string
	// Eligible is the number of images found under Root.
	Eligible int
	// AlreadyIndexed is the number of eligible images skipped as seen.
	AlreadyIndexed int
	// Candidates is the number of images processed in this run.
	Candidates int
	Indexed    int
	NoFaces    int
	Failed     int
	// FacesFound counts faces added in this run.
	FacesFound int
	// TotalFaces is the store size after the run.
	TotalFaces int
	// UpToDate is set when there was nothing to process and no write happened.
	UpToDate              bool
	RecoveredCorruptStore bool
	Results               []ImageResult
}

// tally fills the per-image counters from the result list.
func (s *Summary) tally(results []ImageResult) {
	s.Results = results
	s.Candidates = len(results)
	s.Indexed, s.NoFaces, s.Failed, s.FacesFound = 0, 0, 0, 0
	for i := range results {
		switch results[i].Status {
		case StatusIndexed:
			s.Indexed++
			s.FacesFound += results[i].Faces
		case StatusNoFaces:
			s.NoFaces++
		case StatusFailed:
			s.Failed++
		}
	}
}

// Errors returns the per-image errors of the run in processing order.
func (s *Summary) Errors() []*ImageError {
	var errs []*ImageError
	for i := range s.Results {
		if s.Results[i].Err != nil {
			errs = append(errs, s.Results[i].Err)
		}
	}
	return errs
}
