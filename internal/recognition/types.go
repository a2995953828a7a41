// Package recognition talks to the external face-recognition service and
// prepares image bytes for upload.
package recognition

import "context"

// Box is a face bounding box in pixel coordinates of the uploaded image.
type Box struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// Recognizer detects faces and computes one embedding per detected face.
type Recognizer interface {
	// DetectFaces returns the bounding boxes of all faces in the image.
	// An image without faces yields an empty slice and no error.
	DetectFaces(ctx context.Context, image []byte) ([]Box, error)
	// EncodeFaces returns exactly one embedding per box, in box order.
	EncodeFaces(ctx context.Context, image []byte, boxes []Box) ([][]float32, error)
}

// toWire converts boxes into the [top, right, bottom, left] arrays the service uses.
func toWire(boxes []Box) [][4]int {
	out := make([][4]int, len(boxes))
	for i, b := range boxes {
		out[i] = [4]int{b.Top, b.Right, b.Bottom, b.Left}
	}
	return out
}

func fromWire(boxes [][4]int) []Box {
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		out[i] = Box{Top: b[0], Right: b[1], Bottom: b[2], Left: b[3]}
	}
	return out
}
