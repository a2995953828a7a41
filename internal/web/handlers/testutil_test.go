package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/database/mock"
	"github.com/kozaktomas/photo-faces/internal/gallery"
)

// testResult is a clustering result with images below /photos: cluster 0
// has two faces in two images, cluster 2 has one image and one face is noise.
func testResult() *database.ClusteringResult {
	face := func(id int64, path string, cluster int) database.ClusteredFace {
		return database.ClusteredFace{
			FaceRecord: database.FaceRecord{FaceID: id, ImagePath: path, Embedding: []float32{0}},
			ClusterID:  cluster,
		}
	}
	return &database.ClusteringResult{
		RunID: "run-1",
		Rows: []database.ClusteredFace{
			face(0, "/photos/2020/a b.jpg", 0),
			face(1, "/photos/2021/c.jpg", 0),
			face(2, "/photos/d.jpg", -1),
			face(3, "/photos/2021/e.jpg", 2),
			face(4, "/photos/2021/e.jpg", 2),
		},
	}
}

// newTestGallery wires a gallery over mocks.
func newTestGallery(result *database.ClusteringResult) (*gallery.Service, *mock.MockNameStore) {
	names := mock.NewMockNameStore()
	return gallery.NewService(mock.NewMockClusterReader(result), names), names
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
