package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/gallery"
)

// ImagesPrefix is the URL prefix under which clustered images are served.
const ImagesPrefix = "/images/"

// Gallery is the read and naming surface the handlers need.
type Gallery interface {
	ListClusters(ctx context.Context, query string) ([]gallery.ClusterSummary, error)
	Cluster(ctx context.Context, clusterID int) (*gallery.ClusterDetail, error)
	NameCluster(ctx context.Context, clusterID int, name string) (*database.ClusterName, error)
	ImageRoot(ctx context.Context) (string, error)
}

// ClustersHandler serves the cluster listing and naming endpoints.
type ClustersHandler struct {
	gallery Gallery
}

// NewClustersHandler creates a new clusters handler
func NewClustersHandler(g Gallery) *ClustersHandler {
	return &ClustersHandler{gallery: g}
}

// ClusterResponse is the body of GET /api/cluster/{id}
type ClusterResponse struct {
	ClusterID int      `json:"cluster_id"`
	Name      string   `json:"name"`
	Named     bool     `json:"named"`
	Stale     bool     `json:"stale"`
	Images    []string `json:"images"`
}

// NameClusterRequest is the body of POST /api/name-cluster
type NameClusterRequest struct {
	ClusterID *int   `json:"cluster_id"`
	Name      string `json:"name"`
}

// List returns all clusters, optionally filtered by the q query parameter.
func (h *ClustersHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.gallery.ListClusters(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondGalleryError(w, r, err)
		return
	}
	root, err := h.gallery.ImageRoot(r.Context())
	if err != nil {
		respondGalleryError(w, r, err)
		return
	}

	for i := range summaries {
		summaries[i].RepresentativeImage = ImageURL(root, summaries[i].RepresentativeImage)
	}
	respondJSON(w, http.StatusOK, summaries)
}

// Get returns one cluster with its image URLs.
func (h *ClustersHandler) Get(w http.ResponseWriter, r *http.Request) {
	clusterID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cluster id")
		return
	}

	detail, err := h.gallery.Cluster(r.Context(), clusterID)
	if err != nil {
		respondGalleryError(w, r, err)
		return
	}
	root, err := h.gallery.ImageRoot(r.Context())
	if err != nil {
		respondGalleryError(w, r, err)
		return
	}

	images := make([]string, len(detail.Images))
	for i, p := range detail.Images {
		images[i] = ImageURL(root, p)
	}
	respondJSON(w, http.StatusOK, ClusterResponse{
		ClusterID: detail.ClusterID,
		Name:      detail.Name,
		Named:     detail.Named,
		Stale:     detail.Stale,
		Images:    images,
	})
}

// Name upserts the display name of a cluster.
func (h *ClustersHandler) Name(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodySize)

	var req NameClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.ClusterID == nil {
		respondError(w, http.StatusBadRequest, "cluster_id is required")
		return
	}

	if _, err := h.gallery.NameCluster(r.Context(), *req.ClusterID, req.Name); err != nil {
		respondGalleryError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// ImageURL maps an absolute image path below root to its /images/ URL.
// Paths outside root map to an empty string.
func ImageURL(root, path string) string {
	if path == "" || !gallery.IsWithin(root, path) {
		return ""
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return ImagesPrefix + strings.Join(parts, "/")
}
