package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/gallery"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// Not-found messages of the gallery API.
const (
	errClustersFileNotFound = "Clusters file not found."
	errClusterIDNotFound    = "Cluster ID not found."
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondGalleryError maps gallery and store errors to status codes.
func respondGalleryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrNoClusteringResult):
		respondError(w, http.StatusNotFound, errClustersFileNotFound)
	case errors.Is(err, database.ErrClusterNotFound):
		respondError(w, http.StatusNotFound, errClusterIDNotFound)
	case errors.Is(err, gallery.ErrInvalidName), errors.Is(err, gallery.ErrInvalidClusterID):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("Request failed", "path", sanitizeForLog(r.URL.Path), "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
