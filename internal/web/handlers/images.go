package handlers

import (
	"net/http"
	"path"
	"strings"
)

// ImagesHandler serves image files below the gallery image root.
type ImagesHandler struct {
	gallery    Gallery
	extensions map[string]bool
}

// NewImagesHandler creates a handler that only serves files with the given extensions.
func NewImagesHandler(g Gallery, extensions []string) *ImagesHandler {
	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[strings.ToLower(ext)] = true
	}
	return &ImagesHandler{gallery: g, extensions: extSet}
}

// ServeHTTP serves GET /images/*. The root is resolved per request so a new
// clustering result is picked up without a restart.
func (h *ImagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, strings.TrimSuffix(ImagesPrefix, "/"))
	if !h.extensions[strings.ToLower(path.Ext(name))] {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}

	root, err := h.gallery.ImageRoot(r.Context())
	if err != nil {
		respondGalleryError(w, r, err)
		return
	}
	if root == "" {
		// http.Dir("") would serve the working directory.
		respondError(w, http.StatusNotFound, "image not found")
		return
	}

	http.StripPrefix(strings.TrimSuffix(ImagesPrefix, "/"), http.FileServer(http.Dir(root))).ServeHTTP(w, r)
}
