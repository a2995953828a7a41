package web

import (
	"io"
	"net/http"

	"github.com/kozaktomas/photo-faces/internal/web/handlers"
	"github.com/kozaktomas/photo-faces/internal/web/static"
)

func (s *Server) setupRoutes() {
	clustersHandler := handlers.NewClustersHandler(s.gallery)
	imagesHandler := handlers.NewImagesHandler(s.gallery, s.config.Library.Extensions)

	s.router.Get("/api/health", handlers.HealthCheck)
	s.router.Get("/api/clusters", clustersHandler.List)
	s.router.Get("/api/cluster/{id}", clustersHandler.Get)
	s.router.Post("/api/name-cluster", clustersHandler.Name)

	s.router.Handle(handlers.ImagesPrefix+"*", imagesHandler)

	s.router.Get("/", s.serveIndex)
}

// serveIndex serves the embedded labelling page
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := static.GetFileSystem().Open("/index.html")
	if err != nil {
		http.Error(w, "index page missing", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
