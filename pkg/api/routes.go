package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// API routes with method-specific routing
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/versions", s.HandleVersions)
	mux.HandleFunc("GET /api/live", s.HandleLive)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
