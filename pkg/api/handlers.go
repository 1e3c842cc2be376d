package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docpane/docpane/pkg/docsearch"
	"github.com/docpane/docpane/pkg/facets"
	"github.com/docpane/docpane/pkg/results"
	"github.com/docpane/docpane/pkg/version"
)

// HandleSearch serves one-shot searches: one page of shaped results, no
// session state. Version overrides arrive as repeated "version" parameters
// of the form "group:version" and apply on top of the configured defaults.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}

	page := 0
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "Invalid page parameter", "Page must be a non-negative integer (pages are 0-based)")
			return
		}
		page = parsed
	}

	cfg := s.config()
	selection := facets.DefaultSelection(cfg.Groups)
	for _, override := range r.URL.Query()["version"] {
		group, ver, ok := strings.Cut(override, ":")
		if !ok {
			s.writeError(w, http.StatusBadRequest, "Invalid version parameter", "Version overrides use the form group:version")
			return
		}
		if err := selection.Select(cfg.Groups, group, ver); err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid version parameter", err.Error())
			return
		}
	}

	req := docsearch.Request{
		Query:   query,
		Page:    page,
		PerPage: cfg.Search.PageSize,
		Params:  cfg.Search.Params,
	}
	if cfg.Search.Filter != "" {
		req.Filter = cfg.Search.Filter
	} else {
		req.Tags = facets.Tags(cfg.Groups, selection, cfg.Search.Locale)
	}

	resp, err := s.backend.Search(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	items := results.ShapeHits(resp.Hits)
	s.writeJSON(w, http.StatusOK, SearchResponse{
		Query:      resp.Query,
		Items:      items,
		Count:      len(items),
		Page:       resp.Page,
		PerPage:    req.PerPage,
		TotalHits:  resp.NbHits,
		TotalPages: resp.NbPages,
		HasMore:    resp.NbPages > resp.Page+1,
		Selection:  selection,
	})
}

// HandleVersions lists the configured documentation groups so clients can
// render version selectors without hardcoding the catalog.
func (s *Server) HandleVersions(w http.ResponseWriter, r *http.Request) {
	cfg := s.config()
	selectable := facets.Selectable(cfg.Groups)
	if selectable == nil {
		selectable = []facets.Group{}
	}
	groups := cfg.Groups
	if groups == nil {
		groups = []facets.Group{}
	}

	s.writeJSON(w, http.StatusOK, VersionsResponse{
		Groups:     groups,
		Selectable: selectable,
		Defaults:   facets.DefaultSelection(cfg.Groups),
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
