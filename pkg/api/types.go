package api

import (
	"time"

	"github.com/docpane/docpane/pkg/facets"
	"github.com/docpane/docpane/pkg/results"
)

type SearchResponse struct {
	Query      string           `json:"query"`
	Items      []results.Item   `json:"items"`
	Count      int              `json:"count"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalHits  int              `json:"total_hits"`
	TotalPages int              `json:"total_pages"`
	HasMore    bool             `json:"has_more"`
	Selection  facets.Selection `json:"selection,omitempty"`
}

type VersionsResponse struct {
	Groups     []facets.Group   `json:"groups"`
	Selectable []facets.Group   `json:"selectable"`
	Defaults   facets.Selection `json:"defaults"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
