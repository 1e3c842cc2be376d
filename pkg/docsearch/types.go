package docsearch

import "context"

// Request describes a single search call against a documentation collection.
// Page indexes are 0-based: page 0 is always the first page of a fresh query.
type Request struct {
	// Query is the free-text query. May be empty; backends return an empty
	// result set for it.
	Query string `json:"q"`

	// Page is the 0-based page index to fetch.
	Page int `json:"page"`

	// PerPage is the number of hits per page. Backends apply their own
	// default when zero.
	PerPage int `json:"per_page,omitempty"`

	// Tags are disjunctive facet refinements: a hit matches when it carries
	// at least one of these tags. Built by pkg/facets from the version
	// selection, the default tag and the active locale.
	Tags []string `json:"tags,omitempty"`

	// Filter is an explicit backend filter expression. When set it replaces
	// the automatic tag refinements entirely.
	Filter string `json:"filter,omitempty"`

	// Params carries arbitrary additional backend parameters from the host
	// configuration, passed through untouched.
	Params map[string]string `json:"params,omitempty"`
}

// Hierarchy holds the highlighted heading levels of a hit, page title down
// to the deepest subheading. Values may contain the backend's <mark>
// highlight markers and nothing else beyond plain text.
type Hierarchy struct {
	Lvl0 string `json:"lvl0"`
	Lvl1 string `json:"lvl1"`
	Lvl2 string `json:"lvl2"`
	Lvl3 string `json:"lvl3"`
	Lvl4 string `json:"lvl4"`
	Lvl5 string `json:"lvl5"`
	Lvl6 string `json:"lvl6"`
}

// Levels returns the hierarchy levels in order, shallowest first.
func (h Hierarchy) Levels() []string {
	return []string{h.Lvl0, h.Lvl1, h.Lvl2, h.Lvl3, h.Lvl4, h.Lvl5, h.Lvl6}
}

// Hit is a single raw result as returned by the backend.
type Hit struct {
	URL       string    `json:"url"`
	Content   string    `json:"content,omitempty"`
	Hierarchy Hierarchy `json:"hierarchy"`
}

// Response is the backend reply for one page of one query. Query echoes the
// request query verbatim; the session layer relies on that echo to drop
// stale replies.
type Response struct {
	Query   string `json:"query"`
	Hits    []Hit  `json:"hits"`
	Page    int    `json:"page"`
	NbHits  int    `json:"nbHits"`
	NbPages int    `json:"nbPages"`
}

// Backend executes searches. The hosted HTTP client and the local bleve
// index both implement it.
type Backend interface {
	Search(ctx context.Context, req Request) (*Response, error)
}
