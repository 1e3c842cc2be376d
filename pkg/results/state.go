// Package results implements the search-result state machine: the single
// mutable object that owns query lifecycle, response reconciliation and
// incremental pagination for a search session.
//
// Transitions are pure value-to-value functions with no I/O. The session
// layer (pkg/session) owns the side effects: it watches LastPage advances
// and performs the actual page fetches, feeding responses back through
// Apply.
package results

import (
	"github.com/docpane/docpane/pkg/docsearch"
)

// Item is one displayable search result. Title, Summary and Breadcrumbs are
// trusted HTML: the backend emits <mark> markers and plain text only, and
// shaping rewrites the markers into neutral highlight spans. No broader
// sanitization happens here.
type Item struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Summary     string   `json:"summary,omitempty"`
	Breadcrumbs []string `json:"breadcrumbs,omitempty"`
}

// Phase is the coarse lifecycle state derived from State.
type Phase int

const (
	// PhaseIdle means no query is active.
	PhaseIdle Phase = iota
	// PhaseLoading means a query was submitted and no results arrived yet.
	PhaseLoading
	// PhaseResults means one or more pages are merged and more pages exist.
	PhaseResults
	// PhaseExhausted means all pages of the current query are merged.
	PhaseExhausted
	// PhaseNoResults means the query executed and produced zero hits.
	PhaseNoResults
)

// String returns the snake-free lowercase name used on the wire.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseResults:
		return "results"
	case PhaseExhausted:
		return "exhausted"
	case PhaseNoResults:
		return "no-results"
	}
	return "unknown"
}

// State holds the accumulated results of one query. The zero value is the
// idle state. Items are append-only across pages of the same query and are
// replaced wholesale when a page-0 response arrives (fresh query).
type State struct {
	Items      []Item `json:"items"`
	Query      string `json:"query"`
	TotalHits  int    `json:"total_hits"`
	TotalPages int    `json:"total_pages"`
	LastPage   int    `json:"last_page"`
	HasMore    bool   `json:"has_more"`
	Loading    bool   `json:"loading"`
}

// Phase derives the lifecycle phase. A non-empty query with no items is
// "loading" until the first response lands, because StartLoading runs
// before any network round trip.
func (s State) Phase() Phase {
	switch {
	case s.Query == "":
		return PhaseIdle
	case len(s.Items) == 0 && s.Loading:
		return PhaseLoading
	case len(s.Items) == 0:
		return PhaseNoResults
	case s.HasMore:
		return PhaseResults
	default:
		return PhaseExhausted
	}
}

// Reset clears back to the initial state. Triggered whenever the active
// query changes or empties, and when a backend failure must be treated like
// an empty query.
func (s State) Reset() State {
	return State{}
}

// StartLoading records the new live query and raises the loading flag
// without touching accumulated items. Always runs before the debounced
// fetch is scheduled.
func (s State) StartLoading(query string) State {
	s.Query = query
	s.Loading = true
	return s
}

// Apply merges one backend response. The stale-response guard drops any
// response whose echoed query differs from the live query: a fast-typing
// user must never see results for a superseded query. Page 0 replaces the
// item list (fresh query); later pages append (pagination continuation).
//
// The second return value reports whether the response was applied.
func (s State) Apply(resp *docsearch.Response) (State, bool) {
	if resp == nil || resp.Query != s.Query {
		return s, false
	}

	shaped := ShapeHits(resp.Hits)
	if resp.Page == 0 {
		s.Items = shaped
	} else {
		merged := make([]Item, 0, len(s.Items)+len(shaped))
		merged = append(merged, s.Items...)
		merged = append(merged, shaped...)
		s.Items = merged
	}

	s.TotalHits = resp.NbHits
	s.TotalPages = resp.NbPages
	s.LastPage = resp.Page
	s.HasMore = resp.NbPages > resp.Page+1
	s.Loading = false
	return s, true
}

// Advance moves the pagination intent forward by one page. The availability
// of a next page is re-derived from TotalPages and LastPage at call time
// rather than trusted from the triggering signal. The increment itself is
// the sole input that causes the session layer to fetch the next page.
func (s State) Advance() (State, bool) {
	if s.Query == "" || s.TotalPages <= s.LastPage+1 {
		return s, false
	}
	s.LastPage++
	s.HasMore = s.TotalPages > s.LastPage+1
	return s, true
}
