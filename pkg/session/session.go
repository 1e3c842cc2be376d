// Package session drives one interactive search session: it owns the live
// query, the version selection and the result state machine, and it
// schedules the side effects the state machine itself stays free of.
//
// The split follows an event-sourcing shape: pkg/results applies pure
// transitions, while the session watches the pagination intent (LastPage)
// and performs the actual backend fetches. Responses re-enter the loop as
// events and pass the stale-query guard before they can touch state.
//
// Concurrency model: a single goroutine (Run) consumes all events. Inputs
// arrive from HTTP/websocket handlers, timers and fetch goroutines; none of
// them touch session state directly. In-flight requests are never
// cancelled; superseded replies are ignored on arrival. Debounce timers are
// fire-and-forget for the same reason.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docpane/docpane/pkg/docsearch"
	"github.com/docpane/docpane/pkg/facets"
	"github.com/docpane/docpane/pkg/log"
	"github.com/docpane/docpane/pkg/results"
	"github.com/docpane/docpane/pkg/scroll"
)

// DefaultDebounce is the delay between a query change and the search call.
const DefaultDebounce = 300 * time.Millisecond

// Snapshot is the session state pushed to listeners after every change.
type Snapshot struct {
	State     results.State    `json:"state"`
	Phase     string           `json:"phase"`
	Selection facets.Selection `json:"selection"`
}

// Options configures a session.
type Options struct {
	Backend docsearch.Backend
	Groups  []facets.Group
	Locale  string
	// Filter is the explicit backend filter expression. When non-empty,
	// automatic facet tags are skipped entirely.
	Filter   string
	Params   map[string]string
	PerPage  int
	Debounce time.Duration
	// Schedule runs fn after d. Defaults to time.AfterFunc; tests inject
	// a manual scheduler.
	Schedule func(d time.Duration, fn func())
}

type event interface{}

type queryEvent struct{ query string }

type sentinelEvent struct {
	top     float64
	visible bool
}

type versionEvent struct{ group, version string }

type fetchDueEvent struct{ query string }

type responseEvent struct {
	query string
	resp  *docsearch.Response
	err   error
}

type snapshotRequest struct{ reply chan Snapshot }

// Session is one interactive search session. Create with New, drive with
// Run, feed through SetQuery/ObserveSentinel/SelectVersion, observe through
// Subscribe.
type Session struct {
	id   string
	opts Options

	events chan event
	done   chan struct{}

	// Owned by the Run goroutine.
	state       results.State
	selection   facets.Selection
	observer    scroll.Observer
	fetchedPage int
	runCtx      context.Context

	mu           sync.Mutex
	listeners    map[uint64]chan Snapshot
	nextListener uint64

	logger *log.Logger
}

// New creates a session. Options.Backend is required.
func New(opts Options) *Session {
	if opts.PerPage <= 0 {
		opts.PerPage = 10
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Schedule == nil {
		opts.Schedule = func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		}
	}
	return &Session{
		id:          uuid.NewString(),
		opts:        opts,
		events:      make(chan event, 64),
		done:        make(chan struct{}),
		selection:   facets.DefaultSelection(opts.Groups),
		fetchedPage: -1,
		listeners:   make(map[uint64]chan Snapshot),
		logger:      log.ForService("session"),
	}
}

// ID returns the session identifier used in log lines.
func (s *Session) ID() string {
	return s.id
}

// Run consumes events until ctx is cancelled. It must be called exactly
// once.
func (s *Session) Run(ctx context.Context) {
	s.runCtx = ctx
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

// SetQuery submits a new live query. Empty string means "no search".
func (s *Session) SetQuery(query string) {
	s.enqueue(queryEvent{query: query})
}

// ObserveSentinel reports one sentinel visibility observation from the
// results page.
func (s *Session) ObserveSentinel(top float64, visible bool) {
	s.enqueue(sentinelEvent{top: top, visible: visible})
}

// SelectVersion switches the selected version of a documentation group and
// re-runs the current query from page 0.
func (s *Session) SelectVersion(group, version string) {
	s.enqueue(versionEvent{group: group, version: version})
}

// Subscribe registers a snapshot listener. Slow listeners drop snapshots
// rather than blocking the session loop. Callers must Unsubscribe.
func (s *Session) Subscribe() (uint64, <-chan Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	ch := make(chan Snapshot, 8)
	s.listeners[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel. Unknown ids are
// ignored.
func (s *Session) Unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.listeners[id]; ok {
		delete(s.listeners, id)
		close(ch)
	}
}

func (s *Session) enqueue(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) handle(ev event) {
	switch e := ev.(type) {
	case queryEvent:
		s.handleQuery(e.query)
	case sentinelEvent:
		s.handleSentinel(e.top, e.visible)
	case versionEvent:
		s.handleVersion(e.group, e.version)
	case fetchDueEvent:
		s.handleFetchDue(e.query)
	case responseEvent:
		s.handleResponse(e)
	case snapshotRequest:
		e.reply <- s.snapshot()
	}
}

// CurrentSnapshot returns the session state as seen by the event loop. It
// round-trips through the loop, so it observes all previously enqueued
// events from the same caller. Returns the zero snapshot after Run exits.
func (s *Session) CurrentSnapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case s.events <- snapshotRequest{reply: reply}:
	case <-s.done:
		return Snapshot{Phase: results.PhaseIdle.String(), Selection: facets.Selection{}}
	}
	select {
	case snap := <-reply:
		return snap
	case <-s.done:
		return Snapshot{Phase: results.PhaseIdle.String(), Selection: facets.Selection{}}
	}
}

func (s *Session) handleQuery(query string) {
	if query == s.state.Query {
		return
	}

	if query == "" {
		s.state = s.state.Reset()
		s.fetchedPage = -1
		s.observer.Reset()
		s.broadcast()
		return
	}

	s.state = s.state.Reset().StartLoading(query)
	s.fetchedPage = -1
	s.observer.Reset()
	s.broadcast()

	// Fire-and-forget debounce: a superseded timer still fires, but its
	// query no longer matches and handleFetchDue ignores it.
	q := query
	s.opts.Schedule(s.opts.Debounce, func() {
		s.enqueue(fetchDueEvent{query: q})
	})
}

func (s *Session) handleFetchDue(query string) {
	if query != s.state.Query {
		s.logger.Debugf("session %s: debounce for %q superseded", s.id, query)
		return
	}
	s.fetch(query, 0)
}

func (s *Session) handleSentinel(top float64, visible bool) {
	if !s.observer.Observe(top, visible) {
		return
	}
	// One outstanding page fetch at a time: the edge is ignored while the
	// previously advanced page has not landed yet.
	if s.state.LastPage != s.fetchedPage {
		return
	}
	next, ok := s.state.Advance()
	if !ok {
		return
	}
	s.state = next
	// The next page is now in flight; the loading flag lets clients show a
	// fetching-more affordance under the existing items.
	s.state.Loading = true
	s.broadcast()
	s.maybeFetchAdvanced()
}

// maybeFetchAdvanced is the effect watcher: it reacts to LastPage moving
// past the fetched-page watermark and performs the fetch the reducer only
// recorded the intent for.
func (s *Session) maybeFetchAdvanced() {
	if s.state.Query == "" || s.state.LastPage <= s.fetchedPage {
		return
	}
	s.fetch(s.state.Query, s.state.LastPage)
}

func (s *Session) handleVersion(group, version string) {
	if err := s.selection.Select(s.opts.Groups, group, version); err != nil {
		s.logger.Warnf("session %s: rejecting version selection: %v", s.id, err)
		return
	}
	s.logger.Debugf("session %s: group %s now at version %s", s.id, group, version)

	query := s.state.Query
	if query == "" {
		s.broadcast()
		return
	}

	// Accumulated items belong to the old facet set; start over at page 0
	// without debouncing, this is a deliberate click rather than typing.
	s.state = s.state.Reset().StartLoading(query)
	s.fetchedPage = -1
	s.observer.Reset()
	s.broadcast()
	s.fetch(query, 0)
}

func (s *Session) handleResponse(ev responseEvent) {
	if ev.query != s.state.Query {
		s.logger.Debugf("session %s: dropping stale response for %q", s.id, ev.query)
		return
	}

	if ev.err != nil {
		// Backend failures are not distinguished from an empty query at
		// this layer; the state resets wholesale.
		s.logger.Warnf("session %s: search failed, resetting: %v", s.id, ev.err)
		s.state = s.state.Reset()
		s.fetchedPage = -1
		s.broadcast()
		return
	}

	next, ok := s.state.Apply(ev.resp)
	if !ok {
		return
	}
	s.state = next
	s.fetchedPage = ev.resp.Page
	s.broadcast()
}

func (s *Session) fetch(query string, page int) {
	req := docsearch.Request{
		Query:   query,
		Page:    page,
		PerPage: s.opts.PerPage,
		Params:  s.opts.Params,
	}
	if s.opts.Filter != "" {
		req.Filter = s.opts.Filter
	} else {
		req.Tags = facets.Tags(s.opts.Groups, s.selection, s.opts.Locale)
	}

	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		resp, err := s.opts.Backend.Search(ctx, req)
		s.enqueue(responseEvent{query: query, resp: resp, err: err})
	}()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		State:     s.state,
		Phase:     s.state.Phase().String(),
		Selection: s.selection,
	}
}

func (s *Session) broadcast() {
	snap := s.snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- snap:
		default:
			// Drop for slow listener.
		}
	}
}
