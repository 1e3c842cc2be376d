package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docpane/docpane/pkg/config"
	"github.com/docpane/docpane/pkg/docsearch"
	"github.com/docpane/docpane/pkg/facets"
)

// fakeBackend serves canned pages and records every request it sees.
type fakeBackend struct {
	mu       sync.Mutex
	requests []docsearch.Request
	fail     bool
}

func (f *fakeBackend) Search(ctx context.Context, req docsearch.Request) (*docsearch.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.fail {
		return nil, context.DeadlineExceeded
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 10
	}

	resp := &docsearch.Response{
		Query:   req.Query,
		Hits:    []docsearch.Hit{},
		Page:    req.Page,
		NbHits:  perPage*2 + 1,
		NbPages: 3,
	}
	count := perPage
	if req.Page == 2 {
		count = 1
	}
	for i := 0; i < count; i++ {
		resp.Hits = append(resp.Hits, docsearch.Hit{
			URL:     "https://docs.example.com/docs/page#section",
			Content: "matched <mark>term</mark> in context",
			Hierarchy: docsearch.Hierarchy{
				Lvl0: "Documentation",
				Lvl1: "Section <mark>term</mark>",
			},
		})
	}
	return resp, nil
}

func (f *fakeBackend) lastRequest(t *testing.T) docsearch.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func testConfig() *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Search.Debounce = config.Duration{Duration: 5 * time.Millisecond}
	cfg.Groups = []facets.Group{
		{
			Name: "default",
			Versions: []facets.Version{
				{Name: "3.1", Label: "3.1"},
				{Name: "3.0", Label: "3.0"},
			},
		},
		{
			Name:     "plugins",
			Versions: []facets.Version{{Name: "current", Label: "Current"}},
		},
	}
	return cfg
}

func setupTestServer(t *testing.T) (*httptest.Server, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	server := NewServer(backend, testConfig())

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	ts := httptest.NewServer(CorsMiddleware(mux))
	t.Cleanup(ts.Close)
	return ts, backend
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHandleSearch(t *testing.T) {
	ts, backend := setupTestServer(t)

	var got SearchResponse
	status := getJSON(t, ts.URL+"/api/search?q=timeouts", &got)
	require.Equal(t, http.StatusOK, status)

	require.Equal(t, "timeouts", got.Query)
	require.Equal(t, 0, got.Page)
	require.Equal(t, 21, got.TotalHits)
	require.Equal(t, 3, got.TotalPages)
	require.True(t, got.HasMore)
	require.Len(t, got.Items, 10)
	require.Equal(t, got.Count, len(got.Items))

	// Hits are shaped, not passed through: highlight markers rewritten,
	// deepest heading promoted to title, URL reduced to path and fragment.
	item := got.Items[0]
	require.Equal(t, `Section <span class="dp-highlight">term</span>`, item.Title)
	require.Equal(t, "/docs/page#section", item.URL)
	require.Contains(t, item.Summary, `<span class="dp-highlight">term</span>`)
	require.Equal(t, []string{"Documentation"}, item.Breadcrumbs)

	req := backend.lastRequest(t)
	require.Equal(t, []string{"default", "language-en", "docs-default-3.1", "docs-plugins-current"}, req.Tags)
	require.Empty(t, req.Filter)
}

func TestHandleSearchLastPage(t *testing.T) {
	ts, _ := setupTestServer(t)

	var got SearchResponse
	status := getJSON(t, ts.URL+"/api/search?q=timeouts&page=2", &got)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, got.Page)
	require.False(t, got.HasMore)
	require.Len(t, got.Items, 1)
}

func TestHandleSearchMissingQuery(t *testing.T) {
	ts, _ := setupTestServer(t)

	var got ErrorResponse
	status := getJSON(t, ts.URL+"/api/search", &got)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Missing query parameter", got.Error)
}

func TestHandleSearchInvalidPage(t *testing.T) {
	ts, _ := setupTestServer(t)

	for _, page := range []string{"-1", "one"} {
		var got ErrorResponse
		status := getJSON(t, ts.URL+"/api/search?q=x&page="+page, &got)
		require.Equal(t, http.StatusBadRequest, status, "page=%s", page)
	}
}

func TestHandleSearchVersionOverride(t *testing.T) {
	ts, backend := setupTestServer(t)

	var got SearchResponse
	status := getJSON(t, ts.URL+"/api/search?q=timeouts&version=default:3.0", &got)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "3.0", got.Selection["default"])

	req := backend.lastRequest(t)
	require.Contains(t, req.Tags, "docs-default-3.0")
	require.NotContains(t, req.Tags, "docs-default-3.1")
}

func TestHandleSearchRejectsUnknownVersion(t *testing.T) {
	ts, _ := setupTestServer(t)

	var got ErrorResponse
	status := getJSON(t, ts.URL+"/api/search?q=x&version=default:9.9", &got)
	require.Equal(t, http.StatusBadRequest, status)

	status = getJSON(t, ts.URL+"/api/search?q=x&version=nonsense", &got)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestHandleSearchExplicitFilterSkipsTags(t *testing.T) {
	backend := &fakeBackend{}
	cfg := testConfig()
	cfg.Search.Filter = `tags:"internal"`
	server := NewServer(backend, cfg)

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	var got SearchResponse
	status := getJSON(t, ts.URL+"/api/search?q=timeouts", &got)
	require.Equal(t, http.StatusOK, status)

	req := backend.lastRequest(t)
	require.Equal(t, `tags:"internal"`, req.Filter)
	require.Empty(t, req.Tags)
}

func TestHandleSearchBackendError(t *testing.T) {
	backend := &fakeBackend{fail: true}
	server := NewServer(backend, testConfig())

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	var got ErrorResponse
	status := getJSON(t, ts.URL+"/api/search?q=timeouts", &got)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "Search failed", got.Error)
}

func TestHandleVersions(t *testing.T) {
	ts, _ := setupTestServer(t)

	var got VersionsResponse
	status := getJSON(t, ts.URL+"/api/versions", &got)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, got.Groups, 2)
	// Only groups with a real choice show up as selectable.
	require.Len(t, got.Selectable, 1)
	require.Equal(t, "default", got.Selectable[0].Name)
	require.Equal(t, "3.1", got.Defaults["default"])
	require.Equal(t, "current", got.Defaults["plugins"])
}

func TestHandleHealth(t *testing.T) {
	ts, _ := setupTestServer(t)

	var got HealthResponse
	status := getJSON(t, ts.URL+"/health", &got)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", got.Status)
	require.NotEmpty(t, got.Version)
}

func TestCorsMiddleware(t *testing.T) {
	ts, _ := setupTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/search", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
