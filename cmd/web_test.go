package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docpane/docpane/pkg/api"
	"github.com/docpane/docpane/pkg/config"
	"github.com/docpane/docpane/pkg/docsearch"
	"github.com/docpane/docpane/pkg/facets"
	"github.com/docpane/docpane/pkg/render"
)

type stubBackend struct {
	fail bool
}

func (b *stubBackend) Search(ctx context.Context, req docsearch.Request) (*docsearch.Response, error) {
	if b.fail {
		return nil, errors.New("backend unreachable")
	}
	return &docsearch.Response{
		Query: req.Query,
		Hits: []docsearch.Hit{
			{
				URL:     "https://docs.example.com/docs/timeouts#global",
				Content: "The global <mark>timeout</mark> bounds every request.",
				Hierarchy: docsearch.Hierarchy{
					Lvl0: "Documentation",
					Lvl1: "Timeouts",
				},
			},
		},
		Page:    req.Page,
		NbHits:  11,
		NbPages: 2,
	}, nil
}

func newTestWebServer(t *testing.T, backend docsearch.Backend) *WebServer {
	t.Helper()

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
	}

	page, err := render.NewPage()
	require.NoError(t, err)

	return &WebServer{
		backend:   backend,
		apiServer: api.NewServer(backend, cfg),
		page:      page,
		cfg:       cfg,
	}
}

func getPage(t *testing.T, handler http.HandlerFunc, target string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func TestHandleSearchRendersFirstPage(t *testing.T) {
	server := newTestWebServer(t, &stubBackend{})

	resp, body := getPage(t, server.handleSearch, "/search?q=timeout")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Contains(t, body, `<meta name="robots" content="noindex">`)
	require.Contains(t, body, "Search results for &#34;timeout&#34;")
	require.Contains(t, body, `<span class="dp-highlight">timeout</span>`)
	require.Contains(t, body, `href="/docs/timeouts#global"`)
	require.Contains(t, body, "11 results")
	// Page 0 of 2 leaves more to fetch, so the sentinel renders.
	require.Contains(t, body, `id="dp-sentinel"`)
	// Version selector for the two-version group.
	require.Contains(t, body, `data-group="default"`)
}

func TestHandleSearchWithoutQuery(t *testing.T) {
	server := newTestWebServer(t, &stubBackend{})

	resp, body := getPage(t, server.handleSearch, "/search")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<title>Search the documentation</title>")
	require.NotContains(t, body, "dp-sentinel")
}

func TestHandleSearchBackendFailure(t *testing.T) {
	server := newTestWebServer(t, &stubBackend{fail: true})

	resp, body := getPage(t, server.handleSearch, "/search?q=timeout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// Failures render like no search happened: no results, no sentinel.
	require.NotContains(t, body, "dp-item")
	require.NotContains(t, body, "dp-sentinel")
}

func TestHandleHomeRedirectsToSearch(t *testing.T) {
	server := newTestWebServer(t, &stubBackend{})

	resp, _ := getPage(t, server.handleHome, "/?q=timeout")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/search?q=timeout", resp.Header.Get("Location"))

	resp, _ = getPage(t, server.handleHome, "/")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/search", resp.Header.Get("Location"))

	resp, _ = getPage(t, server.handleHome, "/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleHomeEscapesQuery(t *testing.T) {
	server := newTestWebServer(t, &stubBackend{})

	// Reserved characters must survive the redirect intact.
	resp, _ := getPage(t, server.handleHome, "/?q="+url.QueryEscape("rate & burst #2"))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/search", loc.Path)
	require.Equal(t, "rate & burst #2", loc.Query().Get("q"))
}

func TestHandleStatic(t *testing.T) {
	server := newTestWebServer(t, &stubBackend{})

	resp, body := getPage(t, server.handleStatic, "/static/style.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/css", resp.Header.Get("Content-Type"))
	require.Contains(t, body, ".dp-highlight")

	resp, _ = getPage(t, server.handleStatic, "/static/app.js")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/javascript", resp.Header.Get("Content-Type"))

	resp, _ = getPage(t, server.handleStatic, "/static/missing.txt")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetConfigPropagatesToAPIServer(t *testing.T) {
	server := newTestWebServer(t, &stubBackend{})

	mux := http.NewServeMux()
	server.apiServer.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	newCfg := config.GetDefaultConfig()
	newCfg.Groups = []facets.Group{
		{Name: "renamed", Versions: []facets.Version{{Name: "1.0", Label: "1.0"}}},
	}
	server.setConfig(newCfg)

	require.Same(t, newCfg, server.getConfig())

	resp, err := http.Get(ts.URL + "/api/versions")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "renamed")
}
