package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docpane/docpane/pkg/facets"
	"github.com/docpane/docpane/pkg/results"
)

func testItems() []results.Item {
	return []results.Item{
		{
			Title:       `Global <span class="dp-highlight">timeout</span>`,
			URL:         "/docs/timeouts#global",
			Summary:     `bounds every proxied <span class="dp-highlight">request</span> ...`,
			Breadcrumbs: []string{"Documentation", "Configuration"},
		},
		{
			Title: "Plain result",
			URL:   "/docs/other",
		},
	}
}

func renderPage(t *testing.T, data PageData) string {
	t.Helper()
	page, err := NewPage()
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, page.Render(&buf, data))
	return buf.String()
}

func TestPageAlwaysNoindex(t *testing.T) {
	for _, data := range []PageData{
		{},
		{Query: "timeouts", Phase: "results", Items: testItems()},
	} {
		html := renderPage(t, data)
		require.Contains(t, html, `<meta name="robots" content="noindex">`)
	}
}

func TestPageTitleFollowsQuery(t *testing.T) {
	html := renderPage(t, PageData{})
	require.Contains(t, html, "<title>Search the documentation</title>")

	html = renderPage(t, PageData{Query: "timeouts", Phase: "loading"})
	require.Contains(t, html, "Search results for &#34;timeouts&#34;")
}

func TestPageRendersItems(t *testing.T) {
	html := renderPage(t, PageData{
		Query:     "timeout",
		Phase:     "results",
		Items:     testItems(),
		TotalHits: 12,
		HasMore:   true,
	})

	// Highlight spans pass through unescaped; they are the only trusted HTML.
	require.Contains(t, html, `Global <span class="dp-highlight">timeout</span>`)
	require.Contains(t, html, `href="/docs/timeouts#global"`)
	require.Contains(t, html, "Documentation")
	require.Contains(t, html, "12 results")

	// More pages exist, so the infinite-scroll sentinel is present.
	require.Contains(t, html, `id="dp-sentinel"`)
}

func TestPageOmitsSentinelWhenExhausted(t *testing.T) {
	html := renderPage(t, PageData{
		Query:     "timeout",
		Phase:     "exhausted",
		Items:     testItems(),
		TotalHits: 2,
	})
	require.NotContains(t, html, "dp-sentinel")
}

func TestPageNoResults(t *testing.T) {
	html := renderPage(t, PageData{Query: "zzzz", Phase: "no-results"})
	require.Contains(t, html, "No results for")
	require.NotContains(t, html, "dp-sentinel")
}

func TestPageVersionSelectors(t *testing.T) {
	groups := []facets.Group{
		{
			Name:  "default",
			Label: "Gateway",
			Versions: []facets.Version{
				{Name: "3.1", Label: "3.1"},
				{Name: "3.0", Label: "3.0"},
			},
		},
	}
	html := renderPage(t, PageData{
		Selectable: groups,
		Selection:  facets.Selection{"default": "3.0"},
	})

	require.Contains(t, html, `data-group="default"`)
	require.Contains(t, html, "Gateway")
	require.Contains(t, html, `<option value="3.0" selected>3.0</option>`)
	require.Contains(t, html, `<option value="3.1">3.1</option>`)
}

func TestPageEscapesQueryText(t *testing.T) {
	html := renderPage(t, PageData{Query: `<script>alert(1)</script>`, Phase: "loading"})
	require.NotContains(t, html, "<script>alert")
}

func TestFormatStateHighlightsAndCounts(t *testing.T) {
	state := results.State{
		Items:     testItems(),
		Query:     "timeout",
		TotalHits: 12,
		HasMore:   true,
	}
	out := FormatState(state)

	require.Contains(t, out, "timeout")
	require.NotContains(t, out, "<span")
	require.Contains(t, out, "/docs/timeouts#global")
	require.Contains(t, out, "Documentation › Configuration")
	require.Contains(t, out, "Showing 2 of 12 results.")
}

func TestFormatStateEmpty(t *testing.T) {
	out := FormatState(results.State{Query: "zzzz"})
	require.Contains(t, out, "No results for")

	out = FormatState(results.State{})
	require.Contains(t, out, "No query given.")
}

func TestHighlightsStripsMarkup(t *testing.T) {
	in := `before <span class="dp-highlight">match</span> after`
	out := Highlights(in)
	require.NotContains(t, out, "span")
	require.Contains(t, out, "before")
	require.Contains(t, out, "match")
	require.Contains(t, out, "after")
}
