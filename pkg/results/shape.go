package results

import (
	"net/url"
	"strings"

	"github.com/docpane/docpane/pkg/docsearch"
)

// Highlight markers. The backend is trusted to emit only <mark> tags around
// matched terms; they are rewritten into a presentation-neutral span before
// the strings are used as HTML.
const (
	markOpen  = "<mark>"
	markClose = "</mark>"
	spanOpen  = `<span class="dp-highlight">`
	spanClose = "</span>"
)

// ellipsis is appended to content snippets, which the backend truncates
// mid-sentence.
const ellipsis = " ..."

// ShapeHits converts raw backend hits into display items, preserving order.
func ShapeHits(hits []docsearch.Hit) []Item {
	items := make([]Item, 0, len(hits))
	for _, h := range hits {
		items = append(items, ShapeHit(h))
	}
	return items
}

// ShapeHit builds one display item from a raw hit:
//
//   - the deepest non-empty hierarchy level becomes the title
//   - all non-empty levels above it, in level order, become breadcrumbs
//   - the content snippet, when present, gets an ellipsis suffix
//   - the URL keeps only path and fragment; query strings are dropped
func ShapeHit(h docsearch.Hit) Item {
	item := Item{URL: splitURL(h.URL)}

	levels := h.Hierarchy.Levels()
	deepest := -1
	for i, lvl := range levels {
		if lvl != "" {
			deepest = i
		}
	}
	if deepest >= 0 {
		item.Title = rewriteMarks(levels[deepest])
		for _, lvl := range levels[:deepest] {
			if lvl != "" {
				item.Breadcrumbs = append(item.Breadcrumbs, rewriteMarks(lvl))
			}
		}
	}

	if h.Content != "" {
		item.Summary = rewriteMarks(h.Content) + ellipsis
	}

	return item
}

// rewriteMarks replaces the backend's match markers with the neutral
// highlight span.
func rewriteMarks(s string) string {
	s = strings.ReplaceAll(s, markOpen, spanOpen)
	return strings.ReplaceAll(s, markClose, spanClose)
}

// splitURL retains only the path and fragment of a hit URL. Unparseable
// URLs pass through untouched rather than losing the hit.
func splitURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	out := u.EscapedPath()
	if u.Fragment != "" {
		out += "#" + u.EscapedFragment()
	}
	return out
}
