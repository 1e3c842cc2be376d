package localsearch

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	htmlformat "github.com/blevesearch/bleve/v2/search/highlight/format/html"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/docpane/docpane/pkg/docsearch"
)

const defaultPerPage = 10

// Search implements docsearch.Backend. Tag refinements are disjunctive
// within the tag facet and conjunctive with the text match, mirroring the
// hosted service. An explicit filter expression is interpreted as a bleve
// query string and replaces the tag refinements.
func (ix *Index) Search(ctx context.Context, req docsearch.Request) (*docsearch.Response, error) {
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	resp := &docsearch.Response{
		Query: req.Query,
		Hits:  []docsearch.Hit{},
		Page:  req.Page,
	}
	if req.Query == "" {
		return resp, nil
	}

	match := bleve.NewMatchQuery(req.Query)

	var q query.Query = match
	switch {
	case req.Filter != "":
		filter := bleve.NewQueryStringQuery(req.Filter)
		q = bleve.NewConjunctionQuery(match, filter)
	case len(req.Tags) > 0:
		dis := bleve.NewDisjunctionQuery()
		for _, tag := range req.Tags {
			tq := bleve.NewTermQuery(tag)
			tq.SetField("tags")
			dis.AddQuery(tq)
		}
		q = bleve.NewConjunctionQuery(match, dis)
	}

	sr := bleve.NewSearchRequestOptions(q, perPage, req.Page*perPage, false)
	sr.Fields = []string{"*"}
	sr.Highlight = bleve.NewHighlightWithStyle(htmlformat.Name)

	res, err := ix.idx.SearchInContext(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("searching local index: %w", err)
	}

	for _, hit := range res.Hits {
		resp.Hits = append(resp.Hits, toHit(hit))
	}
	resp.NbHits = int(res.Total)
	resp.NbPages = (resp.NbHits + perPage - 1) / perPage

	ix.logger.Debugf("query %q page=%d hits=%d/%d", req.Query, req.Page, len(resp.Hits), resp.NbHits)
	return resp, nil
}

// toHit converts a bleve match into the wire hit shape, preferring
// highlighted fragments over the stored field values. The content fragment
// doubles as the snippet.
func toHit(hit *search.DocumentMatch) docsearch.Hit {
	return docsearch.Hit{
		URL:     storedString(hit, "url"),
		Content: fragmentString(hit, "content"),
		Hierarchy: docsearch.Hierarchy{
			Lvl0: fieldString(hit, "lvl0"),
			Lvl1: fieldString(hit, "lvl1"),
			Lvl2: fieldString(hit, "lvl2"),
			Lvl3: fieldString(hit, "lvl3"),
			Lvl4: fieldString(hit, "lvl4"),
			Lvl5: fieldString(hit, "lvl5"),
			Lvl6: fieldString(hit, "lvl6"),
		},
	}
}

// fragmentString returns the highlighted fragment only: a snippet exists
// when the field actually matched, never as a dump of the stored value.
func fragmentString(hit *search.DocumentMatch, name string) string {
	if frags, ok := hit.Fragments[name]; ok && len(frags) > 0 {
		return frags[0]
	}
	return ""
}

func fieldString(hit *search.DocumentMatch, name string) string {
	if frags, ok := hit.Fragments[name]; ok && len(frags) > 0 {
		return frags[0]
	}
	return storedString(hit, name)
}

func storedString(hit *search.DocumentMatch, name string) string {
	if v, ok := hit.Fields[name].(string); ok {
		return v
	}
	return ""
}
