// Package render produces the two result presentations: the HTML search
// page served by the web command and the styled terminal output used by the
// one-shot search command.
package render

import (
	"html/template"
	"io"

	"github.com/docpane/docpane/pkg/facets"
	"github.com/docpane/docpane/pkg/results"
)

// pageTemplate is the full search page. Result titles, summaries and
// breadcrumbs carry trusted HTML from shaping (highlight spans only), so
// they render through safeHTML; everything else is escaped.
//
// Search result pages are transient views over content that lives
// elsewhere, so the page always carries a noindex robots directive.
var pageTemplate = `<!DOCTYPE html>
<html lang="{{.Locale}}">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="robots" content="noindex">
  <title>{{pageTitle .Query}}</title>
  <link rel="stylesheet" href="/static/style.css">
</head>
<body data-phase="{{.Phase}}">
  <header class="dp-header">
    <form class="dp-searchbox" action="/search" method="get" role="search">
      <input type="search" name="q" id="dp-query" value="{{.Query}}"
             placeholder="Search the documentation" autocomplete="off" autofocus>
    </form>

    {{if .Selectable}}
    <div class="dp-versions">
      {{range .Selectable}}
      <label class="dp-version-group">
        <span>{{groupLabel .}}</span>
        <select data-group="{{.Name}}">
          {{$selected := index $.Selection .Name}}
          {{range .Versions}}
          <option value="{{.Name}}"{{if eq .Name $selected}} selected{{end}}>{{.Label}}</option>
          {{end}}
        </select>
      </label>
      {{end}}
    </div>
    {{end}}
  </header>

  <main class="dp-results" id="dp-results">
    <h1 class="dp-title">{{pageTitle .Query}}</h1>

    {{if eq .Phase "loading"}}
    <p class="dp-loading">Searching&hellip;</p>
    {{end}}

    {{if eq .Phase "no-results"}}
    <p class="dp-empty">No results for &ldquo;{{.Query}}&rdquo;.</p>
    {{end}}

    {{if .Items}}
    <p class="dp-count">{{.TotalHits}} result{{if ne .TotalHits 1}}s{{end}}</p>
    <ol class="dp-items">
      {{range .Items}}
      <li class="dp-item">
        <a class="dp-item-title" href="{{.URL}}">{{safeHTML .Title}}</a>
        {{if .Breadcrumbs}}
        <nav class="dp-item-crumbs">
          {{range $i, $c := .Breadcrumbs}}{{if $i}}<span class="dp-sep">&rsaquo;</span>{{end}}<span>{{safeHTML $c}}</span>{{end}}
        </nav>
        {{end}}
        {{if .Summary}}<p class="dp-item-summary">{{safeHTML .Summary}}</p>{{end}}
      </li>
      {{end}}
    </ol>
    {{end}}

    {{if .HasMore}}
    <p class="dp-fetching" hidden>Loading more results&hellip;</p>
    <div id="dp-sentinel" aria-hidden="true"></div>
    {{end}}
  </main>

  <script src="/static/app.js" defer></script>
</body>
</html>
`

// PageData carries everything the search page template needs.
type PageData struct {
	Query      string
	Locale     string
	Phase      string
	Items      []results.Item
	TotalHits  int
	HasMore    bool
	Selectable []facets.Group
	Selection  facets.Selection
}

// Page renders the search results page.
type Page struct {
	tmpl *template.Template
}

func NewPage() (*Page, error) {
	t, err := template.New("search_page").Funcs(pageFuncs()).Parse(pageTemplate)
	if err != nil {
		return nil, err
	}
	return &Page{tmpl: t}, nil
}

func (p *Page) Render(w io.Writer, data PageData) error {
	if data.Locale == "" {
		data.Locale = "en"
	}
	if data.Phase == "" {
		data.Phase = results.Phase(0).String()
	}
	return p.tmpl.Execute(w, data)
}

func pageFuncs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
		"pageTitle": func(query string) string {
			if query == "" {
				return "Search the documentation"
			}
			return `Search results for "` + query + `"`
		},
		"groupLabel": func(g facets.Group) string {
			if g.Label != "" {
				return g.Label
			}
			return g.Name
		},
	}
}
