package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/docpane/docpane/pkg/results"
)

// Terminal styles for the one-shot search command.
var (
	termTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	termCrumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	termURLStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	termHighlightStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214"))

	termCountStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32"))

	termEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

const (
	highlightOpen  = `<span class="dp-highlight">`
	highlightClose = `</span>`
	crumbSeparator = " › "
)

// FormatState renders accumulated search results for the terminal.
func FormatState(state results.State) string {
	var out strings.Builder

	if len(state.Items) == 0 {
		if state.Query == "" {
			out.WriteString(termEmptyStyle.Render("No query given."))
		} else {
			out.WriteString(termEmptyStyle.Render(fmt.Sprintf("No results for %q.", state.Query)))
		}
		out.WriteString("\n")
		return out.String()
	}

	count := fmt.Sprintf("%d results for %q", state.TotalHits, state.Query)
	if state.TotalHits == 1 {
		count = fmt.Sprintf("1 result for %q", state.Query)
	}
	out.WriteString(termCountStyle.Render(count))
	out.WriteString("\n\n")

	for i, item := range state.Items {
		out.WriteString(formatItem(item, i+1))
		out.WriteString("\n")
	}

	if state.HasMore {
		shown := len(state.Items)
		out.WriteString(termEmptyStyle.Render(
			fmt.Sprintf("Showing %d of %d results.", shown, state.TotalHits)))
		out.WriteString("\n")
	}

	return out.String()
}

// formatItem renders one result: numbered title, breadcrumb trail, snippet
// and URL.
func formatItem(item results.Item, index int) string {
	var content strings.Builder

	title := fmt.Sprintf("#%d %s", index, Highlights(item.Title))
	content.WriteString(termTitleStyle.Render(title))
	content.WriteString("\n")

	if len(item.Breadcrumbs) > 0 {
		crumbs := make([]string, len(item.Breadcrumbs))
		for i, c := range item.Breadcrumbs {
			crumbs[i] = Highlights(c)
		}
		content.WriteString(termCrumbStyle.Render(strings.Join(crumbs, crumbSeparator)))
		content.WriteString("\n")
	}

	if item.Summary != "" {
		content.WriteString(Highlights(item.Summary))
		content.WriteString("\n")
	}

	content.WriteString(termURLStyle.Render(item.URL))
	content.WriteString("\n")

	return content.String()
}

// Highlights rewrites the highlight spans shaping produced into terminal
// emphasis and strips any other markup remnants.
func Highlights(s string) string {
	var out strings.Builder
	for {
		start := strings.Index(s, highlightOpen)
		if start < 0 {
			break
		}
		rest := s[start+len(highlightOpen):]
		end := strings.Index(rest, highlightClose)
		if end < 0 {
			break
		}
		out.WriteString(s[:start])
		out.WriteString(termHighlightStyle.Render(rest[:end]))
		s = rest[end+len(highlightClose):]
	}
	out.WriteString(s)
	return out.String()
}
