// Package facets builds the tag-based facet refinements for versioned
// documentation groups. Each group with published versions contributes a
// docs-<group>-<version> tag for its selected version; the set always
// includes the fixed "default" tag and a language tag for the active
// locale. An explicit filter expression in the host configuration disables
// automatic faceting entirely.
package facets

import "fmt"

// DefaultTag marks documents that belong to every search regardless of
// version selection.
const DefaultTag = "default"

// Version is one published version of a documentation group.
type Version struct {
	// Name is the identifier used in facet tags, e.g. "3.1" or "current".
	Name string `toml:"name" json:"name"`
	// Label is the human-readable form shown in the version selector.
	Label string `toml:"label" json:"label"`
}

// Group is a versioned documentation group. Versions are ordered newest
// first; the first entry is the default selection.
type Group struct {
	Name     string    `toml:"name" json:"name"`
	Label    string    `toml:"label,omitempty" json:"label,omitempty"`
	Versions []Version `toml:"versions" json:"versions"`
}

// Selection maps a group name to the selected version name. Entries change
// only through explicit user selection; absent entries mean the group's
// default (first) version.
type Selection map[string]string

// DefaultSelection returns the selection with every group at its first
// (latest) version. Groups without versions get no entry.
func DefaultSelection(groups []Group) Selection {
	sel := make(Selection, len(groups))
	for _, g := range groups {
		if len(g.Versions) > 0 {
			sel[g.Name] = g.Versions[0].Name
		}
	}
	return sel
}

// Select records a version choice. Unknown groups and versions are
// rejected so a hostile websocket client cannot inject arbitrary tags.
func (s Selection) Select(groups []Group, group, version string) error {
	for _, g := range groups {
		if g.Name != group {
			continue
		}
		for _, v := range g.Versions {
			if v.Name == version {
				s[group] = version
				return nil
			}
		}
		return fmt.Errorf("group %s has no version %s", group, version)
	}
	return fmt.Errorf("unknown documentation group %s", group)
}

// Version resolves the selected version for a group, falling back to the
// group default.
func (s Selection) Version(g Group) string {
	if v, ok := s[g.Name]; ok {
		return v
	}
	if len(g.Versions) > 0 {
		return g.Versions[0].Name
	}
	return ""
}

// Selectable returns the groups that expose a version choice in the UI:
// those with more than one published version.
func Selectable(groups []Group) []Group {
	var out []Group
	for _, g := range groups {
		if len(g.Versions) > 1 {
			out = append(out, g)
		}
	}
	return out
}

// Tags builds the disjunctive facet refinement set for a search call. When
// the host configuration carries an explicit filter expression the caller
// must skip this function and send the expression instead; Tags itself has
// no opinion on that.
func Tags(groups []Group, sel Selection, locale string) []string {
	tags := []string{DefaultTag}
	if locale != "" {
		tags = append(tags, "language-"+locale)
	}
	for _, g := range groups {
		if v := sel.Version(g); v != "" {
			tags = append(tags, fmt.Sprintf("docs-%s-%s", g.Name, v))
		}
	}
	return tags
}
