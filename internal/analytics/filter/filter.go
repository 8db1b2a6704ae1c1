// Package filter narrows row sets by faction and free-text search and
// selects commander-scoped data sources.
package filter

import (
	"strings"
)

// All is the sentinel selector value that disables a filter.
const All = "all"

// Row is implemented by every row type that can be filtered.
type Row interface {
	FilterFaction() string
	// SearchFields returns the texts free-text search matches against,
	// name first.
	SearchFields() []string
}

// State is the active filter selection. Filters are ANDed.
type State struct {
	Faction   string `json:"faction"`
	Commander string `json:"commander"`
	Search    string `json:"search"`
}

// DefaultState selects everything.
func DefaultState() State {
	return State{Faction: All, Commander: All}
}

// IsAll reports whether v is the pass-through sentinel.
func IsAll(v string) bool {
	return v == "" || v == All
}

// Apply returns the rows of in passing the faction and search filters, in
// input order. in is never modified.
func Apply[T Row](in []T, st State) []T {
	out := make([]T, 0, len(in))
	needle := normalizeSearch(st.Search)
	for _, row := range in {
		if !MatchFaction(row, st.Faction) {
			continue
		}
		if needle != "" && !matchSearch(row, needle) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// ByFaction keeps rows whose faction equals faction exactly.
func ByFaction[T Row](in []T, faction string) []T {
	return Apply(in, State{Faction: faction})
}

// BySearch keeps rows where any search field contains text, ignoring case.
func BySearch[T Row](in []T, text string) []T {
	return Apply(in, State{Faction: All, Search: text})
}

// MatchFaction reports whether row passes the faction filter.
func MatchFaction[T Row](row T, faction string) bool {
	if IsAll(faction) {
		return true
	}
	return row.FilterFaction() == faction
}

// MatchSearch reports whether row passes the search filter.
func MatchSearch[T Row](row T, text string) bool {
	needle := normalizeSearch(text)
	if needle == "" {
		return true
	}
	return matchSearch(row, needle)
}

func matchSearch[T Row](row T, needle string) bool {
	for _, field := range row.SearchFields() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func normalizeSearch(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Scoped is a data source that can be narrowed to a single commander. It
// replaces the row set rather than filtering it, since per-commander rows
// carry different statistics from the global ones.
type Scoped[T any] struct {
	Global      []T
	ByCommander map[string][]T
}

// Source returns the global rows for the All sentinel, else the rows
// recorded for commander. An unknown commander yields no rows.
func (s Scoped[T]) Source(commander string) []T {
	if IsAll(commander) {
		return s.Global
	}
	return s.ByCommander[commander]
}

// Commanders lists the commanders with scoped data.
func (s Scoped[T]) Commanders() []string {
	out := make([]string, 0, len(s.ByCommander))
	for name := range s.ByCommander {
		out = append(out, name)
	}
	return out
}
