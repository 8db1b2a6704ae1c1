package view

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/RossFW/atlas-conquest/internal/analytics/filter"
	"github.com/RossFW/atlas-conquest/internal/analytics/period"
	"github.com/RossFW/atlas-conquest/internal/analytics/sorting"
)

// Page names a view.
type Page string

const (
	PageHome       Page = "home"
	PageCommanders Page = "commanders"
	PageCards      Page = "cards"
	PageMeta       Page = "meta"
	PageMulligan   Page = "mulligan"
	PageDuration   Page = "duration"
	PageActions    Page = "actions"
	PageTurns      Page = "turns"
	PagePlayers    Page = "players"
)

// Pages lists every page in navigation order.
func Pages() []Page {
	return []Page{
		PageHome, PageCommanders, PageCards, PageMeta, PageMulligan,
		PageDuration, PageActions, PageTurns, PagePlayers,
	}
}

// ErrUnknownPage is returned for a page name that does not exist.
var ErrUnknownPage = errors.New("unknown page")

// ParsePage validates a page name.
func ParsePage(s string) (Page, error) {
	for _, p := range Pages() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, s)
}

// Request is the complete selector state for one render. It is a value:
// the With methods return modified copies.
type Request struct {
	Page      Page          `json:"page"`
	Period    string        `json:"period"`
	Faction   string        `json:"faction"`
	Commander string        `json:"commander"`
	Search    string        `json:"search"`
	Sort      sorting.State `json:"sort"`
}

// NewRequest returns the default request for page. The zero sort state
// selects the page's default sort at render time.
func NewRequest(page Page) Request {
	return Request{
		Page:      page,
		Period:    period.AllTime,
		Faction:   filter.All,
		Commander: filter.All,
	}
}

// WithPage switches page and clears the page-specific sort.
func (r Request) WithPage(p Page) Request {
	if r.Page != p {
		r.Sort = sorting.State{}
	}
	r.Page = p
	return r
}

// WithPeriod selects a period.
func (r Request) WithPeriod(p string) Request {
	r.Period = p
	return r
}

// WithFaction selects a faction filter.
func (r Request) WithFaction(f string) Request {
	r.Faction = f
	return r
}

// WithCommander selects the commander data scope.
func (r Request) WithCommander(c string) Request {
	r.Commander = c
	return r
}

// WithSearch sets the free-text search.
func (r Request) WithSearch(s string) Request {
	r.Search = s
	return r
}

// WithSort sets the sort state.
func (r Request) WithSort(st sorting.State) Request {
	r.Sort = st
	return r
}

// Filter returns the filter selection.
func (r Request) Filter() filter.State {
	return filter.State{Faction: r.Faction, Commander: r.Commander, Search: r.Search}
}

// Query encodes the request as URL query parameters.
func (r Request) Query() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("period", r.Period)
	set("faction", r.Faction)
	set("commander", r.Commander)
	set("search", r.Search)
	set("sort", r.Sort.Key)
	set("dir", string(r.Sort.Direction))
	return v
}

// Key is a canonical string identifying the request, suitable for cache keys.
func (r Request) Key() string {
	return string(r.Page) + "?" + r.Query().Encode()
}

// RequestFromQuery builds a request for page from URL query parameters.
// Absent parameters keep their defaults.
func RequestFromQuery(page Page, q url.Values) Request {
	r := NewRequest(page)
	if v := q.Get("period"); v != "" {
		r.Period = v
	}
	if v := q.Get("faction"); v != "" {
		r.Faction = strings.ToLower(v)
	}
	if v := q.Get("commander"); v != "" {
		r.Commander = v
	}
	r.Search = q.Get("search")
	r.Sort = sorting.State{Key: q.Get("sort"), Direction: sorting.Direction(q.Get("dir"))}
	return r
}
