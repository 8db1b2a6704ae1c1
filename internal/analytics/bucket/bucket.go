// Package bucket turns per-commander bucketed win rates into a sortable
// table with row totals.
package bucket

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/RossFW/atlas-conquest/internal/analytics/sorting"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// Sort keys understood by Aggregate besides "bucket:<i>".
const (
	KeyName  = "name"
	KeyTotal = "total"
)

// DefaultSort orders rows by total games, most first.
var DefaultSort = sorting.State{Key: KeyTotal, Direction: sorting.Desc}

// BucketKey returns the sort key for the bucket at index i.
func BucketKey(i int) string {
	return "bucket:" + strconv.Itoa(i)
}

func parseBucketKey(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "bucket:")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Cell is one formatted bucket value.
type Cell struct {
	Games int              `json:"games"`
	Rate  suppression.Cell `json:"rate"`

	winrate *float64
}

// Row is one commander's line in the table.
type Row struct {
	Name  string `json:"name"`
	Cells []Cell `json:"cells"`
	Total int    `json:"total"`
}

// Table is the aggregated bucket view.
type Table struct {
	Labels  []string         `json:"labels"`
	Rows    []Row            `json:"rows"`
	Sort    sorting.State    `json:"sort"`
	Headers []sorting.Header `json:"headers"`
}

// Aggregate builds the table for series under the sort state st. Cells are
// aligned to the shared labels: missing trailing cells count as empty and
// surplus cells are dropped.
func Aggregate(series models.BucketSeries, st sorting.State, policy suppression.Policy) Table {
	labels := slices.Clone(series.Buckets)
	rows := make([]Row, 0, len(series.Commanders))

	for name, cells := range series.Commanders {
		row := Row{Name: name, Cells: make([]Cell, len(labels))}
		for i := range labels {
			var bc models.BucketCell
			if i < len(cells) {
				bc = cells[i]
			}
			row.Cells[i] = Cell{
				Games:   bc.Games,
				Rate:    policy.FormatRate(bc.Winrate, bc.Games),
				winrate: bc.Winrate,
			}
			row.Total += bc.Games
		}
		rows = append(rows, row)
	}

	// Map iteration order is random; start from name order so ties are stable.
	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortFunc(rows, func(a, b Row) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	st = normalize(st, len(labels))
	sortRows(rows, st, policy, col)

	return Table{
		Labels:  labels,
		Rows:    rows,
		Sort:    st,
		Headers: headers(labels, st),
	}
}

func normalize(st sorting.State, n int) sorting.State {
	switch st.Key {
	case KeyName:
		if st.Direction != sorting.Asc && st.Direction != sorting.Desc {
			st.Direction = sorting.Asc
		}
		return st
	case KeyTotal:
	default:
		if i, ok := parseBucketKey(st.Key); !ok || i >= n {
			return DefaultSort
		}
	}
	if st.Direction != sorting.Asc && st.Direction != sorting.Desc {
		st.Direction = sorting.Desc
	}
	return st
}

func sortRows(rows []Row, st sorting.State, policy suppression.Policy, col *collate.Collator) {
	sign := 1
	if st.Direction == sorting.Desc {
		sign = -1
	}

	switch st.Key {
	case KeyName:
		slices.SortStableFunc(rows, func(a, b Row) int {
			return sign * col.CompareString(a.Name, b.Name)
		})
	case KeyTotal:
		slices.SortStableFunc(rows, func(a, b Row) int {
			return sign * cmp.Compare(a.Total, b.Total)
		})
	default:
		i, _ := parseBucketKey(st.Key)
		usable := func(r Row) bool {
			c := r.Cells[i]
			return c.winrate != nil && policy.IsReliable(c.Games)
		}
		slices.SortStableFunc(rows, func(a, b Row) int {
			ua, ub := usable(a), usable(b)
			switch {
			case ua && !ub:
				return -1
			case !ua && ub:
				return 1
			case !ua && !ub:
				return 0
			}
			return sign * cmp.Compare(*a.Cells[i].winrate, *b.Cells[i].winrate)
		})
	}
}

// Select applies a header click to st for a table with n buckets.
func Select(cur sorting.State, key string, n int) sorting.State {
	cur = normalize(cur, n)
	next := normalize(sorting.State{Key: key}, n)
	if next.Key != key {
		return cur
	}
	if cur.Key == key {
		return sorting.State{Key: key, Direction: cur.Direction.Flip()}
	}
	return next
}

func headers(labels []string, st sorting.State) []sorting.Header {
	out := make([]sorting.Header, 0, len(labels)+2)
	add := func(key, label string) {
		h := sorting.Header{Key: key, Label: label, Next: Select(st, key, len(labels))}
		if st.Key == key {
			h.Active = st.Direction
		}
		out = append(out, h)
	}
	add(KeyName, "Commander")
	for i, l := range labels {
		add(BucketKey(i), l)
	}
	add(KeyTotal, "Total")
	return out
}

// String renders a row compactly for logs and CLI output.
func (r Row) String() string {
	parts := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		parts[i] = c.Rate.Text
	}
	return fmt.Sprintf("%s [%s] total=%d", r.Name, strings.Join(parts, " "), r.Total)
}
