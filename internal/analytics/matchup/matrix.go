// Package matchup builds the head-to-head win rate matrix.
package matchup

import (
	"fmt"
	"strings"

	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// InsufficientText is shown in cells that cannot display a rate.
const InsufficientText = "Insufficient data"

// State is the display state of one cell.
type State string

const (
	// Self is a diagonal cell; it is never looked up.
	Self State = "self"
	// Missing means no record exists for the pair.
	Missing State = "missing"
	// Insufficient means a record exists but has too few games.
	Insufficient State = "insufficient"
	// Reliable means the rate can be shown.
	Reliable State = "reliable"
)

// Cell is one row-vs-column entry of the matrix.
type Cell struct {
	Row     string           `json:"row"`
	Col     string           `json:"col"`
	State   State            `json:"state"`
	Text    string           `json:"text"`
	Tooltip string           `json:"tooltip,omitempty"`
	Percent *float64         `json:"percent,omitempty"`
	Band    suppression.Band `json:"band,omitempty"`
	Wins    int              `json:"wins"`
	Losses  int              `json:"losses"`
	Total   int              `json:"total"`
}

// Header is a row or column label.
type Header struct {
	ID    string `json:"id"`
	Short string `json:"short"`
}

// Matrix is the square head-to-head grid over an ordered identifier list.
type Matrix struct {
	Headers []Header `json:"headers"`
	Rows    [][]Cell `json:"rows"`

	index map[string]int
}

// Build assembles the matrix for ids in the given order. Records whose
// commander or opponent is not in ids are ignored; diagonal records are
// never consulted.
func Build(ids []string, records []models.MatchupRecord, policy suppression.Policy) *Matrix {
	lookup := make(map[[2]string]models.MatchupRecord, len(records))
	for _, r := range records {
		lookup[[2]string{r.Commander, r.Opponent}] = r
	}

	m := &Matrix{
		Headers: make([]Header, len(ids)),
		Rows:    make([][]Cell, len(ids)),
		index:   make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		m.Headers[i] = Header{ID: id, Short: ShortName(id)}
		if _, dup := m.index[id]; !dup {
			m.index[id] = i
		}
	}

	for i, row := range ids {
		cells := make([]Cell, len(ids))
		for j, col := range ids {
			if row == col {
				cells[j] = Cell{Row: row, Col: col, State: Self}
				continue
			}
			rec, ok := lookup[[2]string{row, col}]
			if !ok {
				cells[j] = Cell{
					Row:     row,
					Col:     col,
					State:   Missing,
					Text:    InsufficientText,
					Tooltip: gamesPlayed(0),
				}
				continue
			}
			cells[j] = buildCell(row, col, rec, policy)
		}
		m.Rows[i] = cells
	}
	return m
}

func buildCell(row, col string, rec models.MatchupRecord, policy suppression.Policy) Cell {
	c := Cell{
		Row:    row,
		Col:    col,
		Wins:   rec.Wins,
		Losses: rec.Losses,
		Total:  rec.Total,
	}
	rate := rec.Rate()
	if rate == nil || !policy.IsReliable(rec.Total) {
		c.State = Insufficient
		c.Text = InsufficientText
		c.Tooltip = gamesPlayed(rec.Total)
		return c
	}

	pct := suppression.Round(*rate*100, 0)
	c.State = Reliable
	c.Percent = &pct
	c.Band = policy.ClassifyMatchup(*rate)
	c.Text = suppression.FormatPercent(pct, 0) + " winrate"
	c.Tooltip = fmt.Sprintf("%d games (%dW - %dL)", rec.Total, rec.Wins, rec.Losses)
	return c
}

func gamesPlayed(n int) string {
	if n == 1 {
		return "1 game played"
	}
	return fmt.Sprintf("%d games played", n)
}

// Cell returns the cell at (row, col).
func (m *Matrix) Cell(row, col string) (Cell, bool) {
	i, ok := m.index[row]
	if !ok {
		return Cell{}, false
	}
	j, ok := m.index[col]
	if !ok {
		return Cell{}, false
	}
	return m.Rows[i][j], true
}

// Size is the number of rows (and columns).
func (m *Matrix) Size() int {
	return len(m.Headers)
}

// ShortName abbreviates an identifier to its first word when the part
// before any comma has several words: "High Priest Aurelio, the Kind"
// becomes "High". Single-word heads keep the full identifier, so
// "Elyse, the Blade" is unchanged.
func ShortName(id string) string {
	head, _, _ := strings.Cut(id, ",")
	fields := strings.Fields(head)
	if len(fields) > 1 {
		return fields[0]
	}
	return id
}
