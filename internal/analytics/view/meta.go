package view

import (
	"slices"

	"github.com/RossFW/atlas-conquest/internal/analytics/faction"
	"github.com/RossFW/atlas-conquest/internal/analytics/matchup"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// MetaView is the metagame page: faction share over time and matchups.
type MetaView struct {
	Common
	Trend  Chart           `json:"trend"`
	Matrix *matchup.Matrix `json:"matrix"`
}

// Meta renders the metagame page.
func (e *Engine) Meta(snap *dataset.Snapshot, req Request) *MetaView {
	snap = orEmpty(snap)
	mu := resolve(e, snap.Matchups, req)
	return &MetaView{
		Common: e.common(snap, req),
		Trend:  e.trendChart(resolve(e, snap.Trends, req)),
		Matrix: matchup.Build(mu.Commanders, mu.Matchups, e.cfg.Policy),
	}
}

// trendChart builds one stacked series per faction that has any non-zero
// value, known factions first in palette order, then unknown keys by name.
func (e *Engine) trendChart(tr models.Trends) Chart {
	c := Chart{
		ID:     "faction-trends",
		Title:  "Faction Popularity Over Time",
		Kind:   ChartStackedArea,
		YAxis:  "Share (%)",
		Labels: slices.Clone(tr.Dates),
	}

	var order []string
	seen := map[string]bool{}
	for _, f := range faction.All() {
		if _, ok := tr.Factions[f.Key()]; ok {
			order = append(order, f.Key())
			seen[f.Key()] = true
		}
	}
	var extra []string
	for key := range tr.Factions {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	order = append(order, extra...)

	for _, key := range order {
		values := tr.Factions[key]
		if !anyPositive(values) {
			continue
		}
		badge := e.cfg.Palette.Badge(key)
		s := Series{Name: badge.Label, Color: badge.Color, Points: make([]Point, len(tr.Dates))}
		for i, d := range tr.Dates {
			p := Point{Label: d}
			if i < len(values) {
				p.Value = value(values[i])
			} else {
				p.Value = value(0)
			}
			s.Points[i] = p
		}
		c.Series = append(c.Series, s)
	}
	return c
}

func anyPositive(values []float64) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}
