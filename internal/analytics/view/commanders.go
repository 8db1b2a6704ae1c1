package view

import (
	"strings"
	"unicode/utf8"

	"github.com/RossFW/atlas-conquest/internal/analytics/faction"
	"github.com/RossFW/atlas-conquest/internal/analytics/filter"
	"github.com/RossFW/atlas-conquest/internal/analytics/matchup"
	"github.com/RossFW/atlas-conquest/internal/analytics/sorting"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// CommanderRow is one commander in the table and card grid.
type CommanderRow struct {
	Name    string           `json:"name"`
	Faction faction.Badge    `json:"faction"`
	Art     string           `json:"art,omitempty"`
	Initial string           `json:"initial"`
	Matches int              `json:"matches"`
	Wins    int              `json:"wins"`
	Losses  int              `json:"losses"`
	Winrate suppression.Cell `json:"winrate"`
}

// CompositionRow is the average deck shape of one commander.
type CompositionRow struct {
	Commander  string        `json:"commander"`
	Faction    faction.Badge `json:"faction"`
	DeckCount  int           `json:"deck_count"`
	AvgCost    float64       `json:"avg_cost"`
	AvgMinions float64       `json:"avg_minion_count"`
	AvgSpells  float64       `json:"avg_spell_count"`
	AvgPatron  float64       `json:"avg_patron_cards"`
	AvgNeutral float64       `json:"avg_neutral_cards"`
	AvgOther   float64       `json:"avg_other_cards"`
}

// CommandersView is the commander overview page.
type CommandersView struct {
	Common
	Rows        []CommanderRow   `json:"rows"`
	Sort        sorting.State    `json:"sort"`
	Headers     []sorting.Header `json:"headers"`
	Winrates    Chart            `json:"winrates"`
	Matrix      *matchup.Matrix  `json:"matrix"`
	Composition []CompositionRow `json:"composition"`
	DeckCharts  []Chart          `json:"deck_charts"`
}

// CommanderExportRow is the flat export shape of a commander.
type CommanderExportRow struct {
	Name    string `csv:"commander" json:"commander"`
	Faction string `csv:"faction" json:"faction"`
	Matches int    `csv:"matches" json:"matches"`
	Wins    int    `csv:"wins" json:"wins"`
	Losses  int    `csv:"losses" json:"losses"`
	Winrate string `csv:"winrate" json:"winrate"`
}

// TableRows returns the commander rows flattened for export.
func (v *CommandersView) TableRows() any {
	out := make([]CommanderExportRow, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = CommanderExportRow{
			Name:    r.Name,
			Faction: r.Faction.Key,
			Matches: r.Matches,
			Wins:    r.Wins,
			Losses:  r.Losses,
			Winrate: r.Winrate.Text,
		}
	}
	return out
}

func (e *Engine) commanderSchema() sorting.Schema[models.CommanderStat] {
	return sorting.Schema[models.CommanderStat]{
		Threshold: e.cfg.Policy.Threshold,
		Default:   sorting.State{Key: "winrate", Direction: sorting.Desc},
		Fields: []sorting.Field[models.CommanderStat]{
			{Key: "name", Label: "Commander", Kind: sorting.Text, Text: func(c models.CommanderStat) string { return c.Name }},
			{Key: "faction", Label: "Faction", Kind: sorting.Text, Text: func(c models.CommanderStat) string { return c.Faction }},
			{Key: "matches", Label: "Matches", Kind: sorting.Numeric, Value: sorting.Int(func(c models.CommanderStat) int { return c.Matches })},
			{Key: "wins", Label: "Wins", Kind: sorting.Numeric, Value: sorting.Int(func(c models.CommanderStat) int { return c.Wins })},
			{
				Key: "winrate", Label: "Win Rate", Kind: sorting.ReliableNumeric,
				Value:   func(c models.CommanderStat) *float64 { return c.Rate() },
				Samples: func(c models.CommanderStat) int { return c.Matches },
			},
		},
	}
}

// Commanders renders the commanders page.
func (e *Engine) Commanders(snap *dataset.Snapshot, req Request) *CommandersView {
	snap = orEmpty(snap)
	schema := e.commanderSchema()
	st := schema.Normalize(req.Sort)

	stats := filter.Apply(resolve(e, snap.CommanderStats, req), req.Filter())
	art := artLookup(resolve(e, snap.Commanders, req))

	sorted := sorting.Sort(stats, schema, st)
	rows := make([]CommanderRow, len(sorted))
	for i, c := range sorted {
		rows[i] = e.commanderRow(c, art)
	}

	byRate := sorting.Sort(stats, schema, schema.Default)
	chart := Chart{ID: "commander-winrates", Title: "Commander Win Rates", Kind: ChartBar, YAxis: "Win Rate (%)"}
	points := make([]Point, len(byRate))
	for i, c := range byRate {
		chart.Labels = append(chart.Labels, c.Name)
		points[i] = Point{
			Label: c.Name,
			Value: e.cfg.Policy.FormatRate(c.Rate(), c.Matches).Percent,
			Color: e.cfg.Palette.ColorOf(c.Faction),
		}
	}
	chart.Series = []Series{{Name: "Win Rate", Points: points}}

	mu := resolve(e, snap.Matchups, req)
	comp := e.composition(resolve(e, snap.DeckComposition, req), req)

	return &CommandersView{
		Common:      e.common(snap, req),
		Rows:        rows,
		Sort:        st,
		Headers:     schema.Headers(st),
		Winrates:    chart,
		Matrix:      matchup.Build(mu.Commanders, mu.Matchups, e.cfg.Policy),
		Composition: comp,
		DeckCharts:  compositionCharts(comp),
	}
}

func (e *Engine) commanderRow(c models.CommanderStat, art map[string]string) CommanderRow {
	losses := c.Losses
	if losses == 0 && c.Matches > c.Wins {
		losses = c.Matches - c.Wins
	}
	return CommanderRow{
		Name:    c.Name,
		Faction: e.cfg.Palette.Badge(c.Faction),
		Art:     art[c.Name],
		Initial: initial(c.Name),
		Matches: c.Matches,
		Wins:    c.Wins,
		Losses:  losses,
		Winrate: e.cfg.Policy.FormatRate(c.Rate(), c.Matches),
	}
}

func artLookup(infos []models.CommanderInfo) map[string]string {
	out := make(map[string]string, len(infos))
	for _, info := range infos {
		if info.Art != "" {
			out[info.Name] = info.Art
		}
	}
	return out
}

// initial is the placeholder letter shown when a commander has no art.
func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return strings.ToUpper(string(r))
}

type compositionEntry struct {
	name string
	models.DeckComposition
}

func (c compositionEntry) FilterFaction() string  { return c.Faction }
func (c compositionEntry) SearchFields() []string { return []string{c.name} }

var compositionSchema = sorting.Schema[compositionEntry]{
	Default: sorting.State{Key: "name", Direction: sorting.Asc},
	Fields: []sorting.Field[compositionEntry]{
		{Key: "name", Label: "Commander", Kind: sorting.Text, Text: func(c compositionEntry) string { return c.name }},
	},
}

func (e *Engine) composition(byCommander map[string]models.DeckComposition, req Request) []CompositionRow {
	entries := make([]compositionEntry, 0, len(byCommander))
	for name, dc := range byCommander {
		entries = append(entries, compositionEntry{name: name, DeckComposition: dc})
	}
	entries = filter.Apply(entries, req.Filter())
	entries = sorting.Sort(entries, compositionSchema, compositionSchema.Default)

	out := make([]CompositionRow, len(entries))
	for i, c := range entries {
		out[i] = CompositionRow{
			Commander:  c.name,
			Faction:    e.cfg.Palette.Badge(c.Faction),
			DeckCount:  c.DeckCount,
			AvgCost:    suppression.Round(c.AvgCost, 2),
			AvgMinions: suppression.Round(c.AvgMinionCount, 1),
			AvgSpells:  suppression.Round(c.AvgSpellCount, 1),
			AvgPatron:  suppression.Round(c.AvgPatronCards, 1),
			AvgNeutral: suppression.Round(c.AvgNeutralCards, 1),
			AvgOther:   suppression.Round(c.AvgOtherCards, 1),
		}
	}
	return out
}

func compositionCharts(rows []CompositionRow) []Chart {
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Commander
	}
	series := func(name, color string, get func(CompositionRow) float64) Series {
		s := Series{Name: name, Color: color, Points: make([]Point, len(rows))}
		for i, r := range rows {
			s.Points[i] = Point{Label: r.Commander, Value: value(get(r))}
		}
		return s
	}

	cost := series("Average Cost", "", func(r CompositionRow) float64 { return r.AvgCost })
	for i, r := range rows {
		cost.Points[i].Color = r.Faction.Color
	}

	return []Chart{
		{
			ID: "deck-cost", Title: "Average Deck Cost", Kind: ChartBar, Labels: labels,
			Series: []Series{cost},
		},
		{
			ID: "deck-types", Title: "Minions vs Spells", Kind: ChartStackedBar, Labels: labels,
			Series: []Series{
				series("Minions", "#5470C6", func(r CompositionRow) float64 { return r.AvgMinions }),
				series("Spells", "#91CC75", func(r CompositionRow) float64 { return r.AvgSpells }),
			},
		},
		{
			ID: "deck-sources", Title: "Card Sources", Kind: ChartStackedBar, Labels: labels,
			Series: []Series{
				series("Patron", "#FAC858", func(r CompositionRow) float64 { return r.AvgPatron }),
				series("Neutral", "#A89078", func(r CompositionRow) float64 { return r.AvgNeutral }),
				series("Other", "#73C0DE", func(r CompositionRow) float64 { return r.AvgOther }),
			},
		},
	}
}
