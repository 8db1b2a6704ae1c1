package view

import (
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/RossFW/atlas-conquest/internal/analytics/faction"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// Hero is the headline figures of the home page.
type Hero struct {
	TotalMatches int    `json:"total_matches"`
	TotalPlayers int    `json:"total_players"`
	Matches      string `json:"matches"`
	Players      string `json:"players"`
	Updated      string `json:"updated"`
}

// Highlight is a featured commander.
type Highlight struct {
	Name    string           `json:"name"`
	Faction faction.Badge    `json:"faction"`
	Matches int              `json:"matches"`
	Winrate suppression.Cell `json:"winrate"`
}

// HomeView is the landing page.
type HomeView struct {
	Common
	Hero          Hero       `json:"hero"`
	TopCommander  *Highlight `json:"top_commander,omitempty"`
	BestWinrate   *Highlight `json:"best_winrate,omitempty"`
	Commanders    int        `json:"commanders"`
	CardsTracked  int        `json:"cards_tracked"`
	Distributions []Chart    `json:"distributions"`
}

// Home renders the landing page.
func (e *Engine) Home(snap *dataset.Snapshot, req Request) *HomeView {
	snap = orEmpty(snap)
	meta := resolve(e, snap.Metadata, req)
	stats := resolve(e, snap.CommanderStats, req)

	v := &HomeView{
		Common: e.common(snap, req),
		Hero: Hero{
			TotalMatches: meta.TotalMatches,
			TotalPlayers: meta.TotalPlayers,
			Matches:      humanize.Comma(int64(meta.TotalMatches)) + " matches",
			Players:      humanize.Comma(int64(meta.TotalPlayers)) + " players",
			Updated:      meta.LastUpdated,
		},
		Commanders:   len(stats),
		CardsTracked: len(resolve(e, snap.CardStats, req)),
	}
	if v.Hero.Updated == "" {
		v.Hero.Updated = suppression.Placeholder
	}

	var top, best *models.CommanderStat
	for i, c := range stats {
		if top == nil || c.Matches > top.Matches {
			top = &stats[i]
		}
		rate := c.Rate()
		if rate == nil || !e.cfg.Policy.IsReliable(c.Matches) {
			continue
		}
		if best == nil || *rate > *best.Rate() {
			best = &stats[i]
		}
	}
	if top != nil {
		v.TopCommander = e.highlight(*top)
	}
	if best != nil {
		v.BestWinrate = e.highlight(*best)
	}

	dist := resolve(e, snap.Distributions, req)
	for _, d := range []struct {
		id, title string
		data      *models.Distribution
	}{
		{"duration", "Game Duration", dist.Duration},
		{"turns", "Turns per Game", dist.Turns},
		{"actions", "Actions per Game", dist.Actions},
	} {
		if d.data == nil {
			continue
		}
		v.Distributions = append(v.Distributions, distributionChart(d.id, d.title, *d.data))
	}
	return v
}

func (e *Engine) highlight(c models.CommanderStat) *Highlight {
	return &Highlight{
		Name:    c.Name,
		Faction: e.cfg.Palette.Badge(c.Faction),
		Matches: c.Matches,
		Winrate: e.cfg.Policy.FormatRate(c.Rate(), c.Matches),
	}
}

// distributionChart aligns counts to labels; missing counts are gaps and
// surplus counts get positional labels.
func distributionChart(id, title string, d models.Distribution) Chart {
	n := max(len(d.Labels), len(d.Counts))
	labels := make([]string, n)
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		if i < len(d.Labels) {
			labels[i] = d.Labels[i]
		} else {
			labels[i] = strconv.Itoa(i + 1)
		}
		points[i] = Point{Label: labels[i]}
		if i < len(d.Counts) {
			points[i].Value = value(float64(d.Counts[i]))
		}
	}
	return Chart{
		ID:     "distribution-" + id,
		Title:  title,
		Kind:   ChartBar,
		YAxis:  "Games",
		Labels: labels,
		Series: []Series{{Name: "Games", Color: "#5470C6", Points: points}},
	}
}
