package view

import (
	"github.com/RossFW/atlas-conquest/internal/analytics/filter"
	"github.com/RossFW/atlas-conquest/internal/analytics/sorting"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// PlayerRow is one leaderboard entry.
type PlayerRow struct {
	Rank    int              `json:"rank"`
	Name    string           `json:"name"`
	Games   int              `json:"games"`
	Wins    int              `json:"wins"`
	Losses  int              `json:"losses"`
	Winrate suppression.Cell `json:"winrate"`
}

// PlayerExportRow is the flat export shape of a leaderboard entry.
type PlayerExportRow struct {
	Rank    int    `csv:"rank" json:"rank"`
	Name    string `csv:"name" json:"name"`
	Games   int    `csv:"games" json:"games"`
	Wins    int    `csv:"wins" json:"wins"`
	Losses  int    `csv:"losses" json:"losses"`
	Winrate string `csv:"winrate" json:"winrate"`
}

// PlayersView is the player leaderboard.
type PlayersView struct {
	Common
	MinGames int              `json:"min_games"`
	Rows     []PlayerRow      `json:"rows"`
	Sort     sorting.State    `json:"sort"`
	Headers  []sorting.Header `json:"headers"`
}

// TableRows returns the leaderboard rows flattened for export.
func (v *PlayersView) TableRows() any {
	out := make([]PlayerExportRow, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = PlayerExportRow{
			Rank:    r.Rank,
			Name:    r.Name,
			Games:   r.Games,
			Wins:    r.Wins,
			Losses:  r.Losses,
			Winrate: r.Winrate.Text,
		}
	}
	return out
}

func playerRate(p models.PlayerStat) *float64 {
	if p.Winrate != nil {
		return p.Winrate
	}
	return models.Ratio(p.Wins, p.Games)
}

func (e *Engine) playerSchema() sorting.Schema[models.PlayerStat] {
	type P = models.PlayerStat
	return sorting.Schema[P]{
		Threshold: e.cfg.Policy.Threshold,
		Default:   sorting.State{Key: "winrate", Direction: sorting.Desc},
		Fields: []sorting.Field[P]{
			{Key: "name", Label: "Player", Kind: sorting.Text, Text: func(p P) string { return p.Name }},
			{Key: "games", Label: "Games", Kind: sorting.Numeric, Value: sorting.Int(func(p P) int { return p.Games })},
			{Key: "wins", Label: "Wins", Kind: sorting.Numeric, Value: sorting.Int(func(p P) int { return p.Wins })},
			{Key: "winrate", Label: "Win Rate", Kind: sorting.ReliableNumeric, Value: playerRate, Samples: func(p P) int { return p.Games }},
		},
	}
}

// Players renders the leaderboard of players with at least MinPlayerGames.
// Rank follows the displayed order.
func (e *Engine) Players(snap *dataset.Snapshot, req Request) *PlayersView {
	snap = orEmpty(snap)
	schema := e.playerSchema()
	st := schema.Normalize(req.Sort)

	var eligible []models.PlayerStat
	for _, p := range resolve(e, snap.Players, req) {
		if p.Games >= e.cfg.MinPlayerGames {
			eligible = append(eligible, p)
		}
	}
	eligible = filter.Apply(eligible, filter.State{Faction: filter.All, Search: req.Search})
	sorted := sorting.Sort(eligible, schema, st)

	rows := make([]PlayerRow, len(sorted))
	for i, p := range sorted {
		rows[i] = PlayerRow{
			Rank:    i + 1,
			Name:    p.Name,
			Games:   p.Games,
			Wins:    p.Wins,
			Losses:  max(p.Games-p.Wins, 0),
			Winrate: e.cfg.Policy.FormatRate(playerRate(p), p.Games),
		}
	}

	return &PlayersView{
		Common:   e.common(snap, req),
		MinGames: e.cfg.MinPlayerGames,
		Rows:     rows,
		Sort:     st,
		Headers:  schema.Headers(st),
	}
}
