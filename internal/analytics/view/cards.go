package view

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/RossFW/atlas-conquest/internal/analytics/faction"
	"github.com/RossFW/atlas-conquest/internal/analytics/filter"
	"github.com/RossFW/atlas-conquest/internal/analytics/sorting"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// NoCardsText is shown when the filters leave no cards.
const NoCardsText = "No cards match your filters."

// Usage is one of a card's deck, drawn and played figures.
type Usage struct {
	Rate    suppression.Cell `json:"rate"`
	Winrate suppression.Cell `json:"winrate"`
	Count   int              `json:"count"`
}

// CardRow is one card in the table.
type CardRow struct {
	Name    string        `json:"name"`
	Type    string        `json:"type"`
	Subtype string        `json:"subtype,omitempty"`
	Faction faction.Badge `json:"faction"`
	Deck    Usage         `json:"deck"`
	Drawn   Usage         `json:"drawn"`
	Played  Usage         `json:"played"`
}

// CardExportRow is the flat export shape of a card.
type CardExportRow struct {
	Name          string `csv:"name" json:"name"`
	Faction       string `csv:"faction" json:"faction"`
	Type          string `csv:"type" json:"type"`
	Subtype       string `csv:"subtype" json:"subtype"`
	DeckRate      string `csv:"deck_rate" json:"deck_rate"`
	DeckWinrate   string `csv:"deck_winrate" json:"deck_winrate"`
	DeckCount     int    `csv:"deck_count" json:"deck_count"`
	DrawnRate     string `csv:"drawn_rate" json:"drawn_rate"`
	DrawnWinrate  string `csv:"drawn_winrate" json:"drawn_winrate"`
	DrawnCount    int    `csv:"drawn_count" json:"drawn_count"`
	PlayedRate    string `csv:"played_rate" json:"played_rate"`
	PlayedWinrate string `csv:"played_winrate" json:"played_winrate"`
	PlayedCount   int    `csv:"played_count" json:"played_count"`
}

// CardsView is the card statistics page.
type CardsView struct {
	Common
	Rows      []CardRow        `json:"rows"`
	Sort      sorting.State    `json:"sort"`
	Headers   []sorting.Header `json:"headers"`
	Shown     int              `json:"shown"`
	Total     int              `json:"total"`
	CountText string           `json:"count_text"`
	EmptyText string           `json:"empty_text,omitempty"`
}

// TableRows returns the rows flattened for export.
func (v *CardsView) TableRows() any {
	out := make([]CardExportRow, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = CardExportRow{
			Name:          r.Name,
			Faction:       r.Faction.Key,
			Type:          r.Type,
			Subtype:       r.Subtype,
			DeckRate:      r.Deck.Rate.Text,
			DeckWinrate:   r.Deck.Winrate.Text,
			DeckCount:     r.Deck.Count,
			DrawnRate:     r.Drawn.Rate.Text,
			DrawnWinrate:  r.Drawn.Winrate.Text,
			DrawnCount:    r.Drawn.Count,
			PlayedRate:    r.Played.Rate.Text,
			PlayedWinrate: r.Played.Winrate.Text,
			PlayedCount:   r.Played.Count,
		}
	}
	return out
}

func (e *Engine) cardSchema() sorting.Schema[models.CardStat] {
	type C = models.CardStat
	rate := func(key, label string, get func(C) *float64) sorting.Field[C] {
		return sorting.Field[C]{Key: key, Label: label, Kind: sorting.Numeric, Value: get}
	}
	winrate := func(key, label string, get func(C) *float64, n func(C) int) sorting.Field[C] {
		return sorting.Field[C]{Key: key, Label: label, Kind: sorting.ReliableNumeric, Value: get, Samples: n}
	}
	count := func(key, label string, get func(C) int) sorting.Field[C] {
		return sorting.Field[C]{Key: key, Label: label, Kind: sorting.Numeric, Value: sorting.Int(get)}
	}

	return sorting.Schema[C]{
		Threshold: e.cfg.Policy.Threshold,
		Default:   sorting.State{Key: "drawn_winrate", Direction: sorting.Desc},
		Fields: []sorting.Field[C]{
			{Key: "name", Label: "Card", Kind: sorting.Text, Text: func(c C) string { return c.Name }},
			{Key: "faction", Label: "Faction", Kind: sorting.Text, Text: func(c C) string { return c.Faction }},
			{Key: "type", Label: "Type", Kind: sorting.Text, Text: func(c C) string { return c.Type }},
			rate("deck_rate", "Deck Rate", func(c C) *float64 { return c.DeckRate }),
			winrate("deck_winrate", "Deck WR", func(c C) *float64 { return c.DeckWinrate }, func(c C) int { return c.DeckCount }),
			count("deck_count", "Decks", func(c C) int { return c.DeckCount }),
			rate("drawn_rate", "Drawn Rate", func(c C) *float64 { return c.DrawnRate }),
			winrate("drawn_winrate", "Drawn WR", func(c C) *float64 { return c.DrawnWinrate }, func(c C) int { return c.DrawnCount }),
			count("drawn_count", "Drawn", func(c C) int { return c.DrawnCount }),
			rate("played_rate", "Played Rate", func(c C) *float64 { return c.PlayedRate }),
			winrate("played_winrate", "Played WR", func(c C) *float64 { return c.PlayedWinrate }, func(c C) int { return c.PlayedCount }),
			count("played_count", "Played", func(c C) int { return c.PlayedCount }),
		},
	}
}

// Cards renders the card statistics page.
func (e *Engine) Cards(snap *dataset.Snapshot, req Request) *CardsView {
	snap = orEmpty(snap)
	schema := e.cardSchema()
	st := schema.Normalize(req.Sort)

	all := resolve(e, snap.CardStats, req)
	shown := sorting.Sort(filter.Apply(all, req.Filter()), schema, st)
	// The count is out of the selected faction, before search narrows it.
	total := len(filter.Apply(all, filter.State{Faction: req.Faction}))

	rows := make([]CardRow, len(shown))
	for i, c := range shown {
		rows[i] = e.cardRow(c)
	}

	v := &CardsView{
		Common:    e.common(snap, req),
		Rows:      rows,
		Sort:      st,
		Headers:   schema.Headers(st),
		Shown:     len(rows),
		Total:     total,
		CountText: fmt.Sprintf("Showing %s of %s cards", humanize.Comma(int64(len(rows))), humanize.Comma(int64(total))),
	}
	if len(rows) == 0 {
		v.EmptyText = NoCardsText
	}
	return v
}

func (e *Engine) cardRow(c models.CardStat) CardRow {
	p := e.cfg.Policy
	usage := func(rate, winrate *float64, n int) Usage {
		return Usage{
			Rate:    p.FormatShare(rate, n),
			Winrate: p.FormatRate(winrate, n),
			Count:   n,
		}
	}
	return CardRow{
		Name:    c.Name,
		Type:    c.Type,
		Subtype: c.Subtype,
		Faction: e.cfg.Palette.Badge(c.Faction),
		Deck:    usage(c.DeckRate, c.DeckWinrate, c.DeckCount),
		Drawn:   usage(c.DrawnRate, c.DrawnWinrate, c.DrawnCount),
		Played:  usage(c.PlayedRate, c.PlayedWinrate, c.PlayedCount),
	}
}
