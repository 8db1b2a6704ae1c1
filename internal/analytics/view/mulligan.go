package view

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/RossFW/atlas-conquest/internal/analytics/faction"
	"github.com/RossFW/atlas-conquest/internal/analytics/filter"
	"github.com/RossFW/atlas-conquest/internal/analytics/sorting"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// LowSampleText labels rows whose statistics are suppressed.
const LowSampleText = "low sample"

// NoMulliganText is shown when the filters leave no rows.
const NoMulliganText = "No mulligan data matches your filters."

// MulliganRow is one card's keep/return statistics.
type MulliganRow struct {
	Name          string           `json:"name"`
	Faction       faction.Badge    `json:"faction"`
	TotalSeen     int              `json:"total_seen"`
	KeptCount     int              `json:"kept_count"`
	ReturnedCount int              `json:"returned_count"`
	KeepRate      suppression.Cell `json:"keep_rate"`
	KeepWinrate   suppression.Cell `json:"keep_winrate"`
	ReturnWinrate suppression.Cell `json:"return_winrate"`
	WinrateDelta  suppression.Cell `json:"winrate_delta"`
	NormKeepDelta suppression.Cell `json:"norm_keep_delta"`
	Note          string           `json:"note,omitempty"`
}

// MulliganExportRow is the flat export shape of a mulligan row.
type MulliganExportRow struct {
	Name          string `csv:"name" json:"name"`
	Faction       string `csv:"faction" json:"faction"`
	TotalSeen     int    `csv:"total_seen" json:"total_seen"`
	KeptCount     int    `csv:"kept_count" json:"kept_count"`
	ReturnedCount int    `csv:"returned_count" json:"returned_count"`
	KeepRate      string `csv:"keep_rate" json:"keep_rate"`
	KeepWinrate   string `csv:"keep_winrate" json:"keep_winrate"`
	ReturnWinrate string `csv:"return_winrate" json:"return_winrate"`
	WinrateDelta  string `csv:"winrate_delta" json:"winrate_delta"`
	NormKeepDelta string `csv:"norm_keep_delta" json:"norm_keep_delta"`
}

// BestDelta names the card with the largest reliable win rate delta.
type BestDelta struct {
	Name  string           `json:"name"`
	Delta suppression.Cell `json:"delta"`
}

// MulliganOverview summarizes the selected data source.
type MulliganOverview struct {
	Games        int        `json:"games"`
	Hands        int        `json:"hands"`
	GamesText    string     `json:"games_text"`
	CardsTracked int        `json:"cards_tracked"`
	AvgKeepRate  string     `json:"avg_keep_rate"`
	Best         *BestDelta `json:"best_delta,omitempty"`
}

// MulliganView is the mulligan analysis page.
type MulliganView struct {
	Common
	Commanders []string         `json:"commanders"`
	Overview   MulliganOverview `json:"overview"`
	Rows       []MulliganRow    `json:"rows"`
	Sort       sorting.State    `json:"sort"`
	Headers    []sorting.Header `json:"headers"`
	Shown      int              `json:"shown"`
	Total      int              `json:"total"`
	CountText  string           `json:"count_text"`
	EmptyText  string           `json:"empty_text,omitempty"`
}

// TableRows returns the rows flattened for export.
func (v *MulliganView) TableRows() any {
	out := make([]MulliganExportRow, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = MulliganExportRow{
			Name:          r.Name,
			Faction:       r.Faction.Key,
			TotalSeen:     r.TotalSeen,
			KeptCount:     r.KeptCount,
			ReturnedCount: r.ReturnedCount,
			KeepRate:      r.KeepRate.Text,
			KeepWinrate:   r.KeepWinrate.Text,
			ReturnWinrate: r.ReturnWinrate.Text,
			WinrateDelta:  r.WinrateDelta.Text,
			NormKeepDelta: r.NormKeepDelta.Text,
		}
	}
	return out
}

// mulliganEntry is a mulligan stat enriched with the card's faction.
type mulliganEntry struct {
	models.MulliganStat
	faction string
}

func (m mulliganEntry) FilterFaction() string  { return m.faction }
func (m mulliganEntry) SearchFields() []string { return []string{m.Name} }

func (e *Engine) mulliganSchema() sorting.Schema[mulliganEntry] {
	type M = mulliganEntry
	seen := func(m M) int { return m.TotalSeen }
	gated := func(key, label string, get func(M) *float64) sorting.Field[M] {
		return sorting.Field[M]{Key: key, Label: label, Kind: sorting.ReliableNumeric, Value: get, Samples: seen}
	}
	count := func(key, label string, get func(M) int) sorting.Field[M] {
		return sorting.Field[M]{Key: key, Label: label, Kind: sorting.Numeric, Value: sorting.Int(get)}
	}
	return sorting.Schema[M]{
		Threshold: e.cfg.Policy.Threshold,
		Default:   sorting.State{Key: "total_seen", Direction: sorting.Desc},
		Fields: []sorting.Field[M]{
			{Key: "name", Label: "Card", Kind: sorting.Text, Text: func(m M) string { return m.Name }},
			{Key: "faction", Label: "Faction", Kind: sorting.Text, Text: func(m M) string { return m.faction }},
			count("total_seen", "Seen", seen),
			count("kept_count", "Kept", func(m M) int { return m.KeptCount }),
			count("returned_count", "Returned", func(m M) int { return m.ReturnedCount }),
			gated("keep_rate", "Keep Rate", func(m M) *float64 { return m.KeepRate }),
			gated("keep_winrate", "Keep WR", func(m M) *float64 { return m.KeepWinrate }),
			gated("return_winrate", "Return WR", func(m M) *float64 { return m.ReturnWinrate }),
			gated("winrate_delta", "WR Delta", func(m M) *float64 { return m.WinrateDelta }),
			gated("norm_keep_delta", "Norm. Keep Delta", func(m M) *float64 { return m.NormKeepDelta }),
		},
	}
}

// Mulligan renders the mulligan page. The commander selector switches the
// data source to that commander's rows instead of filtering global rows.
func (e *Engine) Mulligan(snap *dataset.Snapshot, req Request) *MulliganView {
	snap = orEmpty(snap)
	schema := e.mulliganSchema()
	st := schema.Normalize(req.Sort)

	scoped := filter.Scoped[models.MulliganStat]{
		Global:      resolve(e, snap.MulliganStats, req),
		ByCommander: resolve(e, snap.CommanderMulliganStats, req),
	}
	source := scoped.Source(req.Commander)

	factions := cardFactions(resolve(e, snap.CardStats, req))
	entries := make([]mulliganEntry, len(source))
	for i, m := range source {
		f, ok := factions[m.Name]
		if !ok {
			f = faction.Neutral.Key()
		}
		entries[i] = mulliganEntry{MulliganStat: m, faction: f}
	}

	shown := sorting.Sort(filter.Apply(entries, req.Filter()), schema, st)
	rows := make([]MulliganRow, len(shown))
	for i, m := range shown {
		rows[i] = e.mulliganRow(m)
	}

	commanders := scoped.Commanders()
	slices.Sort(commanders)

	v := &MulliganView{
		Common:     e.common(snap, req),
		Commanders: commanders,
		Overview:   e.mulliganOverview(source),
		Rows:       rows,
		Sort:       st,
		Headers:    schema.Headers(st),
		Shown:      len(rows),
		Total:      len(source),
		CountText:  fmt.Sprintf("Showing %s of %s cards", humanize.Comma(int64(len(rows))), humanize.Comma(int64(len(source)))),
	}
	if !filter.IsAll(req.Commander) {
		v.CountText += " for " + req.Commander
	}
	if len(rows) == 0 {
		v.EmptyText = NoMulliganText
	}
	return v
}

func cardFactions(cards []models.CardStat) map[string]string {
	out := make(map[string]string, len(cards))
	for _, c := range cards {
		out[c.Name] = c.Faction
	}
	return out
}

func (e *Engine) mulliganRow(m mulliganEntry) MulliganRow {
	p := e.cfg.Policy
	n := m.TotalSeen
	row := MulliganRow{
		Name:          m.Name,
		Faction:       e.cfg.Palette.Badge(m.faction),
		TotalSeen:     m.TotalSeen,
		KeptCount:     m.KeptCount,
		ReturnedCount: m.ReturnedCount,
		KeepRate:      p.FormatShare(m.KeepRate, n),
		KeepWinrate:   p.FormatRate(m.KeepWinrate, m.KeptCount),
		ReturnWinrate: p.FormatRate(m.ReturnWinrate, m.ReturnedCount),
		WinrateDelta:  p.FormatDelta(m.WinrateDelta, n),
		NormKeepDelta: p.FormatDelta(m.NormKeepDelta, n),
	}
	if !p.IsReliable(n) {
		row.Note = LowSampleText
	}
	return row
}

// mulliganOverview computes the summary over the whole data source,
// independent of the faction and search filters.
func (e *Engine) mulliganOverview(source []models.MulliganStat) MulliganOverview {
	o := MulliganOverview{CardsTracked: len(source), AvgKeepRate: suppression.Placeholder}
	if len(source) == 0 {
		o.GamesText = "0 games"
		return o
	}

	// Each game contributes one opening hand per player.
	o.Hands = source[0].MulliganGames
	o.Games = o.Hands / 2
	o.GamesText = fmt.Sprintf("%s games (%s hands)", humanize.Comma(int64(o.Games)), humanize.Comma(int64(o.Hands)))

	var kept, seen int
	for _, m := range source {
		kept += m.KeptCount
		seen += m.TotalSeen
	}
	if seen > 0 {
		o.AvgKeepRate = suppression.FormatPercent(suppression.Percent(float64(kept)/float64(seen)), 1)
	}

	var best *models.MulliganStat
	for i, m := range source {
		if m.WinrateDelta == nil || !e.cfg.Policy.IsReliable(m.TotalSeen) {
			continue
		}
		if best == nil || *m.WinrateDelta > *best.WinrateDelta {
			best = &source[i]
		}
	}
	if best != nil {
		o.Best = &BestDelta{Name: best.Name, Delta: e.cfg.Policy.FormatDelta(best.WinrateDelta, best.TotalSeen)}
	}
	return o
}
