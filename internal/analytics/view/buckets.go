package view

import (
	"github.com/RossFW/atlas-conquest/internal/analytics/bucket"
	"github.com/RossFW/atlas-conquest/internal/analytics/filter"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// chartedCommanders caps how many lines the bucket chart draws.
const chartedCommanders = 6

// BucketView is a win-rate-by-bucket page (game duration, actions or turns).
type BucketView struct {
	Common
	Title string       `json:"title"`
	Table bucket.Table `json:"table"`
	Chart Chart        `json:"chart"`
}

// BucketExportRow is the flat export shape of one commander/bucket pair.
type BucketExportRow struct {
	Commander string `csv:"commander" json:"commander"`
	Bucket    string `csv:"bucket" json:"bucket"`
	Games     int    `csv:"games" json:"games"`
	Winrate   string `csv:"winrate" json:"winrate"`
	Total     int    `csv:"total" json:"total"`
}

// TableRows returns one export row per commander and bucket.
func (v *BucketView) TableRows() any {
	out := []BucketExportRow{}
	for _, r := range v.Table.Rows {
		for i, c := range r.Cells {
			out = append(out, BucketExportRow{
				Commander: r.Name,
				Bucket:    v.Table.Labels[i],
				Games:     c.Games,
				Winrate:   c.Rate.Text,
				Total:     r.Total,
			})
		}
	}
	return out
}

func bucketTitle(p Page) string {
	switch p {
	case PageDuration:
		return "Win Rate by Game Duration"
	case PageActions:
		return "Win Rate by Actions Taken"
	case PageTurns:
		return "Win Rate by Turn Count"
	default:
		return "Win Rate by Bucket"
	}
}

type bucketEntry struct {
	name    string
	faction string
}

func (b bucketEntry) FilterFaction() string  { return b.faction }
func (b bucketEntry) SearchFields() []string { return []string{b.name} }

// Buckets renders a bucket page. Commanders are filtered by faction (looked
// up from commander stats) and by name search.
func (e *Engine) Buckets(snap *dataset.Snapshot, req Request) *BucketView {
	snap = orEmpty(snap)
	series := resolve(e, bucketDataset(snap, req.Page), req)

	factions := map[string]string{}
	for _, c := range resolve(e, snap.CommanderStats, req) {
		factions[c.Name] = c.Faction
	}

	entries := make([]bucketEntry, 0, len(series.Commanders))
	for name := range series.Commanders {
		entries = append(entries, bucketEntry{name: name, faction: factions[name]})
	}
	kept := models.BucketSeries{Buckets: series.Buckets, Commanders: map[string][]models.BucketCell{}}
	for _, b := range filter.Apply(entries, req.Filter()) {
		kept.Commanders[b.name] = series.Commanders[b.name]
	}

	table := bucket.Aggregate(kept, req.Sort, e.cfg.Policy)
	return &BucketView{
		Common: e.common(snap, req),
		Title:  bucketTitle(req.Page),
		Table:  table,
		Chart:  e.bucketChart(req.Page, kept, factions),
	}
}

// bucketChart draws the busiest commanders' win rate across buckets.
func (e *Engine) bucketChart(p Page, series models.BucketSeries, factions map[string]string) Chart {
	byTotal := bucket.Aggregate(series, bucket.DefaultSort, e.cfg.Policy)
	c := Chart{
		ID:     string(p) + "-winrates",
		Title:  bucketTitle(p),
		Kind:   ChartLine,
		YAxis:  "Win Rate (%)",
		Labels: byTotal.Labels,
	}

	for i, r := range byTotal.Rows {
		if i == chartedCommanders {
			break
		}
		s := Series{Name: r.Name, Color: e.cfg.Palette.ColorOf(factions[r.Name]), Points: make([]Point, len(r.Cells))}
		for j, cell := range r.Cells {
			s.Points[j] = Point{Label: byTotal.Labels[j], Value: cell.Rate.Percent}
		}
		c.Series = append(c.Series, s)
	}
	return c
}
