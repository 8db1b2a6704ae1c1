// Benchmarks for rendering over a dataset the size of a busy season.
//
//	go test -bench=. -benchmem ./internal/analytics/view/...
package view

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/RossFW/atlas-conquest/internal/analytics/period"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

var benchFactions = []string{"skaal", "grenalia", "lucia", "neutral", "shadis", "archaeon"}

func benchSnapshot(commanders, cards int) *dataset.Snapshot {
	stats := make([]models.CommanderStat, commanders)
	names := make([]string, commanders)
	var records []models.MatchupRecord
	for i := range stats {
		names[i] = fmt.Sprintf("Commander %03d, the Bench", i)
		wins := (i * 7) % 40
		stats[i] = models.CommanderStat{
			Name:    names[i],
			Faction: benchFactions[i%len(benchFactions)],
			Matches: 40 + i%3,
			Wins:    wins,
			Winrate: f(float64(wins) / 40),
		}
	}
	for i := range names {
		for j := range names {
			if i == j || (i+j)%4 == 0 {
				continue
			}
			w, l := (i+2*j)%9, (2*i+j)%7
			records = append(records, models.MatchupRecord{Commander: names[i], Opponent: names[j], Wins: w, Losses: l, Total: w + l})
		}
	}

	cardStats := make([]models.CardStat, cards)
	mulligan := make([]models.MulliganStat, cards)
	for i := range cardStats {
		name := fmt.Sprintf("Card %04d", i)
		cardStats[i] = models.CardStat{
			Name:         name,
			Faction:      benchFactions[i%len(benchFactions)],
			Type:         []string{"Minion", "Spell", "Relic"}[i%3],
			DrawnWinrate: f(float64(i%100) / 100),
			DrawnCount:   i % 50,
		}
		mulligan[i] = models.MulliganStat{
			Name:         name,
			TotalSeen:    i % 30,
			KeptCount:    i % 20,
			KeepRate:     f(float64(i%20) / 30),
			WinrateDelta: f(float64(i%11-5) / 100),
		}
	}

	return &dataset.Snapshot{
		Version:        1,
		CommanderStats: period.Bare(stats),
		CardStats:      period.Bare(cardStats),
		Matchups:       period.Bare(models.Matchups{Commanders: names, Matchups: records}),
		MulliganStats:  period.Bare(mulligan),
	}
}

func BenchmarkRender(b *testing.B) {
	snap := benchSnapshot(60, 1500)
	e := engine()

	for _, tc := range []struct {
		name string
		req  Request
	}{
		{"commanders", NewRequest(PageCommanders)},
		{"cards", NewRequest(PageCards)},
		{"cards_search", NewRequest(PageCards).WithFaction("skaal").WithSearch("card 01")},
		{"meta", NewRequest(PageMeta)},
		{"mulligan", NewRequest(PageMulligan)},
	} {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := e.Render(snap, tc.req); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRenderJSON(b *testing.B) {
	snap := benchSnapshot(60, 1500)
	e := engine()
	req := NewRequest(PageCards)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m, err := e.Render(snap, req)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := json.Marshal(m); err != nil {
			b.Fatal(err)
		}
	}
}
