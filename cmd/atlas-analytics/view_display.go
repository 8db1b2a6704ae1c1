package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/RossFW/atlas-conquest/internal/analytics/matchup"
	"github.com/RossFW/atlas-conquest/internal/analytics/sorting"
	"github.com/RossFW/atlas-conquest/internal/analytics/view"
)

// displayView prints any rendered page.
func displayView(m view.Model) {
	base := m.Base()
	title := fmt.Sprintf("%s (%s)", strings.ToUpper(string(base.Page[:1]))+string(base.Page[1:]), base.PeriodLabel)
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", len(title)))
	fmt.Println()

	switch v := m.(type) {
	case *view.HomeView:
		displayHome(v)
	case *view.CommandersView:
		displayCommanders(v)
	case *view.CardsView:
		displayCards(v)
	case *view.MetaView:
		displayMeta(v)
	case *view.MulliganView:
		displayMulligan(v)
	case *view.BucketView:
		displayBuckets(v)
	case *view.PlayersView:
		displayPlayers(v)
	}
	fmt.Println()
}

func displayHome(v *view.HomeView) {
	fmt.Printf("%s, %s\n", v.Hero.Matches, v.Hero.Players)
	if v.Hero.Updated != "" {
		fmt.Printf("Updated:      %s\n", v.Hero.Updated)
	}
	fmt.Printf("Commanders:   %d\n", v.Commanders)
	fmt.Printf("Cards:        %s\n", humanize.Comma(int64(v.CardsTracked)))
	if v.TopCommander != nil {
		fmt.Printf("Most played:  %s (%s matches)\n", v.TopCommander.Name, humanize.Comma(int64(v.TopCommander.Matches)))
	}
	if v.BestWinrate != nil {
		fmt.Printf("Best winrate: %s (%s)\n", v.BestWinrate.Name, v.BestWinrate.Winrate.Text)
	}
}

func displayCommanders(v *view.CommandersView) {
	if len(v.Rows) == 0 {
		fmt.Println("No commander statistics available.")
		return
	}
	printHeaders(v.Headers)
	for _, r := range v.Rows {
		fmt.Printf("%-24s %-10s %8d %6d %6d %8s\n",
			r.Name, r.Faction.Label, r.Matches, r.Wins, r.Losses, r.Winrate.Text)
	}

	if len(v.Composition) > 0 {
		fmt.Println()
		fmt.Println("Deck Composition")
		fmt.Println("----------------")
		for _, c := range v.Composition {
			fmt.Printf("%-24s decks %4d  cost %5.2f  minions %5.1f  spells %5.1f\n",
				c.Commander, c.DeckCount, c.AvgCost, c.AvgMinions, c.AvgSpells)
		}
	}

	displayMatrix(v.Matrix)
}

func displayCards(v *view.CardsView) {
	fmt.Println(v.CountText)
	fmt.Println()
	if len(v.Rows) == 0 {
		fmt.Println(v.EmptyText)
		return
	}
	printHeaders(v.Headers)
	for _, r := range v.Rows {
		fmt.Printf("%-28s %-10s %-8s %8s %8s %8s\n",
			r.Name, r.Faction.Label, r.Type, r.Deck.Winrate.Text, r.Drawn.Winrate.Text, r.Played.Winrate.Text)
	}
}

func displayMeta(v *view.MetaView) {
	if v.Trend.Empty() {
		fmt.Println("No trend data available.")
	} else {
		fmt.Println(v.Trend.Title)
		for _, s := range v.Trend.Series {
			values := make([]string, len(s.Points))
			for i, p := range s.Points {
				if p.Value == nil {
					values[i] = "-"
				} else {
					values[i] = fmt.Sprintf("%.1f", *p.Value)
				}
			}
			fmt.Printf("  %-12s %s\n", s.Name, strings.Join(values, "  "))
		}
	}
	displayMatrix(v.Matrix)
}

func displayMulligan(v *view.MulliganView) {
	o := v.Overview
	fmt.Printf("Mulligan games: %s\n", o.GamesText)
	fmt.Printf("Cards tracked:  %d\n", o.CardsTracked)
	fmt.Printf("Avg keep rate:  %s\n", o.AvgKeepRate)
	if o.Best != nil {
		fmt.Printf("Best delta:     %s (%s)\n", o.Best.Name, o.Best.Delta.Text)
	}
	fmt.Println()

	fmt.Println(v.CountText)
	fmt.Println()
	if len(v.Rows) == 0 {
		fmt.Println(v.EmptyText)
		return
	}
	printHeaders(v.Headers)
	for _, r := range v.Rows {
		note := ""
		if r.Note != "" {
			note = "  (" + r.Note + ")"
		}
		fmt.Printf("%-28s %6d %8s %8s %8s %8s%s\n",
			r.Name, r.TotalSeen, r.KeepRate.Text, r.KeepWinrate.Text, r.ReturnWinrate.Text, r.WinrateDelta.Text, note)
	}
}

func displayBuckets(v *view.BucketView) {
	fmt.Println(v.Title)
	fmt.Println()
	if len(v.Table.Rows) == 0 {
		fmt.Println("No data available.")
		return
	}
	printHeaders(v.Table.Headers)
	for _, r := range v.Table.Rows {
		fmt.Println(r.String())
	}
}

func displayPlayers(v *view.PlayersView) {
	if len(v.Rows) == 0 {
		fmt.Printf("No players with at least %d games.\n", v.MinGames)
		return
	}
	printHeaders(v.Headers)
	for _, r := range v.Rows {
		fmt.Printf("%4d  %-24s %6d %6d %6d %8s\n", r.Rank, r.Name, r.Games, r.Wins, r.Losses, r.Winrate.Text)
	}
}

// printHeaders prints the column labels, marking the active sort.
func printHeaders(headers []sorting.Header) {
	labels := make([]string, len(headers))
	for i, h := range headers {
		switch h.Active {
		case sorting.Asc:
			labels[i] = h.Label + " ↑"
		case sorting.Desc:
			labels[i] = h.Label + " ↓"
		default:
			labels[i] = h.Label
		}
	}
	line := strings.Join(labels, " | ")
	fmt.Println(line)
	fmt.Println(strings.Repeat("-", len([]rune(line))))
}

func displayMatrix(m *matchup.Matrix) {
	if m == nil || m.Size() == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Matchups")
	fmt.Println("--------")

	fmt.Printf("%-8s", "")
	for _, h := range m.Headers {
		fmt.Printf(" %8s", h.Short)
	}
	fmt.Println()
	for i, row := range m.Rows {
		fmt.Printf("%-8s", m.Headers[i].Short)
		for _, c := range row {
			text := c.Text
			switch c.State {
			case matchup.Reliable:
				text = strings.TrimSuffix(text, " winrate")
			case matchup.Insufficient:
				text = "·"
			default:
				text = ""
			}
			fmt.Printf(" %8s", text)
		}
		fmt.Println()
	}
}
