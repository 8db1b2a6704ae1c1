package view

import (
	"errors"
	"net/url"
	"reflect"
	"testing"

	"github.com/RossFW/atlas-conquest/internal/analytics/bucket"
	"github.com/RossFW/atlas-conquest/internal/analytics/matchup"
	"github.com/RossFW/atlas-conquest/internal/analytics/period"
	"github.com/RossFW/atlas-conquest/internal/analytics/sorting"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

func f(v float64) *float64 { return &v }

func fixture() *dataset.Snapshot {
	return &dataset.Snapshot{
		Version:  3,
		Metadata: period.Bare(models.Metadata{TotalMatches: 1234, TotalPlayers: 56, LastUpdated: "2025-03-01"}),
		CommanderStats: period.Partitioned(map[string][]models.CommanderStat{
			"all": {
				{Name: "A", Faction: "skaal", Matches: 10, Wins: 6, Winrate: f(0.6)},
				{Name: "B", Faction: "lucia", Matches: 3, Wins: 3, Winrate: f(1.0)},
				{Name: "C", Faction: "skaal", Matches: 40, Wins: 18, Winrate: f(0.45)},
			},
			"30d": {
				{Name: "A", Faction: "skaal", Matches: 5, Wins: 1, Winrate: f(0.2)},
			},
		}),
		CardStats: period.Bare([]models.CardStat{
			{Name: "Ember Wolf", Faction: "skaal", Type: "Minion", Subtype: "Beast", DrawnWinrate: f(0.55), DrawnCount: 20, DrawnRate: f(0.3)},
			{Name: "Sunlance", Faction: "lucia", Type: "Spell", DrawnWinrate: f(0.70), DrawnCount: 2},
			{Name: "Wolf Pact", Faction: "skaal", Type: "Spell", DrawnWinrate: f(0.50), DrawnCount: 12},
			{Name: "Grove Warden", Faction: "grenalia", Type: "Minion", DrawnWinrate: f(0.60), DrawnCount: 9},
		}),
		Trends: period.Bare(models.Trends{
			Dates: []string{"2025-01", "2025-02"},
			Factions: map[string][]float64{
				"skaal":    {40, 45},
				"lucia":    {60, 55},
				"archaeon": {0, 0},
			},
		}),
		Matchups: period.Bare(models.Matchups{
			Commanders: []string{"A", "C"},
			Matchups: []models.MatchupRecord{
				{Commander: "A", Opponent: "C", Wins: 7, Losses: 3, Total: 10},
			},
		}),
		MulliganStats: period.Bare([]models.MulliganStat{
			{Name: "Ember Wolf", TotalSeen: 20, KeptCount: 15, ReturnedCount: 5, KeepRate: f(0.75), KeepWinrate: f(0.6), ReturnWinrate: f(0.4), WinrateDelta: f(0.2), MulliganGames: 101},
			{Name: "Unknown Relic", TotalSeen: 4, KeptCount: 1, ReturnedCount: 3, WinrateDelta: f(0.9), MulliganGames: 101},
			{Name: "Sunlance", TotalSeen: 10, KeptCount: 4, ReturnedCount: 6, KeepRate: f(0.4), WinrateDelta: f(-0.05), MulliganGames: 101},
		}),
		CommanderMulliganStats: period.Bare(map[string][]models.MulliganStat{
			"A": {{Name: "Wolf Pact", TotalSeen: 6, KeptCount: 6, MulliganGames: 12}},
		}),
		DurationWinrates: period.Bare(models.BucketSeries{
			Buckets: []string{"short", "medium", "long"},
			Commanders: map[string][]models.BucketCell{
				"A": {{Games: 10, Winrate: f(0.6)}, {Games: 0}, {Games: 15, Winrate: f(0.4)}},
				"B": {{Games: 3, Winrate: f(1.0)}},
				"C": {{Games: 30, Winrate: f(0.5)}, {Games: 10, Winrate: f(0.5)}},
			},
		}),
		Players: period.Bare([]models.PlayerStat{
			{Name: "ann", Games: 12, Wins: 9},
			{Name: "bob", Games: 9, Wins: 9},
			{Name: "cy", Games: 30, Wins: 12},
		}),
		Commanders: period.Bare([]models.CommanderInfo{{Name: "A", Art: "img/a.png"}}),
		DeckComposition: period.Bare(map[string]models.DeckComposition{
			"C": {Faction: "skaal", DeckCount: 4, AvgCost: 3.456, AvgMinionCount: 20, AvgSpellCount: 10},
			"A": {Faction: "skaal", DeckCount: 2, AvgCost: 2.5},
		}),
		Distributions: period.Bare(models.GameDistributions{
			Duration: &models.Distribution{Labels: []string{"0-10", "10-20"}, Counts: []int{5, 7}},
		}),
	}
}

func engine() *Engine {
	return NewEngine(DefaultConfig())
}

func commanderNames(rows []CommanderRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestCommanders_SuppressedRowSinks(t *testing.T) {
	snap := &dataset.Snapshot{
		CommanderStats: period.Bare([]models.CommanderStat{
			{Name: "A", Faction: "skaal", Matches: 10, Wins: 6, Winrate: f(0.6)},
			{Name: "B", Faction: "lucia", Matches: 3, Wins: 3, Winrate: f(1.0)},
		}),
	}
	req := NewRequest(PageCommanders).WithSort(sorting.State{Key: "winrate", Direction: sorting.Desc})

	v := engine().Commanders(snap, req)
	if got := commanderNames(v.Rows); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("order = %v, want [A B]", got)
	}
	if v.Rows[0].Winrate.Text != "60.0%" {
		t.Errorf("A winrate = %q, want 60.0%%", v.Rows[0].Winrate.Text)
	}
	if v.Rows[1].Winrate.Text != suppression.Placeholder {
		t.Errorf("B winrate = %q, want placeholder", v.Rows[1].Winrate.Text)
	}
}

func TestRender_Idempotent(t *testing.T) {
	e := engine()
	snap := fixture()
	for _, p := range Pages() {
		req := NewRequest(p).WithSearch("a")
		first, err := e.Render(snap, req)
		if err != nil {
			t.Fatalf("Render(%s): %v", p, err)
		}
		second, _ := e.Render(snap, req)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Render(%s) is not idempotent", p)
		}
	}
}

func TestRender_UnknownPage(t *testing.T) {
	_, err := engine().Render(fixture(), Request{Page: "nope"})
	if !errors.Is(err, ErrUnknownPage) {
		t.Errorf("err = %v, want ErrUnknownPage", err)
	}
}

func TestRender_NilSnapshotIsEmpty(t *testing.T) {
	e := engine()
	for _, p := range Pages() {
		if _, err := e.Render(nil, NewRequest(p)); err != nil {
			t.Errorf("Render(%s, nil): %v", p, err)
		}
	}
	v := e.Cards(nil, NewRequest(PageCards))
	if v.EmptyText != NoCardsText || v.Total != 0 {
		t.Errorf("empty cards view = %+v", v)
	}
}

func TestCommanders_PeriodFallback(t *testing.T) {
	e := engine()
	snap := fixture()

	recent := e.Commanders(snap, NewRequest(PageCommanders).WithPeriod("30d"))
	if len(recent.Rows) != 1 || recent.Rows[0].Winrate.Text != "20.0%" {
		t.Errorf("30d rows = %+v", recent.Rows)
	}
	if recent.PeriodLabel != "Last 30 Days" {
		t.Errorf("PeriodLabel = %q", recent.PeriodLabel)
	}

	week := e.Commanders(snap, NewRequest(PageCommanders).WithPeriod("7d"))
	if len(week.Rows) != 3 {
		t.Errorf("7d should fall back to all-time, got %d rows", len(week.Rows))
	}

	bogus := e.Commanders(snap, NewRequest(PageCommanders).WithPeriod("bogus"))
	if bogus.PeriodLabel != "All Time" {
		t.Errorf("unknown period label = %q", bogus.PeriodLabel)
	}
}

func TestCommanders_Details(t *testing.T) {
	v := engine().Commanders(fixture(), NewRequest(PageCommanders).WithFaction("skaal"))

	if got := commanderNames(v.Rows); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("skaal rows = %v", got)
	}
	a := v.Rows[0]
	if a.Art != "img/a.png" || a.Initial != "A" || a.Losses != 4 {
		t.Errorf("row A = %+v", a)
	}
	if a.Faction.Color != "#D55E00" {
		t.Errorf("A colour = %s", a.Faction.Color)
	}

	cell, ok := v.Matrix.Cell("A", "C")
	if !ok || cell.State != matchup.Reliable || cell.Text != "70% winrate" {
		t.Errorf("A vs C = %+v", cell)
	}
	if back, _ := v.Matrix.Cell("C", "A"); back.State != matchup.Missing {
		t.Errorf("C vs A state = %s", back.State)
	}

	if len(v.Composition) != 2 || v.Composition[0].Commander != "A" || v.Composition[1].AvgCost != 3.46 {
		t.Errorf("composition = %+v", v.Composition)
	}
	if len(v.DeckCharts) != 3 {
		t.Errorf("got %d deck charts", len(v.DeckCharts))
	}
	if v.Winrates.Series[0].Points[0].Label != "A" {
		t.Errorf("first bar = %+v", v.Winrates.Series[0].Points[0])
	}
}

func TestCards_FilterSortAndCount(t *testing.T) {
	e := engine()
	snap := fixture()

	v := e.Cards(snap, NewRequest(PageCards))
	if v.Sort != (sorting.State{Key: "drawn_winrate", Direction: sorting.Desc}) {
		t.Errorf("default sort = %+v", v.Sort)
	}
	var order []string
	for _, r := range v.Rows {
		order = append(order, r.Name)
	}
	want := []string{"Grove Warden", "Ember Wolf", "Wolf Pact", "Sunlance"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if v.CountText != "Showing 4 of 4 cards" {
		t.Errorf("CountText = %q", v.CountText)
	}

	filtered := e.Cards(snap, NewRequest(PageCards).WithFaction("skaal").WithSearch("SPELL"))
	if filtered.Shown != 1 || filtered.Rows[0].Name != "Wolf Pact" {
		t.Errorf("filtered rows = %+v", filtered.Rows)
	}
	if filtered.CountText != "Showing 1 of 2 cards" || filtered.Total != 2 {
		t.Errorf("CountText = %q", filtered.CountText)
	}

	lucia := e.Cards(snap, NewRequest(PageCards).WithFaction("lucia"))
	if lucia.CountText != "Showing 1 of 1 cards" {
		t.Errorf("faction-only CountText = %q", lucia.CountText)
	}

	none := e.Cards(snap, NewRequest(PageCards).WithSearch("dragon"))
	if none.EmptyText != NoCardsText {
		t.Errorf("EmptyText = %q", none.EmptyText)
	}
}

func TestMeta_TrendSkipsInactiveFactions(t *testing.T) {
	v := engine().Meta(fixture(), NewRequest(PageMeta))
	var names []string
	for _, s := range v.Trend.Series {
		names = append(names, s.Name)
	}
	if !reflect.DeepEqual(names, []string{"Skaal", "Lucia"}) {
		t.Errorf("series = %v, want [Skaal Lucia]", names)
	}
	if v.Matrix.Size() != 2 {
		t.Errorf("matrix size = %d", v.Matrix.Size())
	}
}

func TestMulligan_SourcesAndOverview(t *testing.T) {
	e := engine()
	snap := fixture()

	v := e.Mulligan(snap, NewRequest(PageMulligan))
	if v.Overview.Games != 50 || v.Overview.Hands != 101 {
		t.Errorf("games/hands = %d/%d, want 50/101", v.Overview.Games, v.Overview.Hands)
	}
	if v.Overview.AvgKeepRate != "58.8%" {
		t.Errorf("AvgKeepRate = %q, want 58.8%%", v.Overview.AvgKeepRate)
	}
	if v.Overview.Best == nil || v.Overview.Best.Name != "Ember Wolf" || v.Overview.Best.Delta.Text != "+20.0%" {
		t.Errorf("Best = %+v", v.Overview.Best)
	}
	if !reflect.DeepEqual(v.Commanders, []string{"A"}) {
		t.Errorf("Commanders = %v", v.Commanders)
	}

	byName := map[string]MulliganRow{}
	for _, r := range v.Rows {
		byName[r.Name] = r
	}
	if byName["Unknown Relic"].Faction.Key != "neutral" {
		t.Errorf("unmatched card faction = %+v", byName["Unknown Relic"].Faction)
	}
	if byName["Unknown Relic"].Note != LowSampleText || byName["Unknown Relic"].WinrateDelta.Text != suppression.Placeholder {
		t.Errorf("low sample row = %+v", byName["Unknown Relic"])
	}

	sorted := e.Mulligan(snap, NewRequest(PageMulligan).WithSort(sorting.State{Key: "winrate_delta", Direction: sorting.Desc}))
	if last := sorted.Rows[len(sorted.Rows)-1]; last.Name != "Unknown Relic" {
		t.Errorf("suppressed row should sort last, got %s", last.Name)
	}

	scoped := e.Mulligan(snap, NewRequest(PageMulligan).WithCommander("A"))
	if len(scoped.Rows) != 1 || scoped.Rows[0].Name != "Wolf Pact" || scoped.Rows[0].Faction.Key != "skaal" {
		t.Errorf("scoped rows = %+v", scoped.Rows)
	}
	if scoped.Overview.Games != 6 {
		t.Errorf("scoped games = %d", scoped.Overview.Games)
	}

	if scoped.CountText != "Showing 1 of 1 cards for A" {
		t.Errorf("scoped CountText = %q", scoped.CountText)
	}

	missing := e.Mulligan(snap, NewRequest(PageMulligan).WithCommander("Nobody"))
	if len(missing.Rows) != 0 {
		t.Errorf("unknown commander should have no rows, got %d", len(missing.Rows))
	}
	if missing.EmptyText != NoMulliganText {
		t.Errorf("EmptyText = %q", missing.EmptyText)
	}
}

func TestMulligan_CountText(t *testing.T) {
	e := engine()
	snap := fixture()

	v := e.Mulligan(snap, NewRequest(PageMulligan))
	if v.CountText != "Showing 3 of 3 cards" || v.EmptyText != "" {
		t.Errorf("CountText/EmptyText = %q/%q", v.CountText, v.EmptyText)
	}

	searched := e.Mulligan(snap, NewRequest(PageMulligan).WithSearch("wolf"))
	if searched.CountText != "Showing 1 of 3 cards" {
		t.Errorf("searched CountText = %q", searched.CountText)
	}
}

func TestMulligan_WinratesGatedByOwnCounts(t *testing.T) {
	e := engine()
	snap := fixture()
	snap.MulliganStats = period.Bare([]models.MulliganStat{
		{Name: "Rarely Kept", TotalSeen: 20, KeptCount: 2, ReturnedCount: 18, KeepRate: f(0.1), KeepWinrate: f(0.9), ReturnWinrate: f(0.45)},
		{Name: "Rarely Returned", TotalSeen: 20, KeptCount: 17, ReturnedCount: 3, KeepRate: f(0.85), KeepWinrate: f(0.55), ReturnWinrate: f(0.2)},
	})

	byName := map[string]MulliganRow{}
	for _, r := range e.Mulligan(snap, NewRequest(PageMulligan)).Rows {
		byName[r.Name] = r
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"keep winrate over 2 kept hands", byName["Rarely Kept"].KeepWinrate.Text, suppression.Placeholder},
		{"return winrate over 18 returned hands", byName["Rarely Kept"].ReturnWinrate.Text, "45.0%"},
		{"keep rate over 20 seen", byName["Rarely Kept"].KeepRate.Text, "10.0%"},
		{"keep winrate over 17 kept hands", byName["Rarely Returned"].KeepWinrate.Text, "55.0%"},
		{"return winrate over 3 returned hands", byName["Rarely Returned"].ReturnWinrate.Text, suppression.Placeholder},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if byName["Rarely Kept"].Note != "" {
		t.Errorf("row seen 20 times should not carry a low sample note, got %q", byName["Rarely Kept"].Note)
	}
}

func TestBuckets(t *testing.T) {
	e := engine()
	v := e.Buckets(fixture(), NewRequest(PageDuration))

	if v.Title != "Win Rate by Game Duration" {
		t.Errorf("Title = %q", v.Title)
	}
	totals := map[string]int{}
	for _, r := range v.Table.Rows {
		totals[r.Name] = r.Total
	}
	if totals["A"] != 25 || totals["C"] != 40 || totals["B"] != 3 {
		t.Errorf("totals = %v", totals)
	}
	if v.Table.Rows[0].Name != "C" {
		t.Errorf("default order starts with %s", v.Table.Rows[0].Name)
	}

	lucia := e.Buckets(fixture(), NewRequest(PageDuration).WithFaction("lucia"))
	if len(lucia.Table.Rows) != 1 || lucia.Table.Rows[0].Name != "B" {
		t.Errorf("lucia rows = %+v", lucia.Table.Rows)
	}

	empty := e.Buckets(fixture(), NewRequest(PageTurns))
	if len(empty.Table.Rows) != 0 {
		t.Errorf("missing dataset rendered %d rows", len(empty.Table.Rows))
	}
}

func TestPlayers_Leaderboard(t *testing.T) {
	v := engine().Players(fixture(), NewRequest(PagePlayers))
	if len(v.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(v.Rows))
	}
	if v.Rows[0].Name != "ann" || v.Rows[0].Rank != 1 || v.Rows[0].Losses != 3 {
		t.Errorf("first = %+v", v.Rows[0])
	}
	if v.Rows[1].Name != "cy" || v.Rows[1].Winrate.Text != "40.0%" {
		t.Errorf("second = %+v", v.Rows[1])
	}
}

func TestHome(t *testing.T) {
	v := engine().Home(fixture(), NewRequest(PageHome))
	if v.Hero.Matches != "1,234 matches" || v.Hero.Players != "56 players" {
		t.Errorf("hero = %q / %q", v.Hero.Matches, v.Hero.Players)
	}
	if v.TopCommander == nil || v.TopCommander.Name != "C" {
		t.Errorf("TopCommander = %+v", v.TopCommander)
	}
	if v.BestWinrate == nil || v.BestWinrate.Name != "A" {
		t.Errorf("BestWinrate = %+v", v.BestWinrate)
	}
	if v.CardsTracked != 4 {
		t.Errorf("CardsTracked = %d", v.CardsTracked)
	}
	if len(v.Distributions) != 1 || v.Distributions[0].Empty() {
		t.Errorf("Distributions = %+v", v.Distributions)
	}
}

func TestSelectSort(t *testing.T) {
	e := engine()
	snap := fixture()

	req := NewRequest(PageCommanders)
	req = e.SelectSort(snap, req, "winrate")
	if req.Sort != (sorting.State{Key: "winrate", Direction: sorting.Asc}) {
		t.Errorf("first click on default column = %+v", req.Sort)
	}
	req = e.SelectSort(snap, req, "name")
	if req.Sort != (sorting.State{Key: "name", Direction: sorting.Asc}) {
		t.Errorf("name click = %+v", req.Sort)
	}

	bk := e.SelectSort(snap, NewRequest(PageDuration), bucket.BucketKey(1))
	if bk.Sort != (sorting.State{Key: "bucket:1", Direction: sorting.Desc}) {
		t.Errorf("bucket click = %+v", bk.Sort)
	}
}

func TestRequest_QueryRoundTrip(t *testing.T) {
	req := NewRequest(PageCards).
		WithPeriod("30d").
		WithFaction("skaal").
		WithSearch("wolf").
		WithSort(sorting.State{Key: "name", Direction: sorting.Asc})

	back := RequestFromQuery(PageCards, req.Query())
	if back != req {
		t.Errorf("round trip = %+v, want %+v", back, req)
	}

	def := RequestFromQuery(PageCards, url.Values{})
	if def.Period != period.AllTime || def.Faction != "all" {
		t.Errorf("defaults = %+v", def)
	}
	if req.Key() == def.Key() {
		t.Error("distinct requests share a key")
	}
}

func TestRequest_WithPageClearsSort(t *testing.T) {
	req := NewRequest(PageCards).WithSort(sorting.State{Key: "name"})
	if got := req.WithPage(PageCards).Sort.Key; got != "name" {
		t.Errorf("same page kept sort %q", got)
	}
	if got := req.WithPage(PagePlayers).Sort.Key; got != "" {
		t.Errorf("new page sort = %q", got)
	}
}

func TestParsePage(t *testing.T) {
	if p, err := ParsePage("meta"); err != nil || p != PageMeta {
		t.Errorf("ParsePage(meta) = %v, %v", p, err)
	}
	if _, err := ParsePage("admin"); !errors.Is(err, ErrUnknownPage) {
		t.Errorf("ParsePage(admin) err = %v", err)
	}
}
