package session

import (
	"testing"
	"time"

	"github.com/RossFW/atlas-conquest/internal/analytics/period"
	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

func rate(v float64) *float64 { return &v }

func newStore() *dataset.Store {
	s := dataset.NewStore()
	s.Swap(&dataset.Snapshot{
		CardStats: period.Bare([]models.CardStat{
			{Name: "Ember Wolf", Faction: "skaal", Type: "Minion", DrawnWinrate: rate(0.55), DrawnCount: 20},
			{Name: "Sunlance", Faction: "lucia", Type: "Spell", DrawnWinrate: rate(0.6), DrawnCount: 30},
			{Name: "Wolf Pact", Faction: "skaal", Type: "Spell", DrawnWinrate: rate(0.5), DrawnCount: 12},
		}),
	})
	return s
}

type recorder struct {
	models chan view.Model
}

func newRecorder() *recorder {
	return &recorder{models: make(chan view.Model, 16)}
}

func (r *recorder) onRender(m view.Model, err error) {
	if err == nil {
		r.models <- m
	}
}

func (r *recorder) next(t *testing.T) view.Model {
	t.Helper()
	select {
	case m := <-r.models:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for render")
		return nil
	}
}

func (r *recorder) quiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case m := <-r.models:
		t.Errorf("unexpected render: %+v", m.Base().Request)
	case <-time.After(d):
	}
}

func TestController_SelectorsRenderImmediately(t *testing.T) {
	rec := newRecorder()
	c := New(view.NewEngine(view.DefaultConfig()), newStore(), view.NewRequest(view.PageCards), Config{OnRender: rec.onRender})
	defer c.Close()

	m, err := c.SetFaction("skaal")
	if err != nil {
		t.Fatalf("SetFaction: %v", err)
	}
	cards := m.(*view.CardsView)
	if cards.Shown != 2 {
		t.Errorf("Shown = %d, want 2", cards.Shown)
	}
	if got := rec.next(t); got.Base().Request.Faction != "skaal" {
		t.Errorf("callback request = %+v", got.Base().Request)
	}

	m, _ = c.SelectSort("name")
	if m.(*view.CardsView).Rows[0].Name != "Ember Wolf" {
		t.Errorf("first row after name sort = %s", m.(*view.CardsView).Rows[0].Name)
	}
	rec.next(t)

	m, _ = c.SetPage(view.PagePlayers)
	if m.Base().Request.Sort.Key != "" {
		t.Errorf("sort carried across pages: %+v", m.Base().Request.Sort)
	}
	rec.next(t)
}

func TestController_SearchDebounce(t *testing.T) {
	rec := newRecorder()
	c := New(view.NewEngine(view.DefaultConfig()), newStore(), view.NewRequest(view.PageCards), Config{
		SearchDebounce: 30 * time.Millisecond,
		OnRender:       rec.onRender,
	})
	defer c.Close()

	c.Search("w")
	c.Search("wo")
	c.Search("wolf")

	m := rec.next(t)
	if m.Base().Request.Search != "wolf" {
		t.Errorf("rendered search = %q, want wolf", m.Base().Request.Search)
	}
	if got := m.(*view.CardsView).Shown; got != 2 {
		t.Errorf("Shown = %d, want 2", got)
	}
	rec.quiet(t, 100*time.Millisecond)

	if c.Request().Search != "wolf" {
		t.Errorf("request search = %q", c.Request().Search)
	}
}

func TestController_SearchLandsOnLatestSelectors(t *testing.T) {
	rec := newRecorder()
	c := New(view.NewEngine(view.DefaultConfig()), newStore(), view.NewRequest(view.PageCards), Config{
		SearchDebounce: 30 * time.Millisecond,
		OnRender:       rec.onRender,
	})
	defer c.Close()

	c.Search("spell")
	if _, err := c.SetFaction("skaal"); err != nil {
		t.Fatal(err)
	}
	rec.next(t)

	m := rec.next(t)
	req := m.Base().Request
	if req.Search != "spell" || req.Faction != "skaal" {
		t.Errorf("request = %+v", req)
	}
	if got := m.(*view.CardsView).Shown; got != 1 {
		t.Errorf("Shown = %d, want 1", got)
	}
}

func TestController_ReplaceDropsPendingSearch(t *testing.T) {
	rec := newRecorder()
	c := New(view.NewEngine(view.DefaultConfig()), newStore(), view.NewRequest(view.PageCards), Config{
		SearchDebounce: 30 * time.Millisecond,
		OnRender:       rec.onRender,
	})
	defer c.Close()

	c.Search("ember")
	saved := view.NewRequest(view.PageCards).WithFaction("lucia")
	if _, err := c.Replace(saved); err != nil {
		t.Fatal(err)
	}
	rec.next(t)
	rec.quiet(t, 100*time.Millisecond)

	if c.Request() != saved {
		t.Errorf("request = %+v, want %+v", c.Request(), saved)
	}
}

func TestController_RerendersOnSwap(t *testing.T) {
	rec := newRecorder()
	store := newStore()
	c := New(view.NewEngine(view.DefaultConfig()), store, view.NewRequest(view.PageCards), Config{OnRender: rec.onRender})

	store.Swap(&dataset.Snapshot{})
	m := rec.next(t)
	if m.Base().Version != 2 {
		t.Errorf("Version = %d, want 2", m.Base().Version)
	}
	if m.(*view.CardsView).EmptyText != view.NoCardsText {
		t.Errorf("expected empty cards view after swap")
	}

	c.Close()
	store.Swap(&dataset.Snapshot{})
	rec.quiet(t, 50*time.Millisecond)
}

func TestController_UnknownPage(t *testing.T) {
	c := New(view.NewEngine(view.DefaultConfig()), newStore(), view.NewRequest(view.PageCards), Config{})
	defer c.Close()

	if _, err := c.SetPage("admin"); err == nil {
		t.Error("expected error for unknown page")
	}
}
