package filter

import (
	"reflect"
	"testing"
)

type card struct {
	name, faction, kind, subtype string
}

func (c card) FilterFaction() string  { return c.faction }
func (c card) SearchFields() []string { return []string{c.name, c.kind, c.subtype} }

var deck = []card{
	{"Ember Wolf", "skaal", "Minion", "Beast"},
	{"Grove Warden", "grenalia", "Minion", "Treant"},
	{"Sunlance", "lucia", "Spell", "Holy"},
	{"Wolf Pact", "skaal", "Spell", "Ritual"},
	{"Wandering Trader", "neutral", "Minion", "Human"},
}

func names(rows []card) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		st   State
		want []string
	}{
		{"all passes everything", DefaultState(), names(deck)},
		{"empty faction passes everything", State{}, names(deck)},
		{"faction exact match", State{Faction: "skaal"}, []string{"Ember Wolf", "Wolf Pact"}},
		{"faction is case sensitive", State{Faction: "Skaal"}, []string{}},
		{"search name ignores case", State{Search: "WOLF"}, []string{"Ember Wolf", "Wolf Pact"}},
		{"search matches type", State{Search: "spell"}, []string{"Sunlance", "Wolf Pact"}},
		{"search matches subtype", State{Search: "treant"}, []string{"Grove Warden"}},
		{"whitespace search is no-op", State{Search: "   "}, names(deck)},
		{"filters are ANDed", State{Faction: "skaal", Search: "spell"}, []string{"Wolf Pact"}},
		{"nothing matches", State{Search: "dragon"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Apply(deck, tt.st))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_OrderIndependent(t *testing.T) {
	factionFirst := BySearch(ByFaction(deck, "skaal"), "spell")
	searchFirst := ByFaction(BySearch(deck, "spell"), "skaal")
	combined := Apply(deck, State{Faction: "skaal", Search: "spell"})

	if !reflect.DeepEqual(factionFirst, searchFirst) {
		t.Errorf("faction→search %v != search→faction %v", names(factionFirst), names(searchFirst))
	}
	if !reflect.DeepEqual(factionFirst, combined) {
		t.Errorf("sequential %v != combined %v", names(factionFirst), names(combined))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := append([]card(nil), deck...)
	_ = Apply(in, State{Faction: "lucia"})
	if !reflect.DeepEqual(in, deck) {
		t.Error("Apply modified its input")
	}
}

func TestScoped_Source(t *testing.T) {
	s := Scoped[card]{
		Global: deck,
		ByCommander: map[string][]card{
			"Vex": {{"Ember Wolf", "skaal", "Minion", "Beast"}},
		},
	}

	if got := s.Source(All); len(got) != len(deck) {
		t.Errorf("Source(all) returned %d rows, want %d", len(got), len(deck))
	}
	if got := s.Source("Vex"); len(got) != 1 {
		t.Errorf("Source(Vex) returned %d rows, want 1", len(got))
	}
	if got := s.Source("Nobody"); len(got) != 0 {
		t.Errorf("Source(Nobody) returned %d rows, want 0", len(got))
	}
}
