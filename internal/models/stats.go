// Package models defines the shapes of the precomputed aggregate files the
// analytics engine reads.
package models

// Metadata summarizes the dataset as a whole.
type Metadata struct {
	TotalMatches int    `json:"total_matches"`
	TotalPlayers int    `json:"total_players"`
	LastUpdated  string `json:"last_updated"`
}

// CommanderStat is the aggregate record for one commander.
type CommanderStat struct {
	Name    string   `json:"name"`
	Faction string   `json:"faction"`
	Matches int      `json:"matches"`
	Wins    int      `json:"wins"`
	Losses  int      `json:"losses,omitempty"`
	Winrate *float64 `json:"winrate"`
}

// Rate returns the stored win rate, deriving wins/matches when the field is absent.
func (c CommanderStat) Rate() *float64 {
	if c.Winrate != nil {
		return c.Winrate
	}
	return Ratio(c.Wins, c.Matches)
}

// CardStat is the aggregate record for one card. Deck, drawn and played
// figures are independent; any of them may be missing for a card.
type CardStat struct {
	Name    string `json:"name"`
	Faction string `json:"faction"`
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`

	DeckRate    *float64 `json:"deck_rate"`
	DeckWinrate *float64 `json:"deck_winrate"`
	DeckCount   int      `json:"deck_count"`

	DrawnRate    *float64 `json:"drawn_rate"`
	DrawnWinrate *float64 `json:"drawn_winrate"`
	DrawnCount   int      `json:"drawn_count"`

	PlayedRate    *float64 `json:"played_rate"`
	PlayedWinrate *float64 `json:"played_winrate"`
	PlayedCount   int      `json:"played_count"`
}

// MulliganStat is the keep/return record for one card in opening hands.
type MulliganStat struct {
	Name          string   `json:"name"`
	TotalSeen     int      `json:"total_seen"`
	KeptCount     int      `json:"kept_count"`
	ReturnedCount int      `json:"returned_count"`
	KeepRate      *float64 `json:"keep_rate"`
	KeepWinrate   *float64 `json:"keep_winrate"`
	ReturnWinrate *float64 `json:"return_winrate"`
	WinrateDelta  *float64 `json:"winrate_delta"`
	NormKeepDelta *float64 `json:"norm_keep_delta"`
	MulliganGames int      `json:"mulligan_games"`
}

// PlayerStat is one leaderboard entry.
type PlayerStat struct {
	Name    string   `json:"name"`
	Games   int      `json:"games"`
	Wins    int      `json:"wins"`
	Winrate *float64 `json:"winrate"`
}

// CommanderInfo carries presentation details for a commander.
type CommanderInfo struct {
	Name    string `json:"name"`
	Faction string `json:"faction"`
	Art     string `json:"art,omitempty"`
}

// DeckComposition is the average deck shape for one commander.
type DeckComposition struct {
	Faction         string  `json:"faction"`
	DeckCount       int     `json:"deck_count"`
	AvgCost         float64 `json:"avg_cost"`
	AvgMinionCount  float64 `json:"avg_minion_count"`
	AvgSpellCount   float64 `json:"avg_spell_count"`
	AvgPatronCards  float64 `json:"avg_patron_cards"`
	AvgNeutralCards float64 `json:"avg_neutral_cards"`
	AvgOtherCards   float64 `json:"avg_other_cards"`
}

// Distribution is a labelled histogram.
type Distribution struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// GameDistributions groups the game-length histograms.
type GameDistributions struct {
	Duration *Distribution `json:"duration,omitempty"`
	Turns    *Distribution `json:"turns,omitempty"`
	Actions  *Distribution `json:"actions,omitempty"`
}

// Trends holds faction share time series aligned to Dates.
type Trends struct {
	Dates    []string             `json:"dates"`
	Factions map[string][]float64 `json:"factions"`
}

// Ratio returns wins/total, or nil when total is not positive.
func Ratio(wins, total int) *float64 {
	if total <= 0 {
		return nil
	}
	r := float64(wins) / float64(total)
	return &r
}
