package models

// MatchupRecord is the directional head-to-head record of Commander
// against Opponent. The reverse direction is a separate record.
type MatchupRecord struct {
	Commander string   `json:"commander"`
	Opponent  string   `json:"opponent"`
	Wins      int      `json:"wins"`
	Losses    int      `json:"losses"`
	Total     int      `json:"total"`
	Winrate   *float64 `json:"winrate,omitempty"`
}

// Rate is wins/total; nil when the record has no games.
func (r MatchupRecord) Rate() *float64 {
	return Ratio(r.Wins, r.Total)
}

// Matchups is the matchup resource: the canonical commander ordering
// plus the list of directional records.
type Matchups struct {
	Commanders []string        `json:"commanders"`
	Matchups   []MatchupRecord `json:"matchups"`
}

// BucketCell is one commander's result inside one bucket.
type BucketCell struct {
	Games   int      `json:"games"`
	Winrate *float64 `json:"winrate"`
}

// BucketSeries holds per-commander results over shared ordered bucket labels.
type BucketSeries struct {
	Buckets    []string                `json:"buckets"`
	Commanders map[string][]BucketCell `json:"commanders"`
}
