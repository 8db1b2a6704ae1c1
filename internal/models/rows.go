package models

// FilterFaction returns the commander's faction key.
func (c CommanderStat) FilterFaction() string { return c.Faction }

// SearchFields returns the commander name.
func (c CommanderStat) SearchFields() []string { return []string{c.Name} }

// FilterFaction returns the card's faction key.
func (c CardStat) FilterFaction() string { return c.Faction }

// SearchFields returns name, type and subtype.
func (c CardStat) SearchFields() []string {
	if c.Subtype == "" {
		return []string{c.Name, c.Type}
	}
	return []string{c.Name, c.Type, c.Subtype}
}

// FilterFaction is empty; players have no faction.
func (p PlayerStat) FilterFaction() string { return "" }

// SearchFields returns the player name.
func (p PlayerStat) SearchFields() []string { return []string{p.Name} }
