package faction

// Palette maps every faction to a display colour and lists the factions a
// scheme offers as filter options.
type Palette struct {
	scheme  Scheme
	colors  [count]string
	members []Faction
}

var sixColors = [count]string{
	Unknown:  "#888888",
	Skaal:    "#D55E00",
	Grenalia: "#009E73",
	Lucia:    "#E8B630",
	Neutral:  "#A89078",
	Shadis:   "#4A4A5A",
	Archaeon: "#0072B2",
}

// NewPalette returns the palette for scheme. An unrecognized scheme gets
// the six-faction palette.
func NewPalette(scheme Scheme) *Palette {
	p := &Palette{scheme: scheme, colors: sixColors}
	switch scheme {
	case SchemeFour:
		p.members = []Faction{Skaal, Grenalia, Lucia, Neutral}
	default:
		p.scheme = SchemeSix
		p.members = All()
	}
	return p
}

// Scheme returns the active scheme.
func (p *Palette) Scheme() Scheme {
	return p.scheme
}

// Members returns the factions offered by the scheme, in display order.
func (p *Palette) Members() []Faction {
	out := make([]Faction, len(p.members))
	copy(out, p.members)
	return out
}

// Contains reports whether the scheme offers f.
func (p *Palette) Contains(f Faction) bool {
	for _, m := range p.members {
		if m == f {
			return true
		}
	}
	return false
}

// Color returns the colour for f. Factions outside the scheme are drawn
// as Unknown.
func (p *Palette) Color(f Faction) string {
	if !p.Contains(f) {
		return p.colors[Unknown]
	}
	return p.colors[f]
}

// ColorOf returns the colour for a raw data key.
func (p *Palette) ColorOf(key string) string {
	f, _ := Parse(key)
	return p.Color(f)
}

// Badge is the presentation of a faction tag on a row.
type Badge struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Badge builds the badge for a raw data key. Unknown keys, and keys the
// scheme does not offer, keep their raw text as the label.
func (p *Palette) Badge(key string) Badge {
	f, ok := Parse(key)
	if !ok || !p.Contains(f) {
		label := key
		if label == "" {
			label = f.Label()
		}
		return Badge{Key: key, Label: label, Color: p.Color(Unknown)}
	}
	return Badge{Key: f.Key(), Label: f.Label(), Color: p.Color(f)}
}
