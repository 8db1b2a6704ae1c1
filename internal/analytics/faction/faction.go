// Package faction defines the closed set of factions and their palettes.
package faction

import (
	"fmt"
	"strings"
)

// Faction identifies one of the game's factions.
type Faction uint8

const (
	Unknown Faction = iota
	Skaal
	Grenalia
	Lucia
	Neutral
	Shadis
	Archaeon

	count
)

var keys = [count]string{
	Unknown:  "unknown",
	Skaal:    "skaal",
	Grenalia: "grenalia",
	Lucia:    "lucia",
	Neutral:  "neutral",
	Shadis:   "shadis",
	Archaeon: "archaeon",
}

var labels = [count]string{
	Unknown:  "Unknown",
	Skaal:    "Skaal",
	Grenalia: "Grenalia",
	Lucia:    "Lucia",
	Neutral:  "Neutral",
	Shadis:   "Shadis",
	Archaeon: "Archaeon",
}

// All returns every known faction in display order, excluding Unknown.
func All() []Faction {
	out := make([]Faction, 0, count-1)
	for f := Skaal; f < count; f++ {
		out = append(out, f)
	}
	return out
}

// Parse maps a data key to a faction. Unrecognized keys yield Unknown.
func Parse(s string) (Faction, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f := Skaal; f < count; f++ {
		if keys[f] == s {
			return f, true
		}
	}
	return Unknown, false
}

// Key returns the data key, e.g. "skaal".
func (f Faction) Key() string {
	if f >= count {
		return keys[Unknown]
	}
	return keys[f]
}

// Label returns the display label, e.g. "Skaal".
func (f Faction) Label() string {
	if f >= count {
		return labels[Unknown]
	}
	return labels[f]
}

func (f Faction) String() string {
	return f.Key()
}

// MarshalText encodes the faction as its data key.
func (f Faction) MarshalText() ([]byte, error) {
	return []byte(f.Key()), nil
}

// Scheme selects which faction palette is active.
type Scheme string

const (
	SchemeSix  Scheme = "six"
	SchemeFour Scheme = "four"
)

// ParseScheme validates a scheme name.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeSix, SchemeFour:
		return Scheme(s), nil
	default:
		return "", fmt.Errorf("unknown faction scheme %q", s)
	}
}
