// Package suppression decides whether a rate is reliable enough to show and
// how to classify and format it.
package suppression

import (
	"math"
	"strconv"
)

// Placeholder is displayed in place of a suppressed value.
const Placeholder = "--"

// DefaultThreshold is the minimum inclusive sample count for a reliable rate.
const DefaultThreshold = 5

// Band classifies a rate relative to parity.
type Band string

const (
	Favorable   Band = "favorable"
	Neutral     Band = "neutral"
	Unfavorable Band = "unfavorable"
	// None marks a suppressed or missing value.
	None Band = ""
)

// Bands holds the strict classification cut-offs. Rates strictly above High
// are favorable, strictly below Low unfavorable.
type Bands struct {
	High float64 `toml:"high" json:"high"`
	Low  float64 `toml:"low" json:"low"`
}

// Classify places rate into a band.
func (b Bands) Classify(rate float64) Band {
	switch {
	case rate > b.High:
		return Favorable
	case rate < b.Low:
		return Unfavorable
	default:
		return Neutral
	}
}

// Policy is the shared reliability and classification rule set.
type Policy struct {
	Threshold int
	General   Bands
	Matchup   Bands
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		Threshold: DefaultThreshold,
		General:   Bands{High: 0.52, Low: 0.48},
		Matchup:   Bands{High: 0.55, Low: 0.45},
	}
}

// IsReliable reports whether n samples meet the threshold.
func (p Policy) IsReliable(n int) bool {
	return n >= p.Threshold
}

// Classify applies the general bands.
func (p Policy) Classify(rate float64) Band {
	return p.General.Classify(rate)
}

// ClassifyMatchup applies the wider matchup bands.
func (p Policy) ClassifyMatchup(rate float64) Band {
	return p.Matchup.Classify(rate)
}

// Cell is a formatted rate ready for display.
type Cell struct {
	Text       string   `json:"text"`
	Percent    *float64 `json:"percent,omitempty"`
	Band       Band     `json:"band,omitempty"`
	Samples    int      `json:"samples"`
	Suppressed bool     `json:"suppressed"`
}

// FormatRate formats rate as a one-decimal percentage classified by the
// general bands, or the placeholder when samples are insufficient or the
// rate is missing.
func (p Policy) FormatRate(rate *float64, samples int) Cell {
	if rate == nil || !p.IsReliable(samples) {
		return Cell{Text: Placeholder, Samples: samples, Suppressed: true}
	}
	pct := Percent(*rate)
	return Cell{
		Text:    FormatPercent(pct, 1),
		Percent: &pct,
		Band:    p.Classify(*rate),
		Samples: samples,
	}
}

// FormatShare formats a rate that is not a win rate (pick or keep rates).
// It is suppressed the same way but never classified.
func (p Policy) FormatShare(rate *float64, samples int) Cell {
	c := p.FormatRate(rate, samples)
	c.Band = None
	return c
}

// FormatDelta formats a signed rate difference, classified by sign.
func (p Policy) FormatDelta(delta *float64, samples int) Cell {
	if delta == nil || !p.IsReliable(samples) {
		return Cell{Text: Placeholder, Samples: samples, Suppressed: true}
	}
	pct := Percent(*delta)
	c := Cell{Percent: &pct, Samples: samples, Band: Neutral}
	switch {
	case pct > 0:
		c.Text = "+" + FormatPercent(pct, 1)
		c.Band = Favorable
	case pct < 0:
		c.Text = FormatPercent(pct, 1)
		c.Band = Unfavorable
	default:
		c.Text = FormatPercent(0, 1)
	}
	return c
}

// Percent converts a [0,1] rate to a percentage rounded to one decimal.
func Percent(rate float64) float64 {
	return Round(rate*100, 1)
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// FormatPercent renders pct with a fixed number of decimals and a % suffix.
func FormatPercent(pct float64, decimals int) string {
	return strconv.FormatFloat(Round(pct, decimals), 'f', decimals, 64) + "%"
}
