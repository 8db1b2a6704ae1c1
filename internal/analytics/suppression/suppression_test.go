package suppression

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestIsReliable_InclusiveThreshold(t *testing.T) {
	p := DefaultPolicy()
	for n, want := range map[int]bool{0: false, 4: false, 5: true, 6: true} {
		if got := p.IsReliable(n); got != want {
			t.Errorf("IsReliable(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		rate    float64
		general Band
		matchup Band
	}{
		{0.60, Favorable, Favorable},
		{0.53, Favorable, Neutral},
		{0.52, Neutral, Neutral},
		{0.50, Neutral, Neutral},
		{0.48, Neutral, Neutral},
		{0.47, Unfavorable, Neutral},
		{0.45, Unfavorable, Neutral},
		{0.44, Unfavorable, Unfavorable},
	}
	for _, tt := range tests {
		if got := p.Classify(tt.rate); got != tt.general {
			t.Errorf("Classify(%v) = %s, want %s", tt.rate, got, tt.general)
		}
		if got := p.ClassifyMatchup(tt.rate); got != tt.matchup {
			t.Errorf("ClassifyMatchup(%v) = %s, want %s", tt.rate, got, tt.matchup)
		}
	}
}

func TestFormatRate(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name       string
		rate       *float64
		samples    int
		wantText   string
		suppressed bool
	}{
		{"reliable", ptr(0.6), 10, "60.0%", false},
		{"below threshold", ptr(1.0), 3, Placeholder, true},
		{"nil rate", nil, 50, Placeholder, true},
		{"exact threshold", ptr(0.4), 5, "40.0%", false},
		{"rounds to one decimal", ptr(2.0 / 3.0), 9, "66.7%", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := p.FormatRate(tt.rate, tt.samples)
			if c.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", c.Text, tt.wantText)
			}
			if c.Suppressed != tt.suppressed {
				t.Errorf("Suppressed = %v, want %v", c.Suppressed, tt.suppressed)
			}
		})
	}
}

func TestFormatRate_MatchesWinsOverTotal(t *testing.T) {
	p := DefaultPolicy()
	for total := p.Threshold; total < 40; total++ {
		for wins := 0; wins <= total; wins++ {
			rate := float64(wins) / float64(total)
			c := p.FormatRate(&rate, total)
			want := math.Round(rate*100*10) / 10
			if c.Percent == nil || *c.Percent != want {
				t.Fatalf("wins=%d total=%d: percent %v, want %v", wins, total, c.Percent, want)
			}
		}
	}
}

func TestFormatDelta(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		delta *float64
		n     int
		text  string
		band  Band
	}{
		{ptr(0.032), 10, "+3.2%", Favorable},
		{ptr(-0.015), 10, "-1.5%", Unfavorable},
		{ptr(0), 10, "0.0%", Neutral},
		{ptr(0.2), 2, Placeholder, None},
	}
	for _, tt := range tests {
		c := p.FormatDelta(tt.delta, tt.n)
		if c.Text != tt.text || c.Band != tt.band {
			t.Errorf("FormatDelta(%v, %d) = %q/%q, want %q/%q", *tt.delta, tt.n, c.Text, c.Band, tt.text, tt.band)
		}
	}
}

func TestFormatShare_Unclassified(t *testing.T) {
	c := DefaultPolicy().FormatShare(ptr(0.9), 20)
	if c.Band != None {
		t.Errorf("Band = %q, want none", c.Band)
	}
	if c.Text != "90.0%" {
		t.Errorf("Text = %q", c.Text)
	}
}
