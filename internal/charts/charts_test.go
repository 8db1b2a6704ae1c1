package charts

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RossFW/atlas-conquest/internal/analytics/matchup"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/models"
)

func v(f float64) *float64 { return &f }

func sampleChart(kind view.ChartKind) view.Chart {
	return view.Chart{
		ID:     "sample",
		Title:  "Sample Chart",
		Kind:   kind,
		YAxis:  "Win Rate (%)",
		Labels: []string{"Jan", "Feb", "Mar"},
		Series: []view.Series{
			{Name: "Skaal", Color: "#D55E00", Points: []view.Point{{Label: "Jan", Value: v(40)}, {Label: "Feb"}, {Label: "Mar", Value: v(45)}}},
			{Name: "Lucia", Points: []view.Point{{Label: "Jan", Value: v(60)}, {Label: "Feb", Value: v(55)}, {Label: "Mar", Value: v(55)}}},
		},
	}
}

func TestBuild_AllKinds(t *testing.T) {
	kinds := []view.ChartKind{view.ChartBar, view.ChartStackedBar, view.ChartLine, view.ChartStackedArea}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			c, err := Build(sampleChart(kind), DefaultChartConfig())
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			var buf bytes.Buffer
			if err := c.Render(&buf); err != nil {
				t.Fatalf("Render: %v", err)
			}
			html := buf.String()
			for _, want := range []string{"Sample Chart", "Skaal", "Lucia", "#D55E00"} {
				if !strings.Contains(html, want) {
					t.Errorf("output missing %q", want)
				}
			}
		})
	}
}

func TestBuild_UnknownKind(t *testing.T) {
	if _, err := Build(sampleChart("pie"), DefaultChartConfig()); err == nil {
		t.Error("expected error for unsupported kind")
	}
}

func TestRender_CommandersPageIncludesHeatmap(t *testing.T) {
	policy := suppression.DefaultPolicy()
	m := &view.CommandersView{
		Common:   view.Common{Page: view.PageCommanders},
		Winrates: sampleChart(view.ChartBar),
		Matrix: matchup.Build([]string{"Elder Thorn", "Vex"}, []models.MatchupRecord{
			{Commander: "Elder Thorn", Opponent: "Vex", Wins: 6, Losses: 4, Total: 10},
		}, policy),
	}

	var buf bytes.Buffer
	if err := Render(&buf, m, DefaultChartConfig()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "heatmap") {
		t.Error("expected heatmap series in output")
	}
	if !strings.Contains(html, "Matchups") {
		t.Error("expected matchup title in output")
	}
}

func TestRender_NoCharts(t *testing.T) {
	err := Render(&bytes.Buffer{}, &view.CardsView{}, DefaultChartConfig())
	if !errors.Is(err, ErrNoCharts) {
		t.Errorf("err = %v, want ErrNoCharts", err)
	}

	empty := &view.BucketView{Chart: view.Chart{Kind: view.ChartLine}}
	if err := Render(&bytes.Buffer{}, empty, DefaultChartConfig()); !errors.Is(err, ErrNoCharts) {
		t.Errorf("empty chart err = %v, want ErrNoCharts", err)
	}
}

func TestRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "meta.html")
	m := &view.MetaView{Common: view.Common{Page: view.PageMeta}, Trend: sampleChart(view.ChartStackedArea)}

	if err := RenderFile(m, DefaultChartConfig(), path); err != nil {
		t.Fatalf("RenderFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("chart file is empty")
	}
}
