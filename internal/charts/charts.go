// Package charts renders view model series as interactive HTML charts.
package charts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/RossFW/atlas-conquest/internal/analytics/matchup"
	"github.com/RossFW/atlas-conquest/internal/analytics/view"
)

// ErrNoCharts is returned when a view has nothing to draw.
var ErrNoCharts = errors.New("view has no charts")

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Overrides the chart's own title when set
	Subtitle   string   // Chart subtitle
	YAxisLabel string   // Overrides the chart's Y-axis label when set
	XAxisLabel string   // X-axis label
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Smooth     bool     // Smooth line (for line charts)
	Colors     []string // Series colors used when a series has none
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Smooth:     true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// Chart is a renderable echarts chart.
type Chart interface {
	components.Charter
	Render(w io.Writer) error
}

// Build converts a view chart into an echarts chart.
func Build(c view.Chart, config ChartConfig) (Chart, error) {
	global := globalOptions(c, config)

	switch c.Kind {
	case view.ChartBar, view.ChartStackedBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(c.Labels)
		for i, s := range c.Series {
			seriesOpts := []charts.SeriesOpts{
				charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: seriesColor(s, i, config)}),
			}
			if c.Kind == view.ChartStackedBar {
				seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
			}
			bar.AddSeries(s.Name, barData(s), seriesOpts...)
		}
		return bar, nil

	case view.ChartLine, view.ChartStackedArea:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(c.Labels)
		for i, s := range c.Series {
			lineOpts := opts.LineChart{Smooth: opts.Bool(config.Smooth)}
			seriesOpts := []charts.SeriesOpts{
				charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: seriesColor(s, i, config)}),
			}
			if c.Kind == view.ChartStackedArea {
				lineOpts.Stack = "total"
				seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.7)}))
			}
			seriesOpts = append(seriesOpts, charts.WithLineChartOpts(lineOpts))
			line.AddSeries(s.Name, lineData(s), seriesOpts...)
		}
		return line, nil

	default:
		return nil, fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
}

// Heatmap draws a matchup matrix. Rows are the commander, columns the
// opponent; suppressed cells are left blank.
func Heatmap(m *matchup.Matrix, config ChartConfig) Chart {
	names := make([]string, len(m.Headers))
	for i, h := range m.Headers {
		names[i] = h.Short
	}

	var data []opts.HeatMapData
	for i, row := range m.Rows {
		for j, cell := range row {
			var v any = "-"
			if cell.State == matchup.Reliable && cell.Percent != nil {
				v = *cell.Percent
			}
			data = append(data, opts.HeatMapData{
				Name:  cell.Row + " vs " + cell.Col,
				Value: [3]any{j, i, v},
			})
		}
	}

	title := config.Title
	if title == "" {
		title = "Matchups"
	}
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: config.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: names, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: names, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        30,
			Max:        70,
			InRange:    &opts.VisualMapInRange{Color: []string{"#d73027", "#f7f7f7", "#1a9850"}},
		}),
	)
	hm.SetXAxis(names).AddSeries("Win Rate", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return hm
}

// Collect builds every chart a rendered view carries, including its
// matchup matrix.
func Collect(m view.Model, config ChartConfig) ([]Chart, error) {
	list, matrix := chartsOf(m)

	var out []Chart
	for _, c := range list {
		if c.Empty() {
			continue
		}
		built, err := Build(c, config)
		if err != nil {
			return nil, fmt.Errorf("build chart %s: %w", c.ID, err)
		}
		out = append(out, built)
	}
	if matrix != nil && matrix.Size() > 0 {
		out = append(out, Heatmap(matrix, config))
	}
	if len(out) == 0 {
		return nil, ErrNoCharts
	}
	return out, nil
}

func chartsOf(m view.Model) ([]view.Chart, *matchup.Matrix) {
	switch v := m.(type) {
	case *view.HomeView:
		return v.Distributions, nil
	case *view.CommandersView:
		return append([]view.Chart{v.Winrates}, v.DeckCharts...), v.Matrix
	case *view.MetaView:
		return []view.Chart{v.Trend}, v.Matrix
	case *view.BucketView:
		return []view.Chart{v.Chart}, nil
	default:
		return nil, nil
	}
}

// Render writes every chart of a view as one HTML page.
func Render(w io.Writer, m view.Model, config ChartConfig) error {
	list, err := Collect(m, config)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.SetPageTitle("Atlas Conquest - " + string(m.Base().Page))
	for _, c := range list {
		page.AddCharts(c)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}

// RenderFile writes every chart of a view to outputPath.
func RenderFile(m view.Model, config ChartConfig, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return Render(f, m, config)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func globalOptions(c view.Chart, config ChartConfig) []charts.GlobalOpts {
	title := c.Title
	if config.Title != "" {
		title = config.Title
	}
	yName := c.YAxis
	if config.YAxisLabel != "" {
		yName = config.YAxisLabel
	}
	trigger := "axis"
	if c.Kind == view.ChartBar && len(c.Series) == 1 {
		trigger = "item"
	}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: trigger,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend && len(c.Series) > 1),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: config.XAxisLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	}
}

func seriesColor(s view.Series, i int, config ChartConfig) string {
	if s.Color != "" {
		return s.Color
	}
	if len(config.Colors) == 0 {
		return ""
	}
	return config.Colors[i%len(config.Colors)]
}

// Missing values render as gaps.
func point(p view.Point) any {
	if p.Value == nil {
		return "-"
	}
	return *p.Value
}

func barData(s view.Series) []opts.BarData {
	out := make([]opts.BarData, len(s.Points))
	for i, p := range s.Points {
		out[i] = opts.BarData{Name: p.Label, Value: point(p)}
		if p.Color != "" {
			out[i].ItemStyle = &opts.ItemStyle{Color: p.Color}
		}
	}
	return out
}

func lineData(s view.Series) []opts.LineData {
	out := make([]opts.LineData, len(s.Points))
	for i, p := range s.Points {
		out[i] = opts.LineData{Name: p.Label, Value: point(p)}
	}
	return out
}
