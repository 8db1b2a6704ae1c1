package view

// ChartKind tells a renderer how to draw a chart.
type ChartKind string

const (
	ChartBar         ChartKind = "bar"
	ChartStackedBar  ChartKind = "stacked_bar"
	ChartLine        ChartKind = "line"
	ChartStackedArea ChartKind = "stacked_area"
)

// Point is one labelled value. A nil value is a gap.
type Point struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
	Color string   `json:"color,omitempty"`
}

// Series is one named data series.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
	Points []Point `json:"points"`
}

// Chart is renderer-agnostic chart data.
type Chart struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	YAxis  string    `json:"y_axis,omitempty"`
	Labels []string  `json:"labels"`
	Series []Series  `json:"series"`
}

// Empty reports whether the chart has nothing to draw.
func (c Chart) Empty() bool {
	for _, s := range c.Series {
		for _, p := range s.Points {
			if p.Value != nil {
				return false
			}
		}
	}
	return true
}

func value(v float64) *float64 { return &v }
