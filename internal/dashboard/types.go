package dashboard

import (
	"avrcli/pkg/contracts/domain"
)

// Metric tones. The UI maps these to the corporate palette; the CLI
// uses them to pick a marker.
const (
	ToneNeutral  = "neutral"
	TonePositive = "positive"
	ToneNegative = "negative"
	ToneAlert    = "alert"
)

// Corporate palette, fixed by the warehouse reporting guidelines.
const (
	colorOccupied  = "#14854B" // institutional green: occupied positions
	colorEmpty     = "#0B72A4" // corporate blue: available positions
	colorAlert     = "#B03A43" // sober red: discrepancy / over-allocation
	colorAlertSoft = "#D36A72"
)

// Metric is one KPI card.
type Metric struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Value     int    `json:"value"`     // real signed value
	AbsValue  int    `json:"abs_value"` // |Value|, what proportional views use
	Formatted string `json:"formatted"` // Value with thousands separator
	Tone      string `json:"tone"`
	Detail    string `json:"detail,omitempty"`
}

// ChartSlice is one segment of a donut chart.
type ChartSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// DonutChart is the occupied-versus-available breakdown for one height
// class.
type DonutChart struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle,omitempty"`
	Hole     float64      `json:"hole"`
	Slices   []ChartSlice `json:"slices"`
}

// Bar is one column of the discrepancy bar chart.
type Bar struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// BarChart shows the outside-warehouse counts by height.
type BarChart struct {
	Title string `json:"title"`
	Bars  []Bar  `json:"bars"`
}

// Table is the data-explorer payload: the cleaned columns and the rows
// that participate in aggregation.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

// Dashboard is the complete payload for one report.
type Dashboard struct {
	Metrics    []Metric              `json:"metrics"`
	Donuts     []DonutChart          `json:"donut_charts,omitempty"`
	Bar        *BarChart             `json:"bar_chart,omitempty"`
	Table      Table                 `json:"table"`
	Capacities domain.CapacityConfig `json:"capacities"`
	Warnings   []string              `json:"warnings,omitempty"`
	Advisories []string              `json:"advisories,omitempty"`

	// Empty is set when no row carried a counted status: metrics stay
	// (all zeros) so the page renders, charts are omitted.
	Empty bool `json:"empty"`
}
