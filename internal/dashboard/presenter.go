package dashboard

import (
	"fmt"

	"avrcli/internal/occupancy"
	"avrcli/pkg/contracts/domain"
)

// Build assembles the dashboard payload for an aggregated report. The
// table may be nil (summary-only callers); warnings and advisories are
// attached verbatim.
func Build(summary domain.OccupancySummary, capacities domain.CapacityConfig, table *domain.SlotTable, warnings, advisories []string) *Dashboard {
	empty := summary.StoredTotal == 0 && summary.OutsideTotal == 0

	d := &Dashboard{
		Metrics:    buildMetrics(summary, capacities),
		Table:      buildTable(table),
		Capacities: capacities,
		Warnings:   warnings,
		Advisories: advisories,
		Empty:      empty,
	}

	// An empty filter result keeps the zeroed metrics but renders no
	// charts; proportions of nothing mislead more than they inform.
	if !empty {
		d.Donuts = []DonutChart{
			donut(domain.Height075, summary.Stored075, summary.Balance075, capacities.Height075),
			donut(domain.Height150, summary.Stored150, summary.Balance150, capacities.Height150),
		}
		d.Bar = barChart(summary)
	}

	return d
}

func buildMetrics(summary domain.OccupancySummary, capacities domain.CapacityConfig) []Metric {
	metrics := []Metric{
		{
			ID:        "ocupacao_total",
			Label:     "Ocupação Total",
			Value:     summary.StoredTotal,
			AbsValue:  abs(summary.StoredTotal),
			Formatted: FormatCount(summary.StoredTotal),
			Tone:      ToneNeutral,
		},
		balanceMetric("vagas_vazias_total", "Vagas Vazias (Saldo)", "Sobre-alocação", summary.BalanceTotal, capacities.Total),
		{
			ID:        "discrepancia_total",
			Label:     "Discrepância (Fora do Armazém)",
			Value:     summary.OutsideTotal,
			AbsValue:  abs(summary.OutsideTotal),
			Formatted: FormatCount(summary.OutsideTotal),
			Tone:      ToneAlert,
		},
	}

	heights := []struct {
		suffix  string
		label   string
		balance int
		stored  int
		outside int
	}{
		{suffix: "075", label: "0.75m", balance: summary.Balance075, stored: summary.Stored075, outside: summary.Outside075},
		{suffix: "150", label: "1.50m", balance: summary.Balance150, stored: summary.Stored150, outside: summary.Outside150},
	}

	for _, h := range heights {
		metrics = append(metrics,
			balanceMetric("vagas_vazias_"+h.suffix, h.label+" Vazias (Saldo)", h.label+" Sobre-alocação", h.balance, 0),
			Metric{
				ID:        "armazenado_" + h.suffix,
				Label:     h.label + " Armazenado",
				Value:     h.stored,
				AbsValue:  abs(h.stored),
				Formatted: FormatCount(h.stored),
				Tone:      ToneNeutral,
			},
			Metric{
				ID:        "fora_armazem_" + h.suffix,
				Label:     h.label + " Fora do Armazém",
				Value:     h.outside,
				AbsValue:  abs(h.outside),
				Formatted: FormatCount(h.outside),
				Tone:      ToneAlert,
			},
		)
	}

	return metrics
}

// balanceMetric applies the sign switch: the label, tone and detail all
// flip when the balance goes negative, while the value keeps its real
// sign. capacity > 0 adds the availability percentage to the detail.
func balanceMetric(id, positiveLabel, negativeLabel string, balance, capacity int) Metric {
	m := Metric{
		ID:        id,
		Value:     balance,
		AbsValue:  abs(balance),
		Formatted: FormatCount(balance),
	}

	if balance >= 0 {
		m.Label = positiveLabel
		m.Tone = TonePositive
		if capacity > 0 {
			m.Detail = fmt.Sprintf("%.1f%% disponível", float64(balance)/float64(capacity)*100)
		}
	} else {
		m.Label = negativeLabel
		m.Tone = ToneNegative
		m.Detail = fmt.Sprintf("Sobre-alocação: %s posições", FormatCount(abs(balance)))
	}

	return m
}

func donut(height float64, stored, balance, capacity int) DonutChart {
	secondLabel, secondColor := "Vazio", colorEmpty
	if balance < 0 {
		secondLabel, secondColor = "Excesso de Ocupação", colorAlert
	}

	label := domain.HeightLabel(height)
	return DonutChart{
		Title:    "Ocupação " + label + "m",
		Subtitle: "Ref. Capacidade: " + FormatCount(capacity),
		Hole:     0.4,
		Slices: []ChartSlice{
			{Label: "Ocupado", Value: stored, Color: colorOccupied},
			{Label: secondLabel, Value: abs(balance), Color: secondColor},
		},
	}
}

func barChart(summary domain.OccupancySummary) *BarChart {
	return &BarChart{
		Title: "Discrepância (Fora do Armazém)",
		Bars: []Bar{
			{Label: domain.HeightLabel(domain.Height075), Value: summary.Outside075, Color: colorAlert},
			{Label: domain.HeightLabel(domain.Height150), Value: summary.Outside150, Color: colorAlertSoft},
		},
	}
}

func buildTable(table *domain.SlotTable) Table {
	filtered := occupancy.FilterRows(table)
	rows := make([][]string, len(filtered))
	for i, record := range filtered {
		rows[i] = record.Cells
	}

	var columns []string
	if table != nil {
		columns = table.Columns
	}

	return Table{Columns: columns, Rows: rows, Total: len(rows)}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
