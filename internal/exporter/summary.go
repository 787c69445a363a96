package exporter

import (
	"io"

	"avrcli/pkg/contracts/domain"
)

// summaryHeaders lists the nine summary fields in wire order, matching the
// JSON field names of the aggregate response.
var summaryHeaders = []string{
	"stored_total", "outside_total",
	"stored_075", "outside_075",
	"stored_150", "outside_150",
	"balance_total", "balance_075", "balance_150",
}

// SummaryHeaders returns the summary CSV header row.
func SummaryHeaders() []string {
	headers := make([]string, len(summaryHeaders))
	copy(headers, summaryHeaders)
	return headers
}

// SummaryRow renders the nine summary counts in header order.
func SummaryRow(summary domain.OccupancySummary) []string {
	return []string{
		formatInt(summary.StoredTotal), formatInt(summary.OutsideTotal),
		formatInt(summary.Stored075), formatInt(summary.Outside075),
		formatInt(summary.Stored150), formatInt(summary.Outside150),
		formatInt(summary.BalanceTotal), formatInt(summary.Balance075), formatInt(summary.Balance150),
	}
}

// ExportSummary writes the one-row summary CSV.
func ExportSummary(w io.Writer, summary domain.OccupancySummary, bom bool) error {
	return Write(w, WriteOptions{
		Headers:   summaryHeaders,
		Records:   [][]string{SummaryRow(summary)},
		BOMPrefix: bom,
	})
}

// SummaryFilename builds the download filename for a summary export.
func SummaryFilename(uploadName string) string {
	return exportBase(uploadName) + "_summary.csv"
}
