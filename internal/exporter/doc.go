// Package exporter provides CSV export functionality for AVR Pulse reports.
//
// This package contains two layers:
//
// CSVWriter and Write: core CSV writing with support for headers, appending,
// and a UTF-8 BOM for Excel compatibility. Write streams to any io.Writer
// (the HTTP download handlers pass the response writer); CSVWriter targets
// files, resolving relative paths against a base directory.
//
// ExportRecords and ExportSummary: the two report export shapes. Records
// exports carry the cleaned table columns verbatim; the summary export is a
// single row of the nine occupancy counts in wire order.
//
// Example usage:
//
//	// Stream a report's rows to an HTTP response
//	err := exporter.ExportRecords(w, page.Columns, page.Rows, true)
//
//	// Write the summary row to a file from the CLI
//	writer := exporter.NewCSVWriter("")
//	err = writer.WriteSimpleCSV("resumo.csv", exporter.SummaryHeaders(),
//	    [][]string{exporter.SummaryRow(report.Summary)})
package exporter
