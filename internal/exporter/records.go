package exporter

import (
	"io"
	"path/filepath"
	"strings"
)

// ExportRecords streams a report's cleaned or filtered rows as CSV. The
// column headers come through verbatim from the cleaned table.
func ExportRecords(w io.Writer, columns []string, rows [][]string, bom bool) error {
	return Write(w, WriteOptions{
		Headers:   columns,
		Records:   rows,
		BOMPrefix: bom,
	})
}

// RecordsFilename builds the download filename for a records export,
// e.g. "inventario_filtered.csv" for an upload named inventario.xlsx.
func RecordsFilename(uploadName, scope string) string {
	return exportBase(uploadName) + "_" + scope + ".csv"
}

// exportBase strips the directory and extension from an upload name,
// falling back to "report" when nothing usable is left.
func exportBase(uploadName string) string {
	base := filepath.Base(uploadName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "report"
	}
	return base
}
