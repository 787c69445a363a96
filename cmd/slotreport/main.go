package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"avrcli/internal/dashboard"
	"avrcli/internal/dataprocessing"
	"avrcli/internal/exporter"
	"avrcli/internal/occupancy"
	"avrcli/internal/validation"
	"avrcli/pkg/contracts/domain"
)

// reportOutput is the JSON document written by -format json.
type reportOutput struct {
	File        string                  `json:"file"`
	Capacities  domain.CapacityConfig   `json:"capacities"`
	Summary     domain.OccupancySummary `json:"summary"`
	RowsCleaned int                     `json:"rows_cleaned"`
	RowsCounted int                     `json:"rows_counted"`
	Warnings    []string                `json:"warnings"`
	Advisories  []string                `json:"advisories"`
}

func main() {
	filePath := flag.String("file", "", "inventory workbook to aggregate (.xlsx or .xls)")
	capacityTotal := flag.Int("capacity-total", domain.DefaultCapacityTotal, "total slot capacity")
	capacity075 := flag.Int("capacity-075", domain.DefaultCapacity075, "slot capacity for 0.75m containers")
	capacity150 := flag.Int("capacity-150", domain.DefaultCapacity150, "slot capacity for 1.50m containers")
	format := flag.String("format", "table", "output format: table, json or csv")
	out := flag.String("out", "", "output file (defaults to stdout)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger := newLogger(*verbose)

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "slotreport: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	switch *format {
	case "table", "json", "csv":
	default:
		logger.Error("Unknown output format", slog.String("format", *format))
		os.Exit(1)
	}

	caps := domain.CapacityConfig{
		Total:     *capacityTotal,
		Height075: *capacity075,
		Height150: *capacity150,
	}
	if err := caps.Validate(); err != nil {
		logger.Error("Invalid capacity configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateSpreadsheetFile(*filePath); err != nil {
		logger.Error("Inventory file rejected",
			slog.String("file", *filePath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	loader := dataprocessing.NewLoader(logger)
	result, err := loader.LoadFile(context.Background(), *filePath)
	if err != nil {
		logger.Error("Failed to load inventory",
			slog.String("file", *filePath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	aggregate := occupancy.Aggregate(result.Table, caps)

	var warnings, advisories []string
	if aggregate.EmptyFilter {
		warnings = append(warnings, occupancy.EmptyFilterWarning)
	}
	if advisory, ok := caps.InconsistencyAdvisory(); ok {
		advisories = append(advisories, advisory)
	}

	// Warnings never block the report; they go to stderr so piped
	// output stays clean.
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	for _, advisory := range advisories {
		fmt.Fprintf(os.Stderr, "advisory: %s\n", advisory)
	}

	logger.Debug("Workbook cleaned",
		slog.String("file", *filePath),
		slog.String("source_format", result.SourceFormat),
		slog.Int("rows_read", result.RowsRead),
		slog.Int("rows_dropped", result.RowsDropped),
		slog.Int("rows_counted", aggregate.Counted))

	output := reportOutput{
		File:        *filePath,
		Capacities:  caps,
		Summary:     aggregate.Summary,
		RowsCleaned: len(result.Table.Rows),
		RowsCounted: aggregate.Counted,
		// Empty slices, not null, so json output matches the API shape.
		Warnings:   append([]string{}, warnings...),
		Advisories: append([]string{}, advisories...),
	}

	if err := writeOutput(*format, *out, output, result.Table); err != nil {
		logger.Error("Failed to write report", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds a stderr logger so report output owns stdout.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func writeOutput(format, out string, output reportOutput, table *domain.SlotTable) error {
	// CSV to a file goes through the exporter so it carries the BOM
	// and creates missing directories, same as the server downloads.
	if format == "csv" && out != "" {
		writer := exporter.NewCSVWriter("")
		return writer.WriteSimpleCSV(out, exporter.SummaryHeaders(),
			[][]string{exporter.SummaryRow(output.Summary)})
	}

	w, closeFn, err := openOutput(out)
	if err != nil {
		return err
	}
	defer closeFn()

	switch format {
	case "table":
		dash := dashboard.Build(output.Summary, output.Capacities, table,
			output.Warnings, output.Advisories)
		return renderTable(w, dash, output)
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	default: // csv to stdout, no BOM
		return exporter.ExportSummary(w, output.Summary, false)
	}
}

func openOutput(out string) (io.Writer, func() error, error) {
	if out == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// renderTable prints the presenter metrics the dashboard page would show.
func renderTable(w io.Writer, dash *dashboard.Dashboard, output reportOutput) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, metric := range dash.Metrics {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", metric.Label, metric.Formatted); err != nil {
			return err
		}
	}

	fmt.Fprintf(tw, "\nLinhas válidas\t%s\n", dashboard.FormatCount(output.RowsCleaned))
	fmt.Fprintf(tw, "Linhas contadas\t%s\n", dashboard.FormatCount(output.RowsCounted))

	return tw.Flush()
}
