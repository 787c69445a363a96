package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"avrcli/internal/dataprocessing"
	"avrcli/internal/occupancy"
	"avrcli/pkg/contracts/domain"
)

// TestMain removed - flag parsing is handled in main.go

func sampleOutput() reportOutput {
	return reportOutput{
		File:       "inventario.xlsx",
		Capacities: domain.DefaultCapacities(),
		Summary: domain.OccupancySummary{
			StoredTotal:  4100,
			OutsideTotal: 50,
			Stored075:    2000,
			Outside075:   50,
			Stored150:    2100,
			Outside150:   0,
			BalanceTotal: -40,
			Balance075:   30,
			Balance150:   -70,
		},
		RowsCleaned: 4175,
		RowsCounted: 4150,
		Warnings:    []string{},
		Advisories:  []string{},
	}
}

// buildWorkbook writes an inventory workbook with the standard headers
// and the given (height, status) rows.
func buildWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Altura"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Estado Contentor"))

	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "inventario.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWriteOutput(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		filename string
		check    func(t *testing.T, content string)
	}{
		{
			name:     "json document",
			format:   "json",
			filename: "report.json",
			check: func(t *testing.T, content string) {
				var decoded reportOutput
				require.NoError(t, json.Unmarshal([]byte(content), &decoded))
				assert.Equal(t, sampleOutput().Summary, decoded.Summary)
				assert.Equal(t, 4175, decoded.RowsCleaned)
				assert.Equal(t, 4150, decoded.RowsCounted)
				assert.Equal(t, []string{}, decoded.Warnings)
			},
		},
		{
			name:     "csv file carries BOM and summary row",
			format:   "csv",
			filename: "summary.csv",
			check: func(t *testing.T, content string) {
				assert.True(t, strings.HasPrefix(content, "\uFEFF"))
				assert.Contains(t, content, "stored_total,outside_total")
				assert.Contains(t, content, "4100,50,2000,50,2100,0,-40,30,-70")
			},
		},
		{
			name:     "table lists presenter metrics",
			format:   "table",
			filename: "report.txt",
			check: func(t *testing.T, content string) {
				assert.Contains(t, content, "Ocupação Total")
				assert.Contains(t, content, "4.100")
				assert.Contains(t, content, "Sobre-alocação")
				assert.Contains(t, content, "Linhas contadas")
				assert.Contains(t, content, "4.150")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outPath := filepath.Join(t.TempDir(), tt.filename)

			err := writeOutput(tt.format, outPath, sampleOutput(), nil)
			require.NoError(t, err)

			data, err := os.ReadFile(outPath)
			require.NoError(t, err)

			tt.check(t, string(data))
		})
	}
}

func TestOpenOutput(t *testing.T) {
	t.Run("empty path falls back to stdout", func(t *testing.T) {
		w, closeFn, err := openOutput("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, w)
		assert.NoError(t, closeFn())
	})

	t.Run("creates the output file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")

		w, closeFn, err := openOutput(path)
		require.NoError(t, err)

		_, err = io.WriteString(w, "ocupação")
		require.NoError(t, err)
		require.NoError(t, closeFn())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "ocupação", string(data))
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, _, err := openOutput(filepath.Join(t.TempDir(), "missing", "out.txt"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create output file")
	})
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	quiet := newLogger(false)
	assert.False(t, quiet.Enabled(ctx, slog.LevelDebug))
	assert.False(t, quiet.Enabled(ctx, slog.LevelInfo))
	assert.True(t, quiet.Enabled(ctx, slog.LevelWarn))

	verbose := newLogger(true)
	assert.True(t, verbose.Enabled(ctx, slog.LevelDebug))
}

// TestAggregatePipeline exercises the same load → aggregate → write path
// main runs, without flag parsing.
func TestAggregatePipeline(t *testing.T) {
	path := buildWorkbook(t, [][]interface{}{
		{0.75, "Armazenado"},
		{0.75, "Armazenado"},
		{1.50, "Armazenado"},
		{0.75, "Fora do Armazém"},
		{1.50, "Em Trânsito"},
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := dataprocessing.NewLoader(logger)

	result, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, result.Table)
	assert.Len(t, result.Table.Rows, 5)

	caps := domain.CapacityConfig{Total: 10, Height075: 6, Height150: 4}
	aggregate := occupancy.Aggregate(result.Table, caps)

	assert.Equal(t, 3, aggregate.Summary.StoredTotal)
	assert.Equal(t, 1, aggregate.Summary.OutsideTotal)
	assert.Equal(t, 2, aggregate.Summary.Stored075)
	assert.Equal(t, 1, aggregate.Summary.Stored150)
	assert.Equal(t, 7, aggregate.Summary.BalanceTotal)
	assert.Equal(t, 4, aggregate.Counted)
	assert.False(t, aggregate.EmptyFilter)

	outPath := filepath.Join(t.TempDir(), "report.json")
	output := reportOutput{
		File:        path,
		Capacities:  caps,
		Summary:     aggregate.Summary,
		RowsCleaned: len(result.Table.Rows),
		RowsCounted: aggregate.Counted,
		Warnings:    []string{},
		Advisories:  []string{},
	}
	require.NoError(t, writeOutput("json", outPath, output, result.Table))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stored_total": 3`)
	assert.Contains(t, string(data), `"balance_total": 7`)
}

func TestEmptyFilterAdvisoryFlow(t *testing.T) {
	path := buildWorkbook(t, [][]interface{}{
		{0.75, "Em Trânsito"},
		{1.50, "Em Trânsito"},
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := dataprocessing.NewLoader(logger)

	result, err := loader.LoadFile(context.Background(), path)
	require.NoError(t, err)

	caps := domain.CapacityConfig{Total: 100, Height075: 30, Height150: 30}
	aggregate := occupancy.Aggregate(result.Table, caps)

	assert.True(t, aggregate.EmptyFilter)
	assert.Equal(t, 0, aggregate.Counted)
	assert.Equal(t, 100, aggregate.Summary.BalanceTotal)

	advisory, ok := caps.InconsistencyAdvisory()
	assert.True(t, ok)
	assert.Contains(t, advisory, "configured total is 100")
}
