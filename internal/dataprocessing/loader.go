package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"avrcli/pkg/contracts/domain"
)

// Spreadsheet container formats the loader understands.
const (
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

// Container signatures. XLSX is a ZIP archive; legacy XLS is an OLE
// compound document.
var (
	magicZIP = []byte{0x50, 0x4B, 0x03, 0x04}
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// cellCutset strips the quoting some WMS exports wrap cell values in.
// Interior characters, including spaces, are preserved.
const cellCutset = "\"' "

// DetectFormat identifies the workbook container from its leading
// bytes. The filename is never trusted: a renamed file still decodes
// with the reader its content requires.
func DetectFormat(raw []byte) (string, bool) {
	switch {
	case bytes.HasPrefix(raw, magicZIP):
		return FormatXLSX, true
	case bytes.HasPrefix(raw, magicOLE):
		return FormatXLS, true
	default:
		return "", false
	}
}

// LoadResult carries a cleaned table together with load statistics.
type LoadResult struct {
	Table        *domain.SlotTable
	SourceFormat string
	RowsRead     int // non-empty data rows in the sheet, header excluded
	RowsDropped  int // rows removed because the height is missing or not a rack height
}

// Loader decodes and cleans slot inventory workbooks. It holds no
// per-load state and is safe for concurrent use.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "loader")),
	}
}

// Load decodes the first sheet of a workbook and applies the cleaning
// rules. The filename is used only for logging; format detection works
// on the bytes.
//
// Failures are typed: *ParseError when the bytes do not decode,
// *MissingColumnsError when the header lacks a required column, and
// ErrNoValidData when cleaning leaves zero rows.
func (l *Loader) Load(ctx context.Context, filename string, raw []byte) (*LoadResult, error) {
	format, ok := DetectFormat(raw)
	if !ok {
		l.logger.WarnContext(ctx, "upload is not a spreadsheet container",
			slog.String("filename", filename),
			slog.Int("size_bytes", len(raw)))
		return nil, &ParseError{Err: errors.New("unrecognized container signature")}
	}

	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = decodeXLSX(raw)
	case FormatXLS:
		rows, err = decodeXLS(raw)
	}
	if err != nil {
		l.logger.WarnContext(ctx, "workbook decode failed",
			slog.String("filename", filename),
			slog.String("format", format),
			slog.String("error", err.Error()))
		return nil, &ParseError{Format: format, Err: err}
	}

	result, err := l.clean(rows)
	if err != nil {
		l.logger.WarnContext(ctx, "workbook rejected during cleaning",
			slog.String("filename", filename),
			slog.String("format", format),
			slog.String("error", err.Error()))
		return nil, err
	}
	result.SourceFormat = format

	l.logger.InfoContext(ctx, "workbook loaded",
		slog.String("filename", filename),
		slog.String("format", format),
		slog.Int("rows_read", result.RowsRead),
		slog.Int("rows_kept", len(result.Table.Rows)),
		slog.Int("rows_dropped", result.RowsDropped),
		slog.Int("columns", len(result.Table.Columns)))

	return result, nil
}

// LoadFile reads a workbook from disk and loads it. Convenience for the
// CLI; the HTTP path already holds the upload bytes.
func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return l.Load(ctx, filepath.Base(path), raw)
}

// clean turns the raw sheet into a SlotTable, applying the rules in
// order: trim headers, drop unnamed columns, require the height and
// status columns, normalize status values, coerce heights and keep only
// the two rack heights.
func (l *Loader) clean(rows [][]string) (*LoadResult, error) {
	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}

	// Unnamed columns are trailing junk from the WMS export; dropping
	// them keeps the table and its CSV export aligned with the header.
	type column struct {
		name string
		src  int
	}
	var columns []column
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		columns = append(columns, column{name: name, src: i})
	}

	// First occurrence wins when a header name repeats.
	heightIdx, statusIdx := -1, -1
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
		if heightIdx == -1 && c.name == domain.ColumnHeight {
			heightIdx = i
		}
		if statusIdx == -1 && c.name == domain.ColumnStatus {
			statusIdx = i
		}
	}

	var missing []string
	if heightIdx == -1 {
		missing = append(missing, domain.ColumnHeight)
	}
	if statusIdx == -1 {
		missing = append(missing, domain.ColumnStatus)
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	table := &domain.SlotTable{Columns: names}
	read, dropped := 0, 0
	for _, raw := range rows[1:] {
		if isEmptyRow(raw) {
			continue
		}
		read++

		// Both decoders emit ragged rows; pad to the header width.
		cells := make([]string, len(columns))
		for i, c := range columns {
			if c.src < len(raw) {
				cells[i] = raw[c.src]
			}
		}

		status := strings.Trim(cells[statusIdx], cellCutset)
		cells[statusIdx] = status

		height, ok := parseHeight(cells[heightIdx])
		if !ok || !validHeight(height) {
			// Silent drop: bad heights are expected noise in the
			// export, not a load failure.
			dropped++
			continue
		}
		cells[heightIdx] = domain.HeightLabel(height)

		table.Rows = append(table.Rows, domain.SlotRecord{
			Height: height,
			Status: status,
			Cells:  cells,
		})
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoValidData
	}

	return &LoadResult{Table: table, RowsRead: read, RowsDropped: dropped}, nil
}

// parseHeight coerces a height cell to a float. The export uses the
// decimal comma, so "0,75" and "0.75" both parse.
func parseHeight(value string) (float64, bool) {
	v := strings.Trim(value, cellCutset)
	v = strings.ReplaceAll(v, ",", ".")
	if v == "" {
		return 0, false
	}
	height, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return height, true
}

// validHeight reports whether a parsed height is one of the two rack
// heights the warehouse accepts.
func validHeight(height float64) bool {
	return height == domain.Height075 || height == domain.Height150
}

func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// decodeXLSX reads the first sheet of a modern ZIP-container workbook.
func decodeXLSX(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	return f.GetRows(sheets[0])
}

// decodeXLS reads the first sheet of a legacy OLE workbook. The decoder
// exposes sparse rows, so cells are placed by column index and gaps
// come back as empty strings.
func decodeXLS(raw []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(raw), "utf-8")
	if err != nil {
		return nil, err
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyWorkbook
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}

	return rows, nil
}
