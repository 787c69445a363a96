package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for load failures that carry no extra context.
var (
	// ErrNoValidData means cleaning finished but zero rows survived:
	// the sheet was header-only, or every height failed coercion or
	// fell outside the two rack heights.
	ErrNoValidData = errors.New("no valid inventory rows after cleaning")

	// ErrEmptyWorkbook means the container decoded but holds no sheet.
	ErrEmptyWorkbook = errors.New("workbook contains no sheets")
)

// ParseError reports that the uploaded bytes could not be decoded as a
// spreadsheet: unrecognized container signature, truncated archive, or
// a corrupt sheet stream.
type ParseError struct {
	// Format is the container that was attempted ("xlsx", "xls"),
	// empty when the signature was not recognized at all.
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("not a spreadsheet: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode %s workbook: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingColumnsError reports that the sheet's header row lacks one or
// both of the required columns. Columns holds exactly the missing
// names, in the order they are required.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns missing: %s", strings.Join(e.Columns, ", "))
}
