package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn means a required column could not be resolved in a table.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidTimestamp means a cell could not be parsed as a date/time.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidAmount means a cell could not be parsed as a decimal number.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrEmptyTable means the file has no header row.
	ErrEmptyTable = errors.New("table has no header row")
)

// MalformedInputError reports a structurally invalid table or a cell that
// does not parse as its declared type. Row is the 1-based row in the source
// file (the header is row 1); it is zero for table-level problems.
type MalformedInputError struct {
	Source string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s: row %d, column %q: %v (value %q)", e.Source, e.Row, e.Column, e.Err, e.Value)
	case e.Column != "":
		return fmt.Sprintf("%s: column %q: %v", e.Source, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("%s: row %d: %v", e.Source, e.Row, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError is returned when a file is neither delimited text
// nor a readable spreadsheet.
type UnsupportedFormatError struct {
	Source string
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("%s: unsupported file format", e.Source)
	}
	return fmt.Sprintf("%s: unsupported file format %q (expected .csv, .xlsx or .xls)", e.Source, e.Format)
}
