// Package export serialises matched records and the currency summary as
// delimited text or spreadsheet files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/deposit-matcher/internal/domain"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	// FormatXLS carries the same Open XML workbook as FormatXLSX under the
	// legacy extension and MIME type.
	FormatXLS Format = "xls"
)

const (
	// TimestampLayout is used for every timestamp written to CSV.
	TimestampLayout = "2006-01-02 15:04:05"

	MatchesSheet = "Matched Data"
	SummarySheet = "Currency Summary"

	matchesBaseName = "matched_contacts_and_deposits"
	summaryBaseName = "currency_summary"
)

// MatchColumns is the header of a matches export, in order.
var MatchColumns = []string{
	"Username",
	"Date of the note",
	"Date of the deposit",
	"Agent",
	"Amount of the deposit",
	"Currency of the deposit",
	"Note",
}

// SummaryColumns is the header of a summary export, in order.
var SummaryColumns = []string{
	"Currency of the deposit",
	"Amount of the deposit",
}

// ParseFormat accepts a bare format ("csv"), an extension (".xlsx") or a file
// name ("out/report.xls").
func ParseFormat(s string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(v); ext != "" {
		v = ext
	}
	v = strings.TrimPrefix(v, ".")

	switch Format(v) {
	case FormatCSV, FormatXLSX, FormatXLS:
		return Format(v), nil
	}
	return "", &domain.UnsupportedFormatError{Source: "export", Format: s}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatXLS:
		return "application/vnd.ms-excel"
	default:
		return "text/csv; charset=utf-8"
	}
}

// MatchesFileName is the default file name of a matches export.
func (f Format) MatchesFileName() string {
	return matchesBaseName + "." + string(f)
}

// SummaryFileName is the default file name of a summary export.
func (f Format) SummaryFileName() string {
	return summaryBaseName + "." + string(f)
}

// table is one sheet worth of output.
type table struct {
	sheet  string
	header []string
	rows   [][]interface{}
}

func matchesTable(matches []domain.MatchedRecord) table {
	t := table{sheet: MatchesSheet, header: MatchColumns, rows: make([][]interface{}, 0, len(matches))}
	for _, m := range matches {
		t.rows = append(t.rows, []interface{}{
			m.UserID,
			m.NoteTimestamp,
			m.DepositTimestamp,
			m.Agent,
			m.DepositAmount,
			m.DepositCurrency,
			m.NoteText,
		})
	}
	return t
}

func summaryTable(rows []domain.CurrencySummaryRow) table {
	t := table{sheet: SummarySheet, header: SummaryColumns, rows: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		t.rows = append(t.rows, []interface{}{r.Currency, r.TotalAmount})
	}
	return t
}

// WriteMatches writes matches to w in the given format.
func WriteMatches(w io.Writer, f Format, matches []domain.MatchedRecord) error {
	return write(w, f, matchesTable(matches))
}

// WriteSummary writes the currency summary to w in the given format.
func WriteSummary(w io.Writer, f Format, rows []domain.CurrencySummaryRow) error {
	return write(w, f, summaryTable(rows))
}

func write(w io.Writer, f Format, t table) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatXLSX, FormatXLS:
		return writeWorkbook(w, t)
	}
	return &domain.UnsupportedFormatError{Source: "export", Format: string(f)}
}

func writeCSV(w io.Writer, t table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	rec := make([]string, len(t.header))
	for i, row := range t.rows {
		for j, v := range row {
			rec[j] = csvCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvCell(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(TimestampLayout)
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func writeWorkbook(w io.Writer, t table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), t.sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(t.header))
	for i, h := range t.header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = workbookCell(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(t.header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(t.sheet, "A", last, 22); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// workbookCell converts a value to something excelize stores natively.
// Amounts become numbers; timestamps become date cells showing the same
// wall clock as the CSV export.
func workbookCell(v interface{}) interface{} {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case time.Time:
		return time.Date(x.Year(), x.Month(), x.Day(), x.Hour(), x.Minute(), x.Second(), x.Nanosecond(), time.UTC)
	default:
		return v
	}
}
