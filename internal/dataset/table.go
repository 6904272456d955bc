package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/deposit-matcher/internal/domain"
)

// Table is a raw header + rows view of an input file. Cells are kept as
// strings; typing happens in DecodeDeposits / DecodeNotes.
type Table struct {
	Source string
	Format Format
	Header []string
	// Rows holds the data rows; RowNumbers[i] is the 1-based file row of Rows[i].
	Rows       [][]string
	RowNumbers []int

	index map[string]int
}

// ReadTable detects the format of data and reads it into a Table.
func ReadTable(name string, data []byte) (*Table, error) {
	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, err
	}

	var (
		records [][]string
		lines   []int
	)
	switch format {
	case FormatCSV:
		records, lines, err = readCSV(data)
	default:
		records, err = readWorkbook(data)
	}
	if err != nil {
		return nil, &domain.MalformedInputError{Source: name, Err: err}
	}

	return newTable(name, format, records, lines)
}

// newTable builds a Table from raw records. lines[i] is the file row of
// records[i]; when lines is nil the record index is used.
func newTable(name string, format Format, records [][]string, lines []int) (*Table, error) {
	headerAt := -1
	for i, rec := range records {
		if !isBlank(rec) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, &domain.MalformedInputError{Source: name, Err: domain.ErrEmptyTable}
	}

	header := make([]string, len(records[headerAt]))
	for i, h := range records[headerAt] {
		header[i] = strings.TrimSpace(h)
	}

	t := &Table{
		Source: name,
		Format: format,
		Header: header,
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}

	for i := headerAt + 1; i < len(records); i++ {
		if isBlank(records[i]) {
			continue
		}
		t.Rows = append(t.Rows, records[i])
		if lines != nil {
			t.RowNumbers = append(t.RowNumbers, lines[i])
		} else {
			t.RowNumbers = append(t.RowNumbers, i+1)
		}
	}
	return t, nil
}

// Cell returns the trimmed value of column col in row i, or "" when the row
// is shorter than the header.
func (t *Table) Cell(i, col int) string {
	row := t.Rows[i]
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Column resolves the first alias present in the header.
func (t *Table) Column(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := t.index[normalizeHeader(a)]; ok {
			return i, true
		}
	}
	return -1, false
}

// utf8BOM is written by spreadsheet tools at the start of exported CSV.
var utf8BOM = []byte("\ufeff")

// readCSV returns the records and the line each one starts on. The csv
// reader drops empty lines, so positions come from FieldPos.
func readCSV(data []byte) ([][]string, []int, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	var (
		out   [][]string
		lines []int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := r.FieldPos(0)
		out = append(out, rec)
		lines = append(lines, line)
	}
	return out, lines, nil
}

// readWorkbook returns the rows of the first sheet. Raw cell values are used
// so dates arrive as Excel serial numbers instead of display strings.
func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader folds case and treats spaces, underscores and hyphens alike,
// so "User Name", "user_name" and "USER-NAME" resolve to the same column.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}
