package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/deposit-matcher/internal/domain"
	"github.com/dvloznov/deposit-matcher/internal/export"
)

func sampleMatches() []domain.MatchedRecord {
	return []domain.MatchedRecord{
		{
			UserID:           "alice",
			NoteTimestamp:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
			DepositTimestamp: time.Date(2024, 1, 2, 9, 30, 15, 0, time.UTC),
			Agent:            "Maria",
			DepositAmount:    decimal.RequireFromString("100.50"),
			DepositCurrency:  "USD",
			NoteText:         "promised, will pay",
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"csv", export.FormatCSV, false},
		{"XLSX", export.FormatXLSX, false},
		{".xls", export.FormatXLS, false},
		{"out/report.csv", export.FormatCSV, false},
		{"pdf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := export.ParseFormat(tt.in)
			if tt.wantErr {
				var unsupported *domain.UnsupportedFormatError
				assert.ErrorAs(t, err, &unsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileNamesAndContentTypes(t *testing.T) {
	assert.Equal(t, "matched_contacts_and_deposits.csv", export.FormatCSV.MatchesFileName())
	assert.Equal(t, "matched_contacts_and_deposits.xls", export.FormatXLS.MatchesFileName())
	assert.Equal(t, "currency_summary.xlsx", export.FormatXLSX.SummaryFileName())

	assert.Equal(t, "application/vnd.ms-excel", export.FormatXLS.ContentType())
	assert.Contains(t, export.FormatCSV.ContentType(), "text/csv")
}

func TestWriteMatches_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteMatches(&buf, export.FormatCSV, sampleMatches()))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, export.MatchColumns, recs[0])
	assert.Equal(t, []string{
		"alice", "2024-01-01 08:00:00", "2024-01-02 09:30:15", "Maria", "100.5", "USD", "promised, will pay",
	}, recs[1])
}

func TestWriteMatches_EmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteMatches(&buf, export.FormatCSV, nil))
	assert.Equal(t, "Username,Date of the note,Date of the deposit,Agent,Amount of the deposit,Currency of the deposit,Note\n", buf.String())
}

func TestWriteSummary_CSV(t *testing.T) {
	rows := []domain.CurrencySummaryRow{
		{Currency: "USD", TotalAmount: decimal.RequireFromString("0.3")},
		{Currency: "EUR", TotalAmount: decimal.NewFromInt(11)},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteSummary(&buf, export.FormatCSV, rows))
	assert.Equal(t, "Currency of the deposit,Amount of the deposit\nUSD,0.3\nEUR,11\n", buf.String())
}

func TestWriteMatches_Workbook(t *testing.T) {
	for _, format := range []export.Format{export.FormatXLSX, export.FormatXLS} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, export.WriteMatches(&buf, format, sampleMatches()))

			f, err := excelize.OpenReader(&buf)
			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, export.MatchesSheet, f.GetSheetName(0))
			rows, err := f.GetRows(export.MatchesSheet)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, export.MatchColumns, rows[0])
			assert.Equal(t, "alice", rows[1][0])
			assert.Equal(t, "Maria", rows[1][3])
			assert.Equal(t, "100.5", rows[1][4])
			assert.Equal(t, "USD", rows[1][5])
		})
	}
}

func TestWriteSummary_Workbook(t *testing.T) {
	rows := []domain.CurrencySummaryRow{{Currency: "GBP", TotalAmount: decimal.RequireFromString("12.25")}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteSummary(&buf, export.FormatXLSX, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(export.SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{export.SummaryColumns, {"GBP", "12.25"}}, got)
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteMatches(&buf, export.Format("pdf"), sampleMatches())
	var unsupported *domain.UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)
}
