package matching_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/deposit-matcher/internal/domain"
	"github.com/dvloznov/deposit-matcher/internal/matching"
)

func matched(currency, amount string) domain.MatchedRecord {
	return domain.MatchedRecord{DepositCurrency: currency, DepositAmount: decimal.RequireFromString(amount)}
}

func TestSummarize_FirstSeenOrderAndExactSums(t *testing.T) {
	matches := []domain.MatchedRecord{
		matched("EUR", "0.1"),
		matched("USD", "10.05"),
		matched("EUR", "0.2"),
		matched("USD", "0.95"),
		matched("EUR", "0.3"),
	}

	got := matching.Summarize(matches)

	require.Len(t, got, 2)
	assert.Equal(t, "EUR", got[0].Currency)
	assert.Equal(t, "0.6", got[0].TotalAmount.String())
	assert.Equal(t, "USD", got[1].Currency)
	assert.Equal(t, "11", got[1].TotalAmount.String())
}

func TestSummarize_Conservation(t *testing.T) {
	matches := []domain.MatchedRecord{
		matched("USD", "19.99"),
		matched("GBP", "5"),
		matched("USD", "0.01"),
		matched("JPY", "1200"),
		matched("GBP", "7.5"),
	}

	rows := matching.Summarize(matches)

	var fromRows, fromMatches decimal.Decimal
	for _, r := range rows {
		fromRows = fromRows.Add(r.TotalAmount)
	}
	for _, m := range matches {
		fromMatches = fromMatches.Add(m.DepositAmount)
	}
	assert.True(t, fromRows.Equal(fromMatches), "rows=%s matches=%s", fromRows, fromMatches)
}

func TestSummarize_Idempotent(t *testing.T) {
	deposits := []domain.DepositRecord{
		deposit("u1", "2024-01-02 00:00", "100", "USD"),
		deposit("u2", "2024-01-04 00:00", "3.33", "EUR"),
	}
	notes := []domain.NoteRecord{
		note("u1", "2024-01-01 00:00", "a"),
		note("u2", "2024-01-03 00:00", "b"),
	}
	matches := matching.Match(deposits, notes)

	assert.Equal(t, matching.Summarize(matches), matching.Summarize(matches))
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, matching.Summarize(nil))
}
