package matching

import (
	"github.com/shopspring/decimal"

	"github.com/dvloznov/deposit-matcher/internal/domain"
)

// Summarize totals DepositAmount per DepositCurrency. Rows come out in the
// order each currency is first seen. Empty input gives an empty result.
func Summarize(matches []domain.MatchedRecord) []domain.CurrencySummaryRow {
	if len(matches) == 0 {
		return nil
	}

	index := make(map[string]int)
	var rows []domain.CurrencySummaryRow
	for _, m := range matches {
		i, ok := index[m.DepositCurrency]
		if !ok {
			i = len(rows)
			index[m.DepositCurrency] = i
			rows = append(rows, domain.CurrencySummaryRow{
				Currency:    m.DepositCurrency,
				TotalAmount: decimal.Zero,
			})
		}
		rows[i].TotalAmount = rows[i].TotalAmount.Add(m.DepositAmount)
	}
	return rows
}
