package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositRecord is one row of the deposits table.
type DepositRecord struct {
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// NoteRecord is one row of the notes table. Agent is empty when the source
// has no agent column or the cell is blank.
type NoteRecord struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	NoteText  string    `json:"note_text"`
	Agent     string    `json:"agent"`
}

// MatchedRecord pairs a note with the first deposit of the same user that
// happened strictly after it.
type MatchedRecord struct {
	UserID           string          `json:"user_id"`
	NoteTimestamp    time.Time       `json:"note_timestamp"`
	DepositTimestamp time.Time       `json:"deposit_timestamp"`
	Agent            string          `json:"agent"`
	DepositAmount    decimal.Decimal `json:"deposit_amount"`
	DepositCurrency  string          `json:"deposit_currency"`
	NoteText         string          `json:"note_text"`
}

// CurrencySummaryRow is the total matched deposit amount for one currency.
type CurrencySummaryRow struct {
	Currency    string          `json:"currency"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Head returns at most n leading elements of records.
func Head[T any](records []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(records) <= n {
		return records
	}
	return records[:n]
}
