package dataset

import (
	"fmt"
	"time"

	"github.com/dvloznov/deposit-matcher/internal/domain"
)

// column describes how a record field is found in a table header.
type column struct {
	Field    string
	Aliases  []string
	Optional bool
}

var (
	depositUserID    = column{Field: "user_id", Aliases: []string{"User Name", "Username", "user_id", "User ID"}}
	depositTimestamp = column{Field: "timestamp", Aliases: []string{"Transaction Date", "Date", "timestamp", "Deposit Date"}}
	depositAmount    = column{Field: "amount", Aliases: []string{"Amount", "amount"}}
	depositCurrency  = column{Field: "currency", Aliases: []string{"Currency", "currency"}}

	noteUserID    = column{Field: "user_id", Aliases: []string{"Username", "User Name", "user_id", "User ID"}}
	noteTimestamp = column{Field: "timestamp", Aliases: []string{"Date", "Note Date", "timestamp"}}
	noteText      = column{Field: "note_text", Aliases: []string{"Note", "note_text", "Notes"}}
	noteAgent     = column{Field: "agent", Aliases: []string{"Agent", "agent"}, Optional: true}
)

// Options controls how cells are typed.
type Options struct {
	// Location is used for timestamps that carry no UTC offset. Nil means UTC.
	Location *time.Location
}

func (t *Table) resolve(cols ...column) (map[string]int, error) {
	idx := make(map[string]int, len(cols))
	for _, c := range cols {
		i, ok := t.Column(c.Aliases...)
		if !ok {
			if c.Optional {
				idx[c.Field] = -1
				continue
			}
			return nil, &domain.MalformedInputError{Source: t.Source, Column: c.Aliases[0], Err: domain.ErrMissingColumn}
		}
		idx[c.Field] = i
	}
	return idx, nil
}

func (t *Table) timestamp(row, col int, opts Options) (time.Time, error) {
	v := t.Cell(row, col)
	ts, err := ParseTimestamp(v, opts.Location, t.Format.IsSpreadsheet())
	if err != nil {
		return time.Time{}, &domain.MalformedInputError{
			Source: t.Source,
			Row:    t.RowNumbers[row],
			Column: t.Header[col],
			Value:  v,
			Err:    fmt.Errorf("%w: %w", domain.ErrInvalidTimestamp, err),
		}
	}
	return ts, nil
}

// DecodeDeposits types every row of a deposits table. The first bad cell
// aborts decoding; no partial result is returned.
func DecodeDeposits(t *Table, opts Options) ([]domain.DepositRecord, error) {
	idx, err := t.resolve(depositUserID, depositTimestamp, depositAmount, depositCurrency)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DepositRecord, 0, len(t.Rows))
	for i := range t.Rows {
		ts, err := t.timestamp(i, idx["timestamp"], opts)
		if err != nil {
			return nil, err
		}
		raw := t.Cell(i, idx["amount"])
		amount, err := ParseAmount(raw)
		if err != nil {
			return nil, &domain.MalformedInputError{
				Source: t.Source,
				Row:    t.RowNumbers[i],
				Column: t.Header[idx["amount"]],
				Value:  raw,
				Err:    fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err),
			}
		}
		out = append(out, domain.DepositRecord{
			UserID:    t.Cell(i, idx["user_id"]),
			Timestamp: ts,
			Amount:    amount,
			Currency:  t.Cell(i, idx["currency"]),
		})
	}
	return out, nil
}

// DecodeNotes types every row of a notes table. The agent column is optional.
func DecodeNotes(t *Table, opts Options) ([]domain.NoteRecord, error) {
	idx, err := t.resolve(noteUserID, noteTimestamp, noteText, noteAgent)
	if err != nil {
		return nil, err
	}

	out := make([]domain.NoteRecord, 0, len(t.Rows))
	for i := range t.Rows {
		ts, err := t.timestamp(i, idx["timestamp"], opts)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.NoteRecord{
			UserID:    t.Cell(i, idx["user_id"]),
			Timestamp: ts,
			NoteText:  t.Cell(i, idx["note_text"]),
			Agent:     t.Cell(i, idx["agent"]),
		})
	}
	return out, nil
}

// LoadDeposits reads and decodes a deposits file in one go.
func LoadDeposits(name string, data []byte, opts Options) ([]domain.DepositRecord, error) {
	t, err := ReadTable(name, data)
	if err != nil {
		return nil, err
	}
	return DecodeDeposits(t, opts)
}

// LoadNotes reads and decodes a notes file in one go.
func LoadNotes(name string, data []byte, opts Options) ([]domain.NoteRecord, error) {
	t, err := ReadTable(name, data)
	if err != nil {
		return nil, err
	}
	return DecodeNotes(t, opts)
}
