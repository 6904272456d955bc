package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/deposit-matcher/internal/domain"
	"github.com/dvloznov/deposit-matcher/internal/export"
	"github.com/dvloznov/deposit-matcher/internal/matching"
)

// Input is one uploaded table. Data may be supplied directly (HTTP upload)
// or fetched from Location by FetchInputsStep.
type Input struct {
	Name     string
	Location string
	Data     []byte
}

// ExportTarget is where and how one result table is written.
type ExportTarget struct {
	Location string
	Format   export.Format
}

// PipelineState holds the shared state across all pipeline steps. It is
// owned by a single run and never reused.
type PipelineState struct {
	RunID    string
	Deposits Input
	Notes    Input
	Keyword  string
	// Location is applied to timestamps without a UTC offset.
	Location *time.Location

	DepositRecords   []domain.DepositRecord
	NoteRecords      []domain.NoteRecord
	FilteredNotes    []domain.NoteRecord
	SharedIdentities []string
	Matches          []domain.MatchedRecord
	Summary          []domain.CurrencySummaryRow
	Outcome          matching.Outcome

	MatchesOut *ExportTarget
	SummaryOut *ExportTarget
	// Exported lists the locations written by ExportStep.
	Exported []string
}

// NewPipelineState starts a run over the two inputs.
func NewPipelineState(deposits, notes Input) *PipelineState {
	return &PipelineState{
		RunID:    uuid.NewString(),
		Deposits: deposits,
		Notes:    notes,
		Location: time.UTC,
	}
}

// Previews are the leading rows shown to an operator before downloading.
type Previews struct {
	Deposits []domain.DepositRecord `json:"deposits"`
	Notes    []domain.NoteRecord    `json:"notes"`
	Matches  []domain.MatchedRecord `json:"matches"`
}

// Previews returns at most n rows of the deposits, the filtered notes and
// the matches.
func (s *PipelineState) Previews(n int) Previews {
	return Previews{
		Deposits: domain.Head(s.DepositRecords, n),
		Notes:    domain.Head(s.FilteredNotes, n),
		Matches:  domain.Head(s.Matches, n),
	}
}
