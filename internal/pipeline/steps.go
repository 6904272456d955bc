package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/deposit-matcher/internal/dataset"
	"github.com/dvloznov/deposit-matcher/internal/export"
	"github.com/dvloznov/deposit-matcher/internal/gcs"
	"github.com/dvloznov/deposit-matcher/internal/matching"
)

// PipelineStep represents a single step in the matching pipeline.
type PipelineStep interface {
	Name() string
	Execute(ctx context.Context, state *PipelineState) error
}

var errNoStorage = errors.New("no storage service configured")

// Step 1: FetchInputsStep reads any input that was given by location only.
type FetchInputsStep struct {
	Storage Store
}

func (s *FetchInputsStep) Name() string { return "fetch_inputs" }

func (s *FetchInputsStep) Execute(ctx context.Context, state *PipelineState) error {
	for _, in := range []*Input{&state.Deposits, &state.Notes} {
		if in.Name == "" {
			in.Name = gcs.Filename(in.Location)
		}
		if in.Data != nil {
			continue
		}
		if in.Location == "" {
			return fmt.Errorf("input %q has neither data nor location", in.Name)
		}
		if s.Storage == nil {
			return errNoStorage
		}
		data, err := s.Storage.Fetch(ctx, in.Location)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", in.Location, err)
		}
		in.Data = data
	}
	return nil
}

// Step 2: LoadDepositsStep decodes the deposits table.
type LoadDepositsStep struct{}

func (s *LoadDepositsStep) Name() string { return "load_deposits" }

func (s *LoadDepositsStep) Execute(ctx context.Context, state *PipelineState) error {
	records, err := dataset.LoadDeposits(state.Deposits.Name, state.Deposits.Data, dataset.Options{Location: state.Location})
	if err != nil {
		return err
	}
	state.DepositRecords = records
	return nil
}

// Step 3: LoadNotesStep decodes the notes table.
type LoadNotesStep struct{}

func (s *LoadNotesStep) Name() string { return "load_notes" }

func (s *LoadNotesStep) Execute(ctx context.Context, state *PipelineState) error {
	records, err := dataset.LoadNotes(state.Notes.Name, state.Notes.Data, dataset.Options{Location: state.Location})
	if err != nil {
		return err
	}
	state.NoteRecords = records
	return nil
}

// Step 4: FilterNotesStep keeps the notes containing the keyword.
type FilterNotesStep struct{}

func (s *FilterNotesStep) Name() string { return "filter_notes" }

func (s *FilterNotesStep) Execute(ctx context.Context, state *PipelineState) error {
	state.FilteredNotes = matching.FilterNotes(state.NoteRecords, state.Keyword)
	return nil
}

// Step 5: MatchStep pairs filtered notes with their next deposit.
type MatchStep struct{}

func (s *MatchStep) Name() string { return "match" }

func (s *MatchStep) Execute(ctx context.Context, state *PipelineState) error {
	state.SharedIdentities = matching.SharedIdentities(state.DepositRecords, state.FilteredNotes)
	state.Matches = matching.Match(state.DepositRecords, state.FilteredNotes)
	state.Outcome = matching.Classify(state.SharedIdentities, len(state.Matches))
	return nil
}

// Step 6: SummarizeStep totals matched amounts per currency.
type SummarizeStep struct{}

func (s *SummarizeStep) Name() string { return "summarize" }

func (s *SummarizeStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Summary = matching.Summarize(state.Matches)
	return nil
}

// Step 7: ExportStep writes the requested result files. It does nothing
// when no target is set.
type ExportStep struct {
	Storage Store
}

func (s *ExportStep) Name() string { return "export" }

func (s *ExportStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.MatchesOut != nil {
		var buf bytes.Buffer
		if err := export.WriteMatches(&buf, state.MatchesOut.Format, state.Matches); err != nil {
			return fmt.Errorf("render matches: %w", err)
		}
		if err := s.put(ctx, state, state.MatchesOut, buf.Bytes()); err != nil {
			return err
		}
	}

	if state.SummaryOut != nil {
		var buf bytes.Buffer
		if err := export.WriteSummary(&buf, state.SummaryOut.Format, state.Summary); err != nil {
			return fmt.Errorf("render summary: %w", err)
		}
		if err := s.put(ctx, state, state.SummaryOut, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportStep) put(ctx context.Context, state *PipelineState, target *ExportTarget, data []byte) error {
	if s.Storage == nil {
		return errNoStorage
	}
	if err := s.Storage.Put(ctx, target.Location, data, target.Format.ContentType()); err != nil {
		return fmt.Errorf("write %s: %w", target.Location, err)
	}
	state.Exported = append(state.Exported, target.Location)
	return nil
}
