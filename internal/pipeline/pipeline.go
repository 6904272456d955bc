package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/deposit-matcher/internal/logger"
)

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially. The run stops at the
// first failing step or when ctx is done.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx).With().Str("run_id", state.RunID).Logger()
	ctx = logger.WithContext(ctx, log)

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d (%s) not started: %w", i+1, step.Name(), err)
		}

		start := time.Now()
		if err := step.Execute(ctx, state); err != nil {
			log.Error().Err(err).Str("step", step.Name()).Msg("pipeline step failed")
			return fmt.Errorf("pipeline step %d (%s) failed: %w", i+1, step.Name(), err)
		}
		log.Debug().Str("step", step.Name()).Dur("duration", time.Since(start)).Msg("pipeline step done")
	}

	log.Info().
		Str("outcome", string(state.Outcome)).
		Int("deposits", len(state.DepositRecords)).
		Int("notes", len(state.FilteredNotes)).
		Int("shared_identities", len(state.SharedIdentities)).
		Int("matches", len(state.Matches)).
		Msg("matching run finished")
	return nil
}

// NewMatchPipeline creates the standard 7-step pipeline from inputs to exports.
// storage may be nil when inputs carry their data and nothing is exported.
func NewMatchPipeline(storage Store) *Pipeline {
	return NewPipeline(
		&FetchInputsStep{Storage: storage},
		&LoadDepositsStep{},
		&LoadNotesStep{},
		&FilterNotesStep{},
		&MatchStep{},
		&SummarizeStep{},
		&ExportStep{Storage: storage},
	)
}
