package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dvloznov/statement-analyser/internal/llm"
	"github.com/dvloznov/statement-analyser/internal/logger"
)

// Step is one stage of the analysis pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is the shared state threaded through all pipeline steps.
type State struct {
	RunID      string
	InputPath  string
	OutputPath string

	Store     TabularStore
	Completer llm.Completer

	// Workers bounds concurrent normalization calls. Categorization ignores
	// it and always runs sequentially because of the taxonomy dependency.
	Workers int

	Rows         []RawTransaction
	ExtraHeaders []string
	Interpreted  []*InterpretedTransaction
	Taxonomy     *Taxonomy
	Metrics      *Metrics
}

// NewState prepares run state with a fresh run ID, taxonomy and metrics.
func NewState(store TabularStore, completer llm.Completer, inputPath, outputPath string, workers int) *State {
	if workers < 1 {
		workers = 1
	}
	return &State{
		RunID:      uuid.NewString(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Store:      store,
		Completer:  completer,
		Workers:    workers,
		Taxonomy:   NewTaxonomy(),
		Metrics:    &Metrics{},
	}
}

// Step 1: LoadStep reads the statement rows from the store.
type LoadStep struct{}

func (s *LoadStep) Execute(ctx context.Context, state *State) error {
	rows, extras, err := state.Store.Load(ctx, state.InputPath)
	if err != nil {
		return err
	}
	state.Rows = rows
	state.ExtraHeaders = extras
	log := logger.FromContext(ctx)
	log.Info().
		Str("run_id", state.RunID).
		Int("rows", len(rows)).
		Msg("statement loaded")
	return nil
}

// Step 2: ValidateStep checks the schema invariant on every row and creates
// the interpreted records. Violating rows are marked failed up front; they
// skip both model stages but stay in the output.
type ValidateStep struct{}

func (s *ValidateStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)
	state.Interpreted = make([]*InterpretedTransaction, len(state.Rows))

	for i, row := range state.Rows {
		it := &InterpretedTransaction{RawTransaction: row}
		if violation := ValidateRow(&row); violation != nil {
			it.Fail(violation.Error())
			state.Metrics.SchemaViolations.Add(1)
			log.Warn().Int("row", row.Seq).Str("reason", violation.Reason).Msg("schema violation, row excluded from interpretation")
		}
		state.Interpreted[i] = it
	}
	return nil
}

// Step 3: NormalizeStep rewrites remarks over a bounded worker pool. Rows are
// independent here: no worker touches the taxonomy, and each goroutine writes
// only its own row.
type NormalizeStep struct{}

func (s *NormalizeStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)
	normalizer := NewNormalizer(state.Completer, state.Metrics)

	var wg sync.WaitGroup
	sem := make(chan struct{}, state.Workers)

	for _, it := range state.Interpreted {
		if it.Failed {
			continue
		}
		if strings.TrimSpace(it.Remark) == "" {
			// Nothing to interpret; categorization will sentinel it.
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(it *InterpretedTransaction) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := normalizer.Normalize(ctx, it.RawTransaction)
			if err != nil {
				it.Fail(serviceFailureReason(err))
				log.Error().Err(err).Int("row", it.Seq).Msg("normalization call failed, row marked")
				return
			}
			it.CleanedRemark = res.CleanedRemark
			it.Notes = res.Notes
		}(it)
	}
	wg.Wait()

	log.Info().Int("rows", len(state.Interpreted)).Msg("remarks normalized")
	return nil
}

// Step 4: CategorizeStep assigns categories strictly in row order, one call
// at a time, because each prompt embeds the taxonomy grown by earlier rows.
type CategorizeStep struct{}

func (s *CategorizeStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)
	categorizer := NewCategorizer(state.Completer, state.Taxonomy, state.Metrics)

	for i, it := range state.Interpreted {
		if it.Failed {
			continue
		}
		if strings.TrimSpace(it.Remark) == "" {
			it.Category = UncategorizedLabel
			it.Confidence = ConfidenceLow
			continue
		}

		res, err := categorizer.Categorize(ctx, it.CleanedRemark, it.RawTransaction)
		if err != nil {
			it.Fail(serviceFailureReason(err))
			log.Error().Err(err).Int("row", it.Seq).Msg("categorization call failed, row marked")
			continue
		}
		it.Category = res.Category
		it.Subcategory = res.Subcategory
		it.Confidence = res.Confidence

		if (i+1)%10 == 0 || i+1 == len(state.Interpreted) {
			log.Info().Int("done", i+1).Int("total", len(state.Interpreted)).Msg("categorization progress")
		}
	}
	return nil
}

// Step 5: CountFailuresStep folds per-row outcomes into the run metrics.
type CountFailuresStep struct{}

func (s *CountFailuresStep) Execute(ctx context.Context, state *State) error {
	for _, it := range state.Interpreted {
		if it.Failed {
			state.Metrics.FailedRows.Add(1)
		}
	}
	return nil
}

// Step 6: SaveStep writes the interpreted rows back through the store.
type SaveStep struct{}

func (s *SaveStep) Execute(ctx context.Context, state *State) error {
	if err := state.Store.Save(ctx, state.OutputPath, state.ExtraHeaders, state.Interpreted); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("path", state.OutputPath).
		Int("rows", len(state.Interpreted)).
		Msg("interpreted statement saved")
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewAnalysisPipeline creates the standard pipeline for interpreting a
// statement: load, validate, normalize, categorize, count, save.
func NewAnalysisPipeline() *Pipeline {
	return NewPipeline(
		&LoadStep{},
		&ValidateStep{},
		&NormalizeStep{},
		&CategorizeStep{},
		&CountFailuresStep{},
		&SaveStep{},
	)
}

// serviceFailureReason renders the marker reason recorded on a row whose
// external call failed.
func serviceFailureReason(err error) string {
	var svcErr *llm.ServiceError
	if errors.As(err, &svcErr) {
		return "completion service failure: " + svcErr.Op
	}
	return err.Error()
}
