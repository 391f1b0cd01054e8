package dataset

import "math/rand"

// Stage names reported by Process.
const (
	StageFilter  = "quality_filter"
	StageDedup   = "deduplicate"
	StageBalance = "balance"
)

// PipelineOptions selects the stages to run. Stages always run in the order
// filter, dedup, balance so balancing sees the final candidate pool.
type PipelineOptions struct {
	Filter  bool
	Quality QualityOptions
	Dedup   bool
	// BalanceTarget enables balancing when positive.
	BalanceTarget int
	Rand          *rand.Rand
}

// StageReport records the dataset size around one stage.
type StageReport struct {
	Stage  string `json:"stage"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

// Dropped is the number of examples the stage removed.
func (r StageReport) Dropped() int {
	return r.Before - r.After
}

// Process runs the selected stages and reports the size before and after each.
func Process(examples []TrainingExample, opts PipelineOptions) ([]TrainingExample, []StageReport) {
	var reports []StageReport
	current := examples

	run := func(stage string, fn func([]TrainingExample) []TrainingExample) {
		before := len(current)
		current = fn(current)
		reports = append(reports, StageReport{Stage: stage, Before: before, After: len(current)})
	}

	if opts.Filter {
		run(StageFilter, func(in []TrainingExample) []TrainingExample {
			return FilterQuality(in, opts.Quality)
		})
	}
	if opts.Dedup {
		run(StageDedup, Deduplicate)
	}
	if opts.BalanceTarget > 0 {
		run(StageBalance, func(in []TrainingExample) []TrainingExample {
			return Balance(in, opts.BalanceTarget, opts.Rand)
		})
	}

	return current, reports
}
