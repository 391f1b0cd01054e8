package generate

import (
	"sort"

	"github.com/papercomputeco/dialogen/pkg/combo"
	"github.com/papercomputeco/dialogen/pkg/scenario"
)

// Reason tags why a task failed.
type Reason string

const (
	ReasonExhausted Reason = "exhausted"
	ReasonPrompt    Reason = "prompt"
	ReasonTransport Reason = "transport"
	ReasonTimeout   Reason = "timeout"
	ReasonParse     Reason = "parse"
	ReasonPanic     Reason = "panic"
	ReasonCancelled Reason = "cancelled"
)

// Outcome is the result of one task slot. Exactly one of Scenario or Err is set.
type Outcome struct {
	Slot        int
	Combination combo.Combination
	Scenario    *scenario.Scenario
	Err         error
	Reason      Reason
	// Attempts is the number of calls made to the completer on failure.
	Attempts int
}

// OK reports whether the task produced a scenario.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Scenario != nil
}

// Report aggregates the outcomes of one run.
type Report struct {
	RunID     string
	Outcomes  []Outcome
	Successes int
	Failures  int
	ByReason  map[Reason]int
}

func newReport(runID string, outcomes []Outcome) *Report {
	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].Slot < outcomes[j].Slot })

	r := &Report{
		RunID:    runID,
		Outcomes: outcomes,
		ByReason: make(map[Reason]int),
	}
	for _, o := range outcomes {
		if o.OK() {
			r.Successes++
			continue
		}
		r.Failures++
		r.ByReason[o.Reason]++
	}
	return r
}

// SuccessRatio is successes over total outcomes, zero for an empty run.
func (r *Report) SuccessRatio() float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}
	return float64(r.Successes) / float64(len(r.Outcomes))
}

// Scenarios returns the successful scenarios in slot order.
func (r *Report) Scenarios() []*scenario.Scenario {
	out := make([]*scenario.Scenario, 0, r.Successes)
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o.Scenario)
		}
	}
	return out
}
