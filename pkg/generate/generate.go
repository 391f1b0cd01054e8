// Package generate runs bounded-concurrency generation against a completion
// service and aggregates what came back without losing successful work.
package generate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/pkg/combo"
	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/retry"
	"github.com/papercomputeco/dialogen/pkg/scenario"
)

// Options configures a Generator.
type Options struct {
	// Concurrency is the admission cap L. Zero uses DefaultConcurrency.
	Concurrency int
	Selector    *combo.Selector
	Prompts     *PromptBuilder
	Completer   completion.Completer
	Retry       *retry.Controller
	// RequestTimeout bounds each completer call.
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// Generator produces one scenario per task slot.
type Generator struct {
	*runner
	selector *combo.Selector
	prompts  *PromptBuilder
}

// New creates a Generator.
func New(opts Options) (*Generator, error) {
	if opts.Selector == nil {
		return nil, errors.New("selector is required")
	}
	if opts.Prompts == nil {
		return nil, errors.New("prompt builder is required")
	}
	r, err := newRunner(opts.Concurrency, opts.Completer, opts.Retry, opts.RequestTimeout, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Generator{runner: r, selector: opts.Selector, prompts: opts.Prompts}, nil
}

// Run starts n tasks and returns once all of them have finished. The report
// always holds exactly n outcomes, and none when n is not positive.
func (g *Generator) Run(ctx context.Context, n int) *Report {
	runID := uuid.NewString()
	logger := g.logger.With(zap.String("run_id", runID))
	start := time.Now()

	logger.Info("generation started", zap.Int("tasks", n))

	outcomes := g.run(ctx, n, func(ctx context.Context, slot int) Outcome {
		return g.generate(ctx, logger.With(zap.Int("slot", slot)))
	})
	report := newReport(runID, outcomes)

	fields := []zap.Field{
		zap.Int("successes", report.Successes),
		zap.Int("failures", report.Failures),
		zap.Float64("success_ratio", report.SuccessRatio()),
		zap.Duration("elapsed", time.Since(start)),
	}
	for reason, count := range report.ByReason {
		fields = append(fields, zap.Int("failed_"+string(reason), count))
	}
	logger.Info("generation finished", fields...)

	return report
}

func (g *Generator) generate(ctx context.Context, logger *zap.Logger) Outcome {
	c, err := g.selector.Claim()
	if err != nil {
		logger.Warn("no unused combination", zap.Error(err))
		return Outcome{Err: err, Reason: ReasonExhausted}
	}

	committed := false
	defer func() {
		if !committed {
			g.selector.Release(c)
		}
	}()

	logger = logger.With(zap.String("combination", c.String()))
	out := Outcome{Combination: c}

	req, err := g.prompts.Build(c)
	if err != nil {
		out.Err, out.Reason = err, ReasonPrompt
		logger.Error("failed to build prompt", zap.Error(err))
		return out
	}

	raw, err := g.complete(ctx, req)
	if err != nil {
		out.Err = err
		out.Reason, out.Attempts = classify(ctx, err)
		logger.Warn("generation failed", zap.String("reason", string(out.Reason)), zap.Error(err))
		return out
	}

	exchanges, err := scenario.Parse(raw)
	if err != nil {
		out.Err, out.Reason = err, ReasonParse
		logger.Warn("unparseable response", zap.Error(err))
		logger.Debug("raw response", zap.String("preview", completion.Preview(raw, 200)))
		return out
	}

	g.selector.Commit(c)
	committed = true

	out.Scenario = scenario.New(c, exchanges)
	logger.Debug("scenario generated", zap.Int("exchanges", len(exchanges)))
	return out
}
