package generate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/retry"
	"github.com/papercomputeco/dialogen/pkg/scenario"
)

// Self-growth provenance tags.
const (
	GrowthSource   = "self_growth"
	GrowthCategory = "generated"
)

// Growth defaults.
const (
	DefaultPoolSize = 50
	DefaultFewShot  = 5
)

// GrowOptions configures a Grower.
type GrowOptions struct {
	Concurrency int
	Rounds      int
	PerRound    int
	// PoolSize caps how many existing examples a round samples few-shot
	// examples from.
	PoolSize       int
	FewShot        int
	Style          dataset.InstructionStyle
	Completer      completion.Completer
	Retry          *retry.Controller
	RequestTimeout time.Duration
	Rand           *rand.Rand
	Logger         *zap.Logger
}

// Grower expands a dataset by showing the model a few existing exchanges and
// asking for a new one.
type Grower struct {
	*runner
	opts GrowOptions

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGrower creates a Grower.
func NewGrower(opts GrowOptions) (*Grower, error) {
	if opts.Rounds <= 0 {
		opts.Rounds = 1
	}
	if opts.PerRound < 0 {
		return nil, errors.New("per-round count must not be negative")
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = DefaultPoolSize
	}
	if opts.FewShot <= 0 {
		opts.FewShot = DefaultFewShot
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r, err := newRunner(opts.Concurrency, opts.Completer, opts.Retry, opts.RequestTimeout, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Grower{runner: r, opts: opts, rng: rng}, nil
}

// Grow runs the configured rounds over existing and returns only the new
// examples plus one report per round. Each round samples from everything
// gathered so far, including earlier rounds' output.
func (g *Grower) Grow(ctx context.Context, existing []dataset.TrainingExample) ([]dataset.TrainingExample, []*Report, error) {
	if len(existing) == 0 {
		return nil, nil, errors.New("self-growth needs at least one existing example")
	}

	all := append([]dataset.TrainingExample(nil), existing...)
	var (
		grown   []dataset.TrainingExample
		reports []*Report
	)

	for round := 1; round <= g.opts.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return grown, reports, err
		}

		report := g.round(ctx, round, g.sample(all, g.opts.PoolSize))
		reports = append(reports, report)

		added := dataset.Flatten(report.Scenarios(), dataset.FlattenOptions{
			Source: GrowthSource,
			Style:  g.opts.Style,
		})
		grown = append(grown, added...)
		all = append(all, added...)
	}

	return grown, reports, nil
}

func (g *Grower) round(ctx context.Context, round int, pool []dataset.TrainingExample) *Report {
	runID := uuid.NewString()
	logger := g.logger.With(zap.String("run_id", runID), zap.Int("round", round))
	logger.Info("growth round started", zap.Int("tasks", g.opts.PerRound), zap.Int("pool", len(pool)))

	outcomes := g.run(ctx, g.opts.PerRound, func(ctx context.Context, slot int) Outcome {
		return g.grow(ctx, pool, logger.With(zap.Int("slot", slot)))
	})
	report := newReport(runID, outcomes)

	logger.Info("growth round finished",
		zap.Int("successes", report.Successes),
		zap.Int("failures", report.Failures),
		zap.Float64("success_ratio", report.SuccessRatio()),
	)
	return report
}

func (g *Grower) grow(ctx context.Context, pool []dataset.TrainingExample, logger *zap.Logger) Outcome {
	shots := g.sample(pool, g.opts.FewShot)
	req := completion.Request{Prompt: FewShotPrompt(shots)}

	raw, err := g.complete(ctx, req)
	if err != nil {
		reason, attempts := classify(ctx, err)
		logger.Warn("growth request failed", zap.String("reason", string(reason)), zap.Error(err))
		return Outcome{Err: err, Reason: reason, Attempts: attempts}
	}

	exchange, err := ExtractExchange(raw)
	if err != nil {
		logger.Warn("no exchange in response", zap.Error(err))
		logger.Debug("raw response", zap.String("preview", completion.Preview(raw, 200)))
		return Outcome{Err: err, Reason: ReasonParse}
	}

	return Outcome{Scenario: &scenario.Scenario{
		Category:  GrowthCategory,
		Exchanges: []scenario.Exchange{exchange},
	}}
}

// sample draws up to k examples without replacement.
func (g *Grower) sample(from []dataset.TrainingExample, k int) []dataset.TrainingExample {
	g.mu.Lock()
	idx := g.rng.Perm(len(from))
	g.mu.Unlock()

	k = min(k, len(from))
	out := make([]dataset.TrainingExample, 0, k)
	for _, i := range idx[:k] {
		out = append(out, from[i])
	}
	return out
}

// FewShotPrompt lists the examples as Player/NPC pairs and leaves a Player
// turn open for the model to complete.
func FewShotPrompt(examples []dataset.TrainingExample) string {
	var b strings.Builder
	b.WriteString("Generate a new conversational exchange between a player and an NPC. Here are some examples:\n\n")
	for i, ex := range examples {
		fmt.Fprintf(&b, "Example %d:\nPlayer: %s\nNPC: %s\n\n", i+1, ex.Input, ex.Output)
	}
	b.WriteString("Now generate a new, different conversation:\nPlayer: ")
	return b.String()
}

// ExtractExchange pulls one exchange out of a free-text response. Labelled
// Player/NPC lines are preferred; otherwise the first two non-empty lines are
// taken as the player line and the reply, with any labels removed.
func ExtractExchange(raw string) (scenario.Exchange, error) {
	if exchanges, err := scenario.ParseLines(raw); err == nil {
		return exchanges[0], nil
	}

	var ex scenario.Exchange
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case hasLabel(line, "player:"):
			ex.Player = strings.TrimSpace(line[len("player:"):])
		case hasLabel(line, "npc:"):
			ex.NPC = strings.TrimSpace(line[len("npc:"):])
		case ex.Player == "":
			ex.Player = line
		case ex.NPC == "":
			ex.NPC = line
		}
		if ex.Valid() {
			return ex, nil
		}
	}
	return scenario.Exchange{}, scenario.ErrNoExchanges
}

func hasLabel(line, label string) bool {
	return len(line) >= len(label) && strings.EqualFold(line[:len(label)], label)
}
