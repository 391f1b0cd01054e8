package growcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/cmd/dialogen/cmdutil"
	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/generate"
	"github.com/papercomputeco/dialogen/pkg/retry"
	"github.com/papercomputeco/dialogen/pkg/store"
)

const growLongDesc string = `Expand a dataset with new exchanges written by the model itself.

Each round samples existing examples, shows a handful of them to the model as
Player/NPC pairs and asks for a new one. New examples are tagged with source
"self_growth" and join the pool later rounds sample from.

The output holds the input examples followed by the new ones.

Examples:
  dialogen grow data/bootstrap.jsonl
  dialogen grow data/bootstrap.jsonl --rounds 3 --per-round 500 -o data/grown.jsonl`

const growShortDesc string = "Grow a dataset from its own examples"

type growCommander struct {
	outPath     string
	rounds      int
	perRound    int
	concurrency int
	seed        int64
	provider    cmdutil.ProviderFlags
}

func NewGrowCmd() *cobra.Command {
	cmder := &growCommander{}

	cmd := &cobra.Command{
		Use:   "grow [input]",
		Short: growShortDesc,
		Long:  growLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.outPath, "out", "o", "", "Output path (default <output.dir>/grown.jsonl)")
	cmd.Flags().IntVarP(&cmder.rounds, "rounds", "r", 0, "Growth rounds (default from config)")
	cmd.Flags().IntVarP(&cmder.perRound, "per-round", "n", 0, "New examples attempted per round (default from config)")
	cmd.Flags().IntVarP(&cmder.concurrency, "concurrency", "c", 0, "Maximum in-flight requests (default from config)")
	cmd.Flags().Int64Var(&cmder.seed, "seed", 0, "Seed for few-shot sampling")
	cmder.provider.Bind(cmd)

	return cmd
}

func (c *growCommander) run(ctx context.Context, cmd *cobra.Command, input string) error {
	cfg, logger, err := cmdutil.Setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	growth := cfg.Growth
	if c.rounds > 0 {
		growth.Rounds = c.rounds
	}
	if c.perRound > 0 {
		growth.PerRound = c.perRound
	}
	concurrency := cfg.Generation.Concurrency
	if c.concurrency > 0 {
		concurrency = c.concurrency
	}
	c.provider.Apply(&cfg.Provider)

	existing, skipped, err := store.ReadJSONL[dataset.TrainingExample](input)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", input, err)
	}
	if skipped > 0 {
		logger.Warn("skipped malformed lines", zap.String("path", input), zap.Int("skipped", skipped))
	}

	completer, err := completion.New(cfg.Provider, logger)
	if err != nil {
		return fmt.Errorf("could not create completer: %w", err)
	}

	grower, err := generate.NewGrower(generate.GrowOptions{
		Concurrency:    concurrency,
		Rounds:         growth.Rounds,
		PerRound:       growth.PerRound,
		PoolSize:       growth.PoolSize,
		FewShot:        growth.FewShot,
		Style:          dataset.InstructionStyle(cfg.Generation.InstructionStyle),
		Completer:      completer,
		Retry:          retry.New(cfg.Generation.Retry(), logger),
		RequestTimeout: cfg.Generation.Timeout.Duration,
		Rand:           cmdutil.NewRand(c.seed),
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("could not create grower: %w", err)
	}

	grown, reports, growErr := grower.Grow(ctx, existing)

	outPath := cmdutil.OutputPath(cfg, c.outPath, "grown.jsonl")
	all := append(append([]dataset.TrainingExample(nil), existing...), grown...)
	if err := store.WriteJSONL(outPath, all); err != nil {
		return fmt.Errorf("could not write %s: %w", outPath, err)
	}

	out := cmd.OutOrStdout()
	for i, report := range reports {
		cmdutil.PrintReport(out, fmt.Sprintf("Round %d", i+1), report)
	}
	fmt.Fprintf(out, "Grew %d examples to %d (+%d), wrote %s\n", len(existing), len(all), len(grown), outPath)

	return growErr
}
