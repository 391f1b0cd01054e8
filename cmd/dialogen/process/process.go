package processcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/cmd/dialogen/cmdutil"
	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/store"
)

const processLongDesc string = `Clean a training dataset: filter, deduplicate and balance.

Stages run in order: the quality filter drops examples outside the length band
or whose reply just echoes the player; deduplication drops repeated
(input, output) pairs; balancing resamples to a target size with an equal share
per scenario type. Counts before and after each stage are printed.

Examples:
  dialogen process data/bootstrap.jsonl
  dialogen process data/bootstrap.jsonl data/grown.jsonl --balance 900 -o data/train.jsonl
  dialogen process data/train.jsonl --no-filter --chat data/train_chat.jsonl`

const processShortDesc string = "Filter, deduplicate and balance a dataset"

type processCommander struct {
	outPath   string
	chatPath  string
	statsPath string
	minLength int
	maxLength int
	balance   int
	seed      int64
	noFilter  bool
	noDedup   bool
}

func NewProcessCmd() *cobra.Command {
	cmder := &processCommander{}

	cmd := &cobra.Command{
		Use:   "process [inputs...]",
		Short: processShortDesc,
		Long:  processLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.outPath, "out", "o", "", "Output path (default <output.dir>/processed.jsonl)")
	cmd.Flags().StringVar(&cmder.chatPath, "chat", "", "Also write Human/Assistant chat-text records to this path")
	cmd.Flags().StringVar(&cmder.statsPath, "stats", "", "Also write dataset statistics as JSON to this path")
	cmd.Flags().IntVar(&cmder.minLength, "min-length", -1, "Minimum input/output length in characters (default from config)")
	cmd.Flags().IntVar(&cmder.maxLength, "max-length", -1, "Maximum input/output length in characters, 0 for none (default from config)")
	cmd.Flags().IntVarP(&cmder.balance, "balance", "b", -1, "Balance to this many examples, 0 to skip (default from config)")
	cmd.Flags().Int64Var(&cmder.seed, "seed", 0, "Seed for balancing (default from config)")
	cmd.Flags().BoolVar(&cmder.noFilter, "no-filter", false, "Skip the quality filter")
	cmd.Flags().BoolVar(&cmder.noDedup, "no-dedup", false, "Skip deduplication")

	return cmd
}

func (c *processCommander) run(ctx context.Context, cmd *cobra.Command, inputs []string) error {
	cfg, logger, err := cmdutil.Setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	pipeline := cfg.Pipeline
	if c.minLength >= 0 {
		pipeline.MinLength = c.minLength
	}
	if c.maxLength >= 0 {
		pipeline.MaxLength = c.maxLength
	}
	if c.balance >= 0 {
		pipeline.BalanceTarget = c.balance
	}
	if c.seed != 0 {
		pipeline.Seed = c.seed
	}
	if c.noFilter {
		pipeline.Filter = false
	}
	if c.noDedup {
		pipeline.Dedup = false
	}

	var examples []dataset.TrainingExample
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		records, skipped, err := store.ReadJSONL[dataset.TrainingExample](input)
		if err != nil {
			return fmt.Errorf("could not read %s: %w", input, err)
		}
		if skipped > 0 {
			logger.Warn("skipped malformed lines", zap.String("path", input), zap.Int("skipped", skipped))
		}
		examples = append(examples, records...)
	}

	processed, stages := dataset.Process(examples, dataset.PipelineOptions{
		Filter:        pipeline.Filter,
		Quality:       pipeline.Quality(),
		Dedup:         pipeline.Dedup,
		BalanceTarget: pipeline.BalanceTarget,
		Rand:          cmdutil.NewRand(pipeline.Seed),
	})

	outPath := cmdutil.OutputPath(cfg, c.outPath, "processed.jsonl")
	if err := store.WriteJSONL(outPath, processed); err != nil {
		return fmt.Errorf("could not write %s: %w", outPath, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d examples from %s\n", len(examples), strings.Join(inputs, ", "))
	cmdutil.PrintStages(out, stages)
	fmt.Fprintf(out, "Wrote %d examples to %s\n", len(processed), outPath)

	if c.chatPath != "" {
		if err := store.WriteJSONL(c.chatPath, dataset.ToChatText(processed)); err != nil {
			return fmt.Errorf("could not write %s: %w", c.chatPath, err)
		}
		fmt.Fprintf(out, "Wrote %d chat records to %s\n", len(processed), c.chatPath)
	}
	if c.statsPath != "" {
		if err := store.WriteJSON(c.statsPath, dataset.ComputeStats(processed)); err != nil {
			return fmt.Errorf("could not write %s: %w", c.statsPath, err)
		}
		fmt.Fprintf(out, "Wrote statistics to %s\n", c.statsPath)
	}

	return nil
}
