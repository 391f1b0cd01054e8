package generatecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/cmd/dialogen/cmdutil"
	"github.com/papercomputeco/dialogen/pkg/combo"
	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/generate"
	"github.com/papercomputeco/dialogen/pkg/retry"
	"github.com/papercomputeco/dialogen/pkg/store"
)

const generateLongDesc string = `Generate NPC dialogue scenarios from the configured catalogs.

Each task draws an unused (scenario type, persona, topic) combination, asks the
model for a short conversation and parses the exchanges out of the answer.
Failed tasks are reported and never discard the work of successful ones.

The raw scenarios and their flattened training examples are written as JSONL.

Examples:
  dialogen generate -n 200
  dialogen generate -n 50 -c 8 --provider openai --model gpt-4o-mini -o data/bootstrap.jsonl
  dialogen --config dialogen.toml generate --style persona`

const generateShortDesc string = "Generate dialogue scenarios"

type generateCommander struct {
	count         int
	concurrency   int
	seed          int64
	style         string
	examplesPath  string
	scenariosPath string
	provider      cmdutil.ProviderFlags
}

func NewGenerateCmd() *cobra.Command {
	cmder := &generateCommander{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: generateShortDesc,
		Long:  generateLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().IntVarP(&cmder.count, "count", "n", 0, "Number of scenarios to attempt (default from config)")
	cmd.Flags().IntVarP(&cmder.concurrency, "concurrency", "c", 0, "Maximum in-flight requests (default from config)")
	cmd.Flags().Int64Var(&cmder.seed, "seed", 0, "Seed for combination draws (default from config)")
	cmd.Flags().StringVar(&cmder.style, "style", "", "Instruction style: generic or persona")
	cmd.Flags().StringVarP(&cmder.examplesPath, "out", "o", "", "Training examples output path (default <output.dir>/bootstrap.jsonl)")
	cmd.Flags().StringVar(&cmder.scenariosPath, "scenarios", "", "Raw scenarios output path (default <output.dir>/scenarios.jsonl)")
	cmder.provider.Bind(cmd)

	return cmd
}

func (c *generateCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, logger, err := cmdutil.Setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gen := cfg.Generation
	if c.count > 0 {
		gen.Count = c.count
	}
	if c.concurrency > 0 {
		gen.Concurrency = c.concurrency
	}
	if c.seed != 0 {
		gen.Seed = c.seed
	}
	switch dataset.InstructionStyle(c.style) {
	case "":
	case dataset.StyleGeneric, dataset.StylePersona:
		gen.InstructionStyle = c.style
	default:
		return fmt.Errorf("unknown instruction style %q", c.style)
	}
	c.provider.Apply(&cfg.Provider)

	completer, err := completion.New(cfg.Provider, logger)
	if err != nil {
		return fmt.Errorf("could not create completer: %w", err)
	}
	prompts, err := generate.NewPromptBuilder(cfg.Prompt, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("could not build prompts: %w", err)
	}

	space := cfg.Catalog.Combinations()
	selector := combo.NewSelector(space, combo.NewTracker(), cmdutil.NewRand(gen.Seed), gen.CombinationAttempts)

	generator, err := generate.New(generate.Options{
		Concurrency:    gen.Concurrency,
		Selector:       selector,
		Prompts:        prompts,
		Completer:      completer,
		Retry:          retry.New(gen.Retry(), logger),
		RequestTimeout: gen.Timeout.Duration,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("could not create generator: %w", err)
	}

	logger.Info("generating scenarios",
		zap.String("provider", string(cfg.Provider.Kind)),
		zap.String("model", cfg.Provider.Model),
		zap.Int("count", gen.Count),
		zap.Int("concurrency", gen.Concurrency),
		zap.Int("combination_space", space.Size()),
	)

	report := generator.Run(ctx, gen.Count)
	scenarios := report.Scenarios()
	examples := dataset.Flatten(scenarios, dataset.FlattenOptions{
		Source: gen.Source,
		Style:  dataset.InstructionStyle(gen.InstructionStyle),
	})

	scenariosPath := cmdutil.OutputPath(cfg, c.scenariosPath, "scenarios.jsonl")
	if err := store.WriteJSONL(scenariosPath, scenarios); err != nil {
		return fmt.Errorf("could not write scenarios: %w", err)
	}
	examplesPath := cmdutil.OutputPath(cfg, c.examplesPath, "bootstrap.jsonl")
	if err := store.WriteJSONL(examplesPath, examples); err != nil {
		return fmt.Errorf("could not write examples: %w", err)
	}

	out := cmd.OutOrStdout()
	cmdutil.PrintReport(out, "Generation", report)
	fmt.Fprintf(out, "Wrote %d scenarios to %s\n", len(scenarios), scenariosPath)
	fmt.Fprintf(out, "Wrote %d training examples to %s\n", len(examples), examplesPath)

	return ctx.Err()
}
