package statscmder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dialogen/cmd/dialogen/cmdutil"
	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/store"
)

const statsLongDesc string = `Summarise a training dataset.

Prints the number of examples per scenario type and source and the average
input and output lengths.

Examples:
  dialogen stats data/train.jsonl
  dialogen stats data/train.jsonl --json`

const statsShortDesc string = "Summarise a dataset"

type statsCommander struct {
	asJSON bool
}

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats [input]",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print statistics as JSON")

	return cmd
}

func (c *statsCommander) run(_ context.Context, cmd *cobra.Command, input string) error {
	examples, skipped, err := store.ReadJSONL[dataset.TrainingExample](input)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", input, err)
	}
	stats := dataset.ComputeStats(examples)

	out := cmd.OutOrStdout()
	if c.asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(stats)
	}

	cmdutil.PrintStats(out, stats)
	if skipped > 0 {
		fmt.Fprintf(out, "Skipped %d malformed lines\n", skipped)
	}
	return nil
}
