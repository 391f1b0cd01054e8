package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/dialogen/cmd/dialogen/cmdutil"
	generatecmder "github.com/papercomputeco/dialogen/cmd/dialogen/generate"
	growcmder "github.com/papercomputeco/dialogen/cmd/dialogen/grow"
	processcmder "github.com/papercomputeco/dialogen/cmd/dialogen/process"
	statscmder "github.com/papercomputeco/dialogen/cmd/dialogen/stats"
	stubcmder "github.com/papercomputeco/dialogen/cmd/dialogen/stub"
)

const rootLongDesc string = `dialogen builds synthetic player/NPC dialogue datasets.

Generate scenarios against a chat model, optionally grow them with the model's
own output, then filter, deduplicate and balance the result into training-ready
JSONL.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dialogen",
		Short:        "Synthetic NPC dialogue dataset generator",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String(cmdutil.ConfigFlag, "", "Path to a TOML config file (default built-in settings)")
	cmd.PersistentFlags().Bool(cmdutil.DebugFlag, false, "Enable debug logging")

	cmd.AddCommand(
		generatecmder.NewGenerateCmd(),
		growcmder.NewGrowCmd(),
		processcmder.NewProcessCmd(),
		statscmder.NewStatsCmd(),
		stubcmder.NewStubCmd(),
	)

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
