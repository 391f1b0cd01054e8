package stubcmder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/cmd/dialogen/cmdutil"
	"github.com/papercomputeco/dialogen/stub"
)

const stubLongDesc string = `Run an offline chat model server for dry runs.

The stub answers Ollama /api/chat and OpenAI /chat/completions requests with
canned NPC dialogue, so the whole generate, grow and process flow can be
exercised without a model. A failure rate injects 503 responses to exercise
retries.

Examples:
  dialogen stub --listen :11435
  dialogen generate --base-url http://localhost:11435 -n 20
  dialogen stub --failure-rate 0.3 --latency 200ms`

const stubShortDesc string = "Run an offline stub model server"

type stubCommander struct {
	listen      string
	model       string
	failureRate float64
	latency     time.Duration
	seed        int64
}

func NewStubCmd() *cobra.Command {
	cmder := &stubCommander{}

	cmd := &cobra.Command{
		Use:   "stub",
		Short: stubShortDesc,
		Long:  stubLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", ":11435", "Address to listen on")
	cmd.Flags().StringVar(&cmder.model, "model", stub.DefaultModel, "Model name reported in responses")
	cmd.Flags().Float64Var(&cmder.failureRate, "failure-rate", 0, "Fraction of chat requests answered with 503")
	cmd.Flags().DurationVar(&cmder.latency, "latency", 0, "Delay added to every chat response")
	cmd.Flags().Int64Var(&cmder.seed, "seed", 0, "Seed for failure injection")

	return cmd
}

func (c *stubCommander) run(ctx context.Context, cmd *cobra.Command) error {
	if c.failureRate < 0 || c.failureRate > 1 {
		return errors.New("failure rate must be between 0 and 1")
	}

	_, logger, err := cmdutil.Setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	server := stub.New(stub.Config{
		ListenAddr:  c.listen,
		Model:       c.model,
		FailureRate: c.failureRate,
		Latency:     c.latency,
		Seed:        c.seed,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("stub server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shut down stub server: %w", err)
	}

	stats := server.Stats()
	logger.Info("stub server stopped", zap.Int64("served", stats.Served), zap.Int64("failed", stats.Failed))
	fmt.Fprintf(cmd.OutOrStdout(), "Served %d chat requests (%d failed on purpose)\n", stats.Served, stats.Failed)
	return nil
}
