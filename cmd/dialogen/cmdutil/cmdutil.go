// Package cmdutil holds what the dialogen subcommands share: loading the
// configuration named by the root flags, building the logger, provider flag
// overrides and report printing.
package cmdutil

import (
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/config"
	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/generate"
	"github.com/papercomputeco/dialogen/pkg/logger"
)

// Root persistent flag names.
const (
	ConfigFlag = "config"
	DebugFlag  = "debug"
)

// Setup loads the configuration and builds the logger from the root flags.
// A command run without the root falls back to defaults.
func Setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	var (
		path  string
		debug bool
	)
	if f := cmd.Flags().Lookup(ConfigFlag); f != nil {
		path = f.Value.String()
	}
	if f := cmd.Flags().Lookup(DebugFlag); f != nil {
		debug = f.Value.String() == "true"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}
	return cfg, logger.NewLogger(debug), nil
}

// ProviderFlags overrides provider settings from the command line.
type ProviderFlags struct {
	Kind    string
	BaseURL string
	Model   string
	RPM     int
}

// Bind registers the provider flags on cmd.
func (p *ProviderFlags) Bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.Kind, "provider", "", "Provider protocol: ollama or openai")
	cmd.Flags().StringVar(&p.BaseURL, "base-url", "", "Provider base URL")
	cmd.Flags().StringVar(&p.Model, "model", "", "Model name")
	cmd.Flags().IntVar(&p.RPM, "rpm", 0, "Maximum requests per minute (0 for unlimited)")
}

// Apply copies set flags over cfg.
func (p *ProviderFlags) Apply(cfg *completion.Config) {
	if p.Kind != "" {
		cfg.Kind = completion.Kind(p.Kind)
	}
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	if p.Model != "" {
		cfg.Model = p.Model
	}
	if p.RPM > 0 {
		cfg.RequestsPerMinute = p.RPM
	}
}

// OutputPath returns path, or name inside the configured output directory.
func OutputPath(cfg *config.Config, path, name string) string {
	if path != "" {
		return path
	}
	return filepath.Join(cfg.Output.Dir, name)
}

// NewRand seeds a random source, from the clock when seed is zero.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// PrintReport writes the success and failure counts of a run.
func PrintReport(w io.Writer, label string, report *generate.Report) {
	total := report.Successes + report.Failures
	fmt.Fprintf(w, "%s: %d/%d succeeded (%.1f%%), %d failed\n",
		label, report.Successes, total, report.SuccessRatio()*100, report.Failures)

	reasons := make([]string, 0, len(report.ByReason))
	for reason := range report.ByReason {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %-10s %d\n", reason, report.ByReason[generate.Reason(reason)])
	}
}

// PrintStages writes the before and after counts of each pipeline stage.
func PrintStages(w io.Writer, reports []dataset.StageReport) {
	for _, r := range reports {
		fmt.Fprintf(w, "  %-15s %6d -> %-6d (-%d)\n", r.Stage, r.Before, r.After, r.Dropped())
	}
}

// PrintStats writes a dataset summary.
func PrintStats(w io.Writer, stats dataset.Stats) {
	fmt.Fprintf(w, "Total examples: %d\n", stats.Total)
	fmt.Fprintf(w, "Average input length: %.1f\n", stats.AvgInputLength)
	fmt.Fprintf(w, "Average output length: %.1f\n", stats.AvgOutputLength)

	fmt.Fprintln(w, "Scenario types:")
	printCounts(w, stats.Categories)
	fmt.Fprintln(w, "Sources:")
	printCounts(w, stats.Sources)
}

func printCounts(w io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-22s %d\n", k, counts[k])
	}
}
