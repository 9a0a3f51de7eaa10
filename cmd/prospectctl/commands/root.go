// Package commands implements the prospectctl command tree.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	app "github.com/okian/draftrange/internal/app"
	"github.com/okian/draftrange/internal/config"
	"github.com/okian/draftrange/pkg/logger"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// globalFlags are shared by every sub-command.
type globalFlags struct {
	verbose    bool
	configPath string
	corpusPath string
	workers    int
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "prospectctl",
		Short: "prospectctl projects draft prospects against a historical corpus",
		Long: `Offline access to the projection pipeline: classify prospects into play-style
archetypes, rank historical comps, score the rule model and report floor,
ceiling and most-likely tiers.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			if g.verbose {
				_ = logger.SetLevelString("debug")
			} else {
				_ = logger.SetLevelString("warn")
			}
			if g.configPath != "" {
				if err := os.Setenv(config.EnvConfigPath, g.configPath); err != nil {
					return fmt.Errorf("set config path: %w", err)
				}
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file (overrides "+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&g.corpusPath, "corpus", "", "historical corpus file (overrides corpus_path)")
	root.PersistentFlags().IntVarP(&g.workers, "workers", "w", 0, "projection concurrency (0 uses the configured value)")

	root.AddCommand(newProjectCmd(g), newReportCmd(g))
	return root
}

// Execute runs the command tree with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// startService loads configuration, starts the pipeline and publishes the
// corpus.
func startService(ctx context.Context, g *globalFlags) (*app.Service, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if g.corpusPath != "" {
		cfg.CorpusPath = g.corpusPath
	}
	opts := []app.Option{app.WithConfig(cfg), app.WithLogger(logger.Named("prospectctl"))}
	if g.workers > 0 {
		opts = append(opts, app.WithWorkerCount(g.workers))
	}
	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	if _, err := svc.LoadCorpus(ctx, cfg.CorpusPath); err != nil {
		svc.Stop()
		return nil, err
	}
	return svc, nil
}
