// Package cli implements the cobra-based command line interface.
//
// Each subcommand lives in its own file. The root command only carries
// the global flags; the harvest pipeline is wired lazily by the
// subcommands that need it.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "githarvest/internal/adapters/driven/config/file"
	"githarvest/internal/adapters/driven/storage/sqlite"
	"githarvest/internal/github"
	"githarvest/internal/logger"
	"githarvest/internal/scrape"
)

// version is injected by Execute.
var version = "dev"

// Global flags bound to the root command.
var (
	verbose    bool
	configPath string
	envFile    string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "githarvest",
	Short: "Harvest structured profiles of GitHub repositories and users",
	Long: `githarvest walks the GitHub REST API with a pool of rotating
credentials and distils repositories into structured profiles: metadata,
file-tree classification, dependencies, issue and pull request counts.

Profiles are stored in a local SQLite database.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file with credentials")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for the profile database (default ~/.githarvest/data)")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// pipeline bundles everything a harvest subcommand needs.
type pipeline struct {
	cfg       configfile.Config
	harvester *scrape.Harvester
	agg       *scrape.Aggregator
	store     *sqlite.Store
}

func (p *pipeline) Close() error {
	return p.store.Close()
}

// buildPipeline wires config, credentials, transport, rules and storage.
func buildPipeline(cmd *cobra.Command) (*pipeline, error) {
	cfg, err := configfile.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.Harvest.DataDir = dataDir
	}

	tokens, err := loadTokens(envFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded %d credentials", len(tokens))

	pool, err := github.NewPool(cmd.Context(), tokens, cfg.API.Timeout())
	if err != nil {
		return nil, err
	}
	ex := github.NewExecutor(pool, cfg.API.BaseURL, cfg.Retry.Policy())

	rules, err := cfg.Patterns.Compile()
	if err != nil {
		return nil, fmt.Errorf("compiling classification patterns: %w", err)
	}

	store, err := sqlite.NewStore(cfg.Harvest.DataDir)
	if err != nil {
		return nil, err
	}

	agg := scrape.NewAggregator(ex, rules, cfg.Harvest.DependencyCap, cfg.Harvest.PerPage)
	return &pipeline{
		cfg:       cfg,
		harvester: scrape.NewHarvester(agg, store, cfg.Harvest.Workers),
		agg:       agg,
		store:     store,
	}, nil
}

// printReport writes a run summary to the command's output.
func printReport(cmd *cobra.Command, report *scrape.Report) {
	cmd.Printf("Run %s: %d targets, %d completed, %d partial, %d failed\n",
		report.RunID, report.Total(), report.Completed, report.Partial, report.Failed)
}

// printPaths writes one classification section of a stored profile.
func printPaths(cmd *cobra.Command, label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	cmd.Printf("  %s:\n", label)
	for _, p := range paths {
		cmd.Printf("    %s\n", p)
	}
}
