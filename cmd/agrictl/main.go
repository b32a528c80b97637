// Command agrictl runs dashboard computations from the terminal: printing a
// page's KPIs, exporting filtered rows, converting datasets to SQLite, and
// writing one-off KPI snapshots.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agridash/internal/config"
	"agridash/internal/dataset"
	"agridash/internal/infrastructure"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	datasetArg string
	verbose    bool
}

// env is what a subcommand needs after flags are parsed.
type env struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "agrictl",
		Short: "Agri-environmental indicators dashboard tooling",
		Long: `agrictl computes the same KPIs and exports as the dashboard server,
reading the dataset configured for it (or the one given with --dataset).`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&g.configFile, "config", "", "YAML config file (default: AGRI_CONFIG_FILE or ./config.yaml)")
	root.PersistentFlags().StringVar(&g.datasetArg, "dataset", "", "dataset file (.csv, .xlsx, .db), overrides the config")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newKPICmd(g),
		newExportCmd(g),
		newImportCmd(g),
		newSnapshotCmd(g),
		newVersionCmd(),
	)
	return root
}

// load resolves configuration and paths. Logs go to stderr so command
// output stays clean.
func (g *globalFlags) load(cmd *cobra.Command) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configFile != "" {
		cfg, err = config.LoadFrom(g.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if g.datasetArg != "" {
		cfg.Paths.DatasetFile = g.datasetArg
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	logger := infrastructure.NewLoggerWithWriter(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})

	return &env{cfg: cfg, paths: paths, logger: logger}, nil
}

func (e *env) dataset(cmd *cobra.Command) (*dataset.Dataset, error) {
	data, err := dataset.Load(cmd.Context(), e.paths.DatasetFile, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return data, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
