package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"exotic/pkg/config"
	"exotic/pkg/errors"
	"exotic/pkg/logging"
	"exotic/pkg/metrics"
	"exotic/pkg/scenario"
	"exotic/pkg/source"
)

// Input holds the command line options.
type Input struct {
	oracle        bool
	oracleTimeout time.Duration
	showMetrics   bool
	verbose       bool
	maxCallDepth  int
}

func createRootCommand(ctx context.Context, input *Input, version string) *cobra.Command {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}

	rootCmd := &cobra.Command{
		Use:          "exotic-probe",
		Short:        "Run proxy scenarios against the engine",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; using defaults\n", cfgErr)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&input.verbose, "verbose", "v", false, "log every trap dispatch")

	runCmd := &cobra.Command{
		Use:   "run [files or directories...]",
		Short: "Run scenarios and report PASS/FAIL",
		RunE:  newRunCommand(ctx, input, cfg),
	}
	runCmd.Flags().BoolVar(&input.oracle, "oracle", cfg.Probe.Oracle, "cross-check scenarios against goja")
	runCmd.Flags().DurationVar(&input.oracleTimeout, "oracle-timeout", scenario.DefaultOracleTimeout, "time limit for one oracle program")
	runCmd.Flags().BoolVar(&input.showMetrics, "metrics", false, "print trap dispatch counters after the run")
	runCmd.Flags().IntVar(&input.maxCallDepth, "max-call-depth", cfg.Engine.MaxCallDepth, "engine call-depth limit")

	listCmd := &cobra.Command{
		Use:   "list [files or directories...]",
		Short: "List scenario names",
		RunE:  newListCommand(cfg),
	}

	rootCmd.AddCommand(runCmd, listCmd)
	return rootCmd
}

func newRunCommand(ctx context.Context, input *Input, cfg *config.Config) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logCfg := cfg.LoggerConfig()
		if input.verbose {
			logCfg.Level = "debug"
			logCfg.Development = true
		}
		logger, err := logging.New(logCfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		scenarios, err := loadAll(cmd.ErrOrStderr(), scenarioPaths(args, cfg))
		if err != nil {
			return err
		}

		m := metrics.New()
		opts := []scenario.Option{
			scenario.WithLogger(logger),
			scenario.WithMetrics(m),
			scenario.WithMaxCallDepth(input.maxCallDepth),
		}
		if input.oracle {
			opts = append(opts, scenario.WithOracle(scenario.NewOracle(input.oracleTimeout)))
		}
		results, err := scenario.NewRunner(opts...).RunAll(ctx, scenarios)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, res := range results {
			if res.Passed {
				fmt.Fprintf(out, "PASS %s\n", res.Name)
				continue
			}
			failed++
			fmt.Fprintf(out, "FAIL %s\n", res.Name)
			for _, f := range res.Failures {
				fmt.Fprintf(out, "    %s\n", f)
			}
			for _, f := range res.OracleFailures {
				fmt.Fprintf(out, "    %s\n", f)
			}
		}
		logger.Info("probe finished", zap.Int("scenarios", len(results)), zap.Int("failed", failed))

		if input.showMetrics {
			fmt.Fprintln(out)
			if err := m.WriteSummary(out); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
		}
		return nil
	}
}

func newListCommand(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scenarios, err := loadAll(cmd.ErrOrStderr(), scenarioPaths(args, cfg))
		if err != nil {
			return err
		}
		for _, s := range scenarios {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.Name, s.Pos)
		}
		return nil
	}
}

func scenarioPaths(args []string, cfg *config.Config) []string {
	if len(args) == 0 {
		return []string{cfg.Probe.ScenarioDir}
	}
	return args
}

// loadAll expands directories to their *.yaml files and loads every file.
// Scenario errors are displayed with their source line before returning.
func loadAll(stderr io.Writer, paths []string) ([]*scenario.Scenario, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(p, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	sort.Strings(files)

	var all []*scenario.Scenario
	for _, f := range files {
		sf, err := source.Read(f)
		if err != nil {
			return nil, err
		}
		scenarios, err := scenario.ParseSource(sf)
		if err != nil {
			var se *errors.ScenarioError
			if stderrors.As(err, &se) {
				errors.DisplayErrors(stderr, sf.Content, []errors.ExoticError{se})
			}
			return nil, err
		}
		all = append(all, scenarios...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no scenario files in %v", paths)
	}
	return all, nil
}
