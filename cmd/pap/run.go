package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/limaJavier/pap/internal/config"
	"github.com/limaJavier/pap/pkg/experiment"
	"github.com/limaJavier/pap/pkg/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resultsDir string
	solverName string
	timeLimit  time.Duration
	seed       int
	sinks      []string
	sqlitePath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve and validate every instance of the instances folder",
	Long: `Runs a batch: instances are processed one at a time in ascending order of P+D+S. Each one is modeled
with the chosen variant, solved within the time limit, validated and written to the configured sinks.
Malformed instances are skipped; an assignment that breaks a rule is reported as "invalid", never as solved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		flags := cmd.Flags()
		if flags.Changed("results") {
			cfg.ResultsDir = resultsDir
		}
		if flags.Changed("solver") {
			cfg.Solver = solverName
		}
		if flags.Changed("time-limit") {
			cfg.TimeLimit = timeLimit
		}
		if flags.Changed("seed") {
			cfg.Seed = seed
		}
		if flags.Changed("sink") {
			cfg.Sinks = sinks
		}
		if flags.Changed("sqlite") {
			cfg.SQLitePath = sqlitePath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		parsedVariant, err := model.ParseVariant(cfg.Variant)
		if err != nil {
			return err
		}
		builder, err := model.NewModelBuilder(parsedVariant)
		if err != nil {
			return err
		}

		solvers := experiment.SolverFactory(experiment.MatchingSolvers)
		if cfg.Solver != model.MatchingSolverName {
			if solvers, err = experiment.ExternalSolvers(cfg.Solver, cfg.Executables); err != nil {
				return err
			}
		}

		resultSinks, err := openSinks(cfg)
		if err != nil {
			return err
		}
		defer func() {
			for _, sink := range resultSinks {
				err = errors.Join(err, sink.Close())
			}
		}()

		driver := experiment.NewDriver(model.NewInstanceStore(cfg.InstancesDir), builder, solvers, cfg.Options(), logger, resultSinks...)
		results, err := driver.Run(cmd.Context())
		if err != nil {
			return err
		}

		counts := make(map[experiment.Status]int)
		for _, result := range results {
			counts[result.Status]++
		}
		logger.Info("Batch finished",
			zap.Int("instances", len(results)),
			zap.Int("solved", counts[experiment.StatusSolved]),
			zap.Int("feasible", counts[experiment.StatusFeasible]),
			zap.Int("invalid", counts[experiment.StatusInvalid]),
			zap.Int("no_solution", counts[experiment.StatusNoSolution]),
			zap.Int("skipped", counts[experiment.StatusSkipped]),
			zap.Int("error", counts[experiment.StatusError]),
		)
		if counts[experiment.StatusInvalid] > 0 {
			return fmt.Errorf("%d instance(s) returned assignments that failed validation", counts[experiment.StatusInvalid])
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&resultsDir, "results", "", "Folder where the CSV results are written")
	runCmd.Flags().StringVar(&solverName, "solver", "", `Solver backend: "highs", "cbc" or "matching"`)
	runCmd.Flags().DurationVar(&timeLimit, "time-limit", 0, "Wall-clock budget per instance (e.g. 30m)")
	runCmd.Flags().IntVar(&seed, "seed", 0, "Solver random seed")
	runCmd.Flags().StringSliceVar(&sinks, "sink", nil, `Result sinks: "csv", "sqlite"`)
	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Path to the SQLite results database")
}

func openSinks(cfg config.Config) ([]experiment.Sink, error) {
	opened := make([]experiment.Sink, 0, len(cfg.Sinks))
	for _, kind := range cfg.Sinks {
		var sink experiment.Sink
		var err error
		switch kind {
		case config.SinkCSV:
			sink, err = experiment.NewCSVSink(cfg.ResultsDir)
		case config.SinkSQLite:
			sink, err = experiment.NewSQLiteSink(cfg.SQLitePath)
		default:
			err = fmt.Errorf("sink \"%v\" is not supported", kind)
		}
		if err != nil {
			for _, sink := range opened {
				sink.Close()
			}
			return nil, err
		}
		opened = append(opened, sink)
	}
	return opened, nil
}
