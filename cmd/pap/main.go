package main

import (
	"fmt"
	"os"

	"github.com/limaJavier/pap/internal/config"
	"github.com/limaJavier/pap/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Persistent flags
	configPath   string
	verbose      bool
	instancesDir string
	variant      string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pap",
	Short: "Personnel Assignment Problem model builder, validator and experiment runner",
	Long: `pap formulates the Personnel Assignment Problem as a binary program, hands it to a MILP solver
and re-checks every returned assignment against the business rules:

  coverage        a duty is claimed by at most one professional
  linking         an assigned duty occupies exactly hd[d] time slots
  slot_capacity   at most S duty-slots per time slot
  repetition_cap  at most rpt[p,t] duty-slots per professional and time slot
  hour_cap        at most H hours per professional

Settings are read from config.json, then PAP_* environment variables, then flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("verbose") {
			cfg.Verbose = verbose
		}
		if flags.Changed("instances") {
			cfg.InstancesDir = instancesDir
		}
		if flags.Changed("variant") {
			cfg.Variant = variant
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the JSON configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and solver output")
	rootCmd.PersistentFlags().StringVar(&instancesDir, "instances", "", "Folder holding the instance files")
	rootCmd.PersistentFlags().StringVar(&variant, "variant", "", `Formulation variant: "direct", "aggregated" or "quadratic"`)

	rootCmd.AddCommand(runCmd, listCmd, inspectCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
