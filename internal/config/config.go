package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/limaJavier/pap/pkg/milp"
	"github.com/limaJavier/pap/pkg/model"
	"github.com/mitchellh/mapstructure"
)

const (
	DefaultPath = "config.json"
	EnvPrefix   = "PAP_"

	SinkCSV    = "csv"
	SinkSQLite = "sqlite"
)

type Config struct {
	InstancesDir string            `mapstructure:"instancesDir" env:"INSTANCES_DIR"`
	ResultsDir   string            `mapstructure:"resultsDir" env:"RESULTS_DIR"`
	Variant      string            `mapstructure:"variant" env:"VARIANT"`
	Solver       string            `mapstructure:"solver" env:"SOLVER"`
	Executables  map[string]string `mapstructure:"executables" env:"EXECUTABLES"` // Solver name -> executable path
	TimeLimit    time.Duration     `mapstructure:"timeLimit" env:"TIME_LIMIT"`
	Seed         int               `mapstructure:"seed" env:"SEED"`
	Verbose      bool              `mapstructure:"verbose" env:"VERBOSE"`
	Sinks        []string          `mapstructure:"sinks" env:"SINKS"`
	SQLitePath   string            `mapstructure:"sqlitePath" env:"SQLITE_PATH"`
}

func Default() Config {
	options := milp.DefaultOptions()
	return Config{
		InstancesDir: "instances",
		ResultsDir:   "results",
		Variant:      model.DirectLinear.String(),
		Solver:       "highs",
		Executables:  map[string]string{},
		TimeLimit:    options.TimeLimit,
		Seed:         options.Seed,
		Sinks:        []string{SinkCSV},
		SQLitePath:   "results/results.db",
	}
}

// Load reads the JSON file at path over the defaults and then applies PAP_* environment overrides.
// A missing file is only an error when the path was given explicitly (i.e. differs from DefaultPath).
// The result is not validated: callers apply their own overrides first and then call Validate
func Load(path string) (Config, error) {
	config := Default()

	if path == "" {
		path = DefaultPath
	}
	bytes, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	case err != nil:
		return Config{}, fmt.Errorf("cannot read config file \"%v\": %w", path, err)
	default:
		if err := decode(bytes, &config); err != nil {
			return Config{}, fmt.Errorf("cannot decode config file \"%v\": %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix}); err != nil {
		aggregate := env.AggregateError{}
		if errors.As(err, &aggregate) && len(aggregate.Errors) > 0 {
			return Config{}, aggregate.Errors[0]
		}
		return Config{}, err
	}
	return config, nil
}

func decode(bytes []byte, config *Config) error {
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		ErrorUnused: true,
		ZeroFields:  true,
		Result:      config,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(inputJson)
}

func (config Config) Validate() error {
	if _, err := model.ParseVariant(config.Variant); err != nil {
		return err
	}
	if !slices.Contains(Solvers(), config.Solver) {
		return fmt.Errorf("solver \"%v\" is not supported, expected one of %v", config.Solver, Solvers())
	}
	if config.TimeLimit <= 0 {
		return fmt.Errorf("time limit must be positive, got %v", config.TimeLimit)
	}
	for _, sink := range config.Sinks {
		if sink != SinkCSV && sink != SinkSQLite {
			return fmt.Errorf("sink \"%v\" is not supported", sink)
		}
	}
	return nil
}

// Options returns the per-solve options carried by the configuration
func (config Config) Options() milp.Options {
	return milp.Options{
		TimeLimit: config.TimeLimit,
		Seed:      config.Seed,
		Verbose:   config.Verbose,
	}
}

// Solvers lists every backend the configuration may name: the external executables plus the in-process heuristic
func Solvers() []string {
	return append(milp.Solvers(), model.MatchingSolverName)
}
