package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/limaJavier/pap/pkg/milp"
	"github.com/limaJavier/pap/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// SolverFactory returns the solver used for one instance. Heuristic backends need the instance itself,
// external ones only the model
type SolverFactory func(instance model.Instance, variant model.Variant) (milp.Solver, error)

// ExternalSolvers returns a factory handing out the named executable backend for every instance
func ExternalSolvers(name string, executables map[string]string) (SolverFactory, error) {
	solver, err := milp.NewSolver(name, executables)
	if err != nil {
		return nil, err
	}
	return func(model.Instance, model.Variant) (milp.Solver, error) { return solver, nil }, nil
}

// MatchingSolvers is the factory of the in-process matching backend
func MatchingSolvers(instance model.Instance, variant model.Variant) (milp.Solver, error) {
	return model.NewMatchingSolver(instance, variant), nil
}

// Driver runs a batch: every instance of the store is loaded, modeled, solved, validated and reported before the next one starts
type Driver struct {
	store   *model.InstanceStore
	builder model.ModelBuilder
	solvers SolverFactory
	options milp.Options
	sinks   []Sink
	logger  *zap.Logger
}

func NewDriver(store *model.InstanceStore, builder model.ModelBuilder, solvers SolverFactory, options milp.Options, logger *zap.Logger, sinks ...Sink) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		store:   store,
		builder: builder,
		solvers: solvers,
		options: options,
		sinks:   sinks,
		logger:  logger,
	}
}

// Run processes the instances in store order and returns one result per instance. Per-instance failures are
// recorded and the batch continues; only listing errors, sink errors and context cancellation stop it
func (driver *Driver) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0)

	for name, err := range driver.store.List() {
		if err != nil {
			return results, fmt.Errorf("cannot list instances in \"%v\": %w", driver.store.Folder(), err)
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		driver.logger.Info("Running instance", zap.String("instance", name), zap.Stringer("variant", driver.builder.Variant()))
		result := driver.RunInstance(ctx, name)
		driver.logger.Info("Instance finished",
			zap.String("instance", name),
			zap.String("status", string(result.Status)),
			zap.Float64("bound", result.ObjectiveBound),
			zap.Float64("objective", result.ObjectiveValue),
			zap.Duration("time", result.SolveTime),
		)

		for _, sink := range driver.sinks {
			if err := sink.Write(result); err != nil {
				return results, fmt.Errorf("cannot write result of \"%v\": %w", name, err)
			}
		}
		results = append(results, result)
	}

	return results, nil
}

// RunInstance processes a single instance of the store
func (driver *Driver) RunInstance(ctx context.Context, name string) Result {
	variant := driver.builder.Variant()
	result := Result{
		Instance: name,
		Variant:  variant.String(),
	}
	logger := driver.logger.With(zap.String("instance", name))

	//** Load
	instance, err := driver.store.Load(name)
	if err != nil {
		return driver.skip(logger, result, err)
	}

	//** Build
	built, err := driver.builder.Build(instance)
	if err != nil {
		return driver.skip(logger, result, err)
	}
	logger.Debug("Model built",
		zap.Int("variables", len(built.Variables())),
		zap.Int("constraints", len(built.Constraints)),
	)
	if unreferenced := built.Unreferenced(); len(unreferenced) > 0 {
		families := lo.Uniq(lo.Map(unreferenced, func(variable milp.Variable, _ int) string { return variable.Family }))
		logger.Warn("Model declares unreferenced variables", zap.Int("count", len(unreferenced)), zap.Strings("families", families))
	}

	//** Solve
	solver, err := driver.solvers(instance, variant)
	if err != nil {
		return driver.fail(logger, result, err)
	}
	result.Solver = solver.Name()

	options := driver.options
	if options.Logger == nil {
		options.Logger = logger
	}
	start := time.Now()
	solution, err := solver.Solve(ctx, built, options)
	if err != nil {
		result.SolveTime = time.Since(start)
		return driver.fail(logger, result, err)
	}
	result.SolveTime = solution.Runtime
	result.ObjectiveBound = solution.Bound
	result.ObjectiveValue = solution.Objective

	if !solution.HasValues() {
		logger.Warn("Solver returned no solution", zap.Stringer("status", solution.Status))
		result.Status = StatusNoSolution
		result.Reason = solution.Status.String()
		return result
	}

	//** Validate
	assignment := model.AssignmentFromValues(instance, variant, solution.Values)
	passed, rules, err := model.Validate(instance, assignment)
	if err != nil {
		logger.Error("Solution cannot be validated", zap.Error(err))
		result.Status = StatusInvalid
		result.Reason = err.Error()
		return result
	}
	if !passed {
		failure := model.NewValidationFailure(name, rules)
		logger.Error("Solution failed validation", zap.Error(failure))
		result.Status = StatusInvalid
		result.FailedRules = failure.Rules
		result.Reason = failure.Error()
		return result
	}

	if solution.Status == milp.StatusOptimal {
		result.Status = StatusSolved
	} else {
		result.Status = StatusFeasible
	}
	return result
}

func (driver *Driver) skip(logger *zap.Logger, result Result, err error) Result {
	var malformed *model.MalformedInstanceError
	var mismatch *model.DimensionMismatchError
	switch {
	case errors.As(err, &malformed):
		logger.Warn("Skipping malformed instance", zap.String("file", malformed.File), zap.Int("line", malformed.Line), zap.String("reason", malformed.Reason))
	case errors.As(err, &mismatch):
		logger.Warn("Skipping instance with inconsistent dimensions",
			zap.String("field", mismatch.Field),
			zap.Int("row", mismatch.Row),
			zap.Int("expected", mismatch.Expected),
			zap.Int("actual", mismatch.Actual),
		)
	default:
		return driver.fail(logger, result, err)
	}
	result.Status = StatusSkipped
	result.Reason = err.Error()
	return result
}

func (driver *Driver) fail(logger *zap.Logger, result Result, err error) Result {
	logger.Error("Instance failed", zap.Error(err))
	result.Status = StatusError
	result.Reason = err.Error()
	return result
}
