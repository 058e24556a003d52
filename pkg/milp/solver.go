package milp

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

type Status int

const (
	StatusUnknown    Status = iota
	StatusOptimal           // Proven optimal, the bound gap is closed
	StatusFeasible          // A solution was found but optimality is not proven (e.g. the time limit was reached)
	StatusInfeasible        // The model has no solution
	StatusNoSolution        // The time limit was reached before any solution was found
)

func (status Status) String() string {
	switch status {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusNoSolution:
		return "no_solution"
	}
	return "unknown"
}

// Options configures a single solve. It is passed explicitly on every call so that solves never share configuration
type Options struct {
	TimeLimit time.Duration
	Seed      int
	Verbose   bool
	Logger    *zap.Logger // Receives the solver's own report at debug level when Verbose is set
}

func DefaultOptions() Options {
	return Options{
		TimeLimit: 30 * time.Minute,
		Seed:      42,
	}
}

type Solution struct {
	Status    Status
	Values    map[string]float64 // Best-found value of every declared variable
	Objective float64            // Best objective value found (objective constant included)
	Bound     float64            // Best proven objective bound (objective constant included)
	Runtime   time.Duration
}

func (solution Solution) HasValues() bool {
	return solution.Status == StatusOptimal || solution.Status == StatusFeasible
}

// Gap returns the absolute difference between the best proven bound and the best objective found
func (solution Solution) Gap() float64 {
	if !solution.HasValues() {
		return math.Inf(1)
	}
	return math.Abs(solution.Bound - solution.Objective)
}

// Solver is an external optimizer: given a model it returns variable values, the best objective and the best bound
// found within the time limit. A time limit is not an error, it is reported through the status and the bound gap
type Solver interface {
	Name() string
	Solve(ctx context.Context, model *Model, options Options) (Solution, error)
}

// completeValues makes sure every declared variable has a value, defaulting to zero, and drops unknown names
func completeValues(model *Model, raw map[string]float64) map[string]float64 {
	values := make(map[string]float64, len(model.variables))
	for _, variable := range model.variables {
		values[variable.Name] = raw[variable.Name]
	}
	return values
}

func timeLimitSeconds(options Options) string {
	return fmt.Sprintf("%d", int64(math.Ceil(options.TimeLimit.Seconds())))
}
