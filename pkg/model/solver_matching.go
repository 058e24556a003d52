package model

import (
	"context"
	"time"

	"github.com/limaJavier/pap/pkg/milp"
)

const MatchingSolverName = "matching"

type matchingSolver struct {
	instance Instance
	variant  Variant
}

// NewMatchingSolver returns an in-process heuristic backend that answers with the matching incumbent instead of
// running a MILP solver. Its bound is the instance's affinity upper bound, so the gap tells how far it may be from optimal
func NewMatchingSolver(instance Instance, variant Variant) milp.Solver {
	return &matchingSolver{instance: instance, variant: variant}
}

func (solver *matchingSolver) Name() string {
	return MatchingSolverName
}

func (solver *matchingSolver) Solve(ctx context.Context, model *milp.Model, options milp.Options) (milp.Solution, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return milp.Solution{}, err
	}

	assignment, err := Incumbent(solver.instance, solver.variant)
	if err != nil {
		return milp.Solution{}, err
	}

	incumbent := assignment.Values()
	values := make(map[string]float64, len(model.Variables()))
	for _, variable := range model.Variables() {
		values[variable.Name] = incumbent[variable.Name]
	}

	solution := milp.Solution{
		Status:    milp.StatusFeasible,
		Values:    values,
		Objective: model.Evaluate(values),
		Bound:     float64(solver.instance.ObjectiveUpperBound()),
		Runtime:   time.Since(start),
	}
	if solution.Objective == solution.Bound {
		solution.Status = milp.StatusOptimal
	}
	return solution, nil
}
