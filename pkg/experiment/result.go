package experiment

import (
	"strings"
	"time"

	"github.com/limaJavier/pap/pkg/model"
	"github.com/samber/lo"
)

type Status string

const (
	StatusSolved     Status = "solved"      // Validated and proven optimal
	StatusFeasible   Status = "feasible"    // Validated, optimality not proven within the time limit
	StatusInvalid    Status = "invalid"     // The solver's values break at least one rule
	StatusNoSolution Status = "no_solution" // The solver returned no values (infeasible or timed out empty-handed)
	StatusSkipped    Status = "skipped"     // The instance could not be loaded or modeled
	StatusError      Status = "error"       // The solver failed to run
)

// Result is the record emitted for every instance of a batch
type Result struct {
	Instance       string
	Variant        string
	Solver         string
	ObjectiveBound float64 // Best proven bound (Z_lb)
	ObjectiveValue float64 // Best objective found (Z_ub)
	SolveTime      time.Duration
	Status         Status
	FailedRules    []model.Rule
	Reason         string // Why the instance was skipped, errored or invalid
}

func (result Result) Gap() float64 {
	return result.ObjectiveBound - result.ObjectiveValue
}

func (result Result) failedRules() string {
	return strings.Join(lo.Map(result.FailedRules, func(rule model.Rule, _ int) string { return string(rule) }), ";")
}
