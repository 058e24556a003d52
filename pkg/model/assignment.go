package model

import (
	"math"

	"github.com/limaJavier/pap/pkg/milp"
)

// Assignment is a candidate solution: the duty assignment X[p][d] and exactly one of the schedule shapes
type Assignment struct {
	X           [][]int   // X[p][d]
	Y           [][][]int // Y[p][d][t], per-professional schedule (DirectLinear)
	AggregatedY [][]int   // AggregatedY[d][t], per-duty schedule (LinearAggregated, QuadraticLinearized)
}

// NewAssignment returns an all-zero assignment with the schedule shape of the variant
func NewAssignment(instance Instance, variant Variant) Assignment {
	assignment := Assignment{X: zeros(instance.P, instance.D)}
	if variant.PerProfessionalSchedule() {
		assignment.Y = make([][][]int, instance.P)
		for p := range instance.P {
			assignment.Y[p] = zeros(instance.D, instance.T)
		}
	} else {
		assignment.AggregatedY = zeros(instance.D, instance.T)
	}
	return assignment
}

// AssignmentFromValues extracts x and y from solver values, rounding away the solver's numeric tolerance
func AssignmentFromValues(instance Instance, variant Variant, values map[string]float64) Assignment {
	assignment := NewAssignment(instance, variant)
	value := func(family string, indices ...int) int {
		return int(math.Round(values[milp.VariableName(family, indices...)]))
	}

	for p := range instance.P {
		for d := range instance.D {
			assignment.X[p][d] = value("x", p, d)
			if assignment.Y != nil {
				for t := range instance.T {
					assignment.Y[p][d][t] = value("y", p, d, t)
				}
			}
		}
	}
	if assignment.AggregatedY != nil {
		for d := range instance.D {
			for t := range instance.T {
				assignment.AggregatedY[d][t] = value("y", d, t)
			}
		}
	}
	return assignment
}

// Values is the inverse of AssignmentFromValues: it names every x and y entry the way the model builder does
func (assignment Assignment) Values() map[string]float64 {
	values := make(map[string]float64)
	for p, row := range assignment.X {
		for d, value := range row {
			values[milp.VariableName("x", p, d)] = float64(value)
		}
	}
	for p, duties := range assignment.Y {
		for d, row := range duties {
			for t, value := range row {
				values[milp.VariableName("y", p, d, t)] = float64(value)
			}
		}
	}
	for d, row := range assignment.AggregatedY {
		for t, value := range row {
			values[milp.VariableName("y", d, t)] = float64(value)
		}
	}
	return values
}

// Objective evaluates Σ apd[p,d]·x[p,d] + 100·Σ_d (Σ_p x[p,d] − 1) directly on the assignment
func (assignment Assignment) Objective(instance Instance) int {
	objective := 0
	for d := range instance.D {
		covered := -1
		for p := range instance.P {
			objective += instance.Apd[p][d] * assignment.X[p][d]
			covered += assignment.X[p][d]
		}
		objective += CoverageWeight * covered
	}
	return objective
}

func zeros(rows, columns int) [][]int {
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, columns)
	}
	return matrix
}
