package model

import "github.com/samber/lo"

// Instance is a fully specified PAP problem. It is read-only once loaded
type Instance struct {
	Name string

	P int // Professionals
	D int // Duties (days)
	T int // Time slots
	S int // Capacity of each time slot
	H int // Hour cap of each professional

	Hd  []int   // Hd[d]: hours demanded by duty d
	Apd [][]int // Apd[p][d]: affinity of professional p for duty d
	Rpt [][]int // Rpt[p][t]: how many duty-slots professional p may occupy at time t
}

// Check verifies that every vector and matrix agrees with the declared dimensions
func (instance Instance) Check() error {
	if len(instance.Hd) != instance.D {
		return &DimensionMismatchError{Instance: instance.Name, Field: "hd", Row: -1, Expected: instance.D, Actual: len(instance.Hd)}
	}
	if err := checkMatrix(instance.Name, "apd", instance.Apd, instance.P, instance.D); err != nil {
		return err
	}
	return checkMatrix(instance.Name, "rpt", instance.Rpt, instance.P, instance.T)
}

func checkMatrix(instance, field string, matrix [][]int, rows, columns int) error {
	if len(matrix) != rows {
		return &DimensionMismatchError{Instance: instance, Field: field, Row: -1, Expected: rows, Actual: len(matrix)}
	}
	for row, values := range matrix {
		if len(values) != columns {
			return &DimensionMismatchError{Instance: instance, Field: field, Row: row, Expected: columns, Actual: len(values)}
		}
	}
	return nil
}

// ObjectiveUpperBound is a bound every assignment respects: each duty contributes either the best affinity
// among the professionals or the uncovered-duty penalty
func (instance Instance) ObjectiveUpperBound() int {
	return lo.Sum(lo.Times(instance.D, func(d int) int {
		best := -CoverageWeight
		for p := range instance.P {
			best = max(best, instance.Apd[p][d])
		}
		return best
	}))
}
