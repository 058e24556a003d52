package model

import (
	"fmt"

	"github.com/samber/lo"
)

// Rule identifies one of the PAP business rules
type Rule string

const (
	RuleCoverage      Rule = "coverage"       // A duty is claimed by at most one professional
	RuleLinking       Rule = "linking"        // An assigned duty occupies exactly hd[d] slots, an unassigned one none
	RuleSlotCapacity  Rule = "slot_capacity"  // At most S duty-slots per time slot
	RuleRepetitionCap Rule = "repetition_cap" // At most rpt[p,t] duty-slots of professional p at time t
	RuleHourCap       Rule = "hour_cap"       // At most H hours per professional
)

func Rules() []Rule {
	return []Rule{RuleCoverage, RuleLinking, RuleSlotCapacity, RuleRepetitionCap, RuleHourCap}
}

// FailedRules lists the rules whose result is false, in canonical order
func FailedRules(results map[Rule]bool) []Rule {
	return lo.Filter(Rules(), func(rule Rule, _ int) bool {
		passed, ok := results[rule]
		return ok && !passed
	})
}

// NonBinaryValueError reports an assignment entry outside {0, 1}
type NonBinaryValueError struct {
	Instance string
	Variable string
	Value    int
}

func (err *NonBinaryValueError) Error() string {
	return fmt.Sprintf("instance \"%v\": %v = %d is not binary", err.Instance, err.Variable, err.Value)
}

// Report holds the outcome of every rule and, for failed rules, the first offending index
type Report struct {
	Results    map[Rule]bool
	Violations map[Rule]string
}

func (report Report) Passed() bool {
	return lo.EveryBy(Rules(), func(rule Rule) bool { return report.Results[rule] })
}

func (report Report) Failed() []Rule {
	return FailedRules(report.Results)
}

// Validate re-checks every rule on the assignment with exact integer arithmetic. It never consults a built model:
// loads are tallied straight from the assignment tables
func Validate(instance Instance, assignment Assignment) (passed bool, results map[Rule]bool, err error) {
	report, err := Inspect(instance, assignment)
	if err != nil {
		return false, nil, err
	}
	return report.Passed(), report.Results, nil
}

// Inspect is Validate with the first violation of each failed rule
func Inspect(instance Instance, assignment Assignment) (Report, error) {
	if err := instance.Check(); err != nil {
		return Report{}, err
	}
	if err := checkAssignmentShape(instance, assignment); err != nil {
		return Report{}, err
	}

	report := Report{
		Results:    lo.SliceToMap(Rules(), func(rule Rule) (Rule, bool) { return rule, true }),
		Violations: make(map[Rule]string),
	}
	fail := func(rule Rule, format string, args ...any) {
		if report.Results[rule] {
			report.Results[rule] = false
			report.Violations[rule] = fmt.Sprintf(format, args...)
		}
	}

	//** Entries outside {0, 1} fail every rule their table feeds
	if err := firstNonBinary(instance.Name, "x", assignment.X); err != nil {
		fail(RuleCoverage, "%v", err)
		fail(RuleHourCap, "%v", err)
	}
	var scheduleErr *NonBinaryValueError
	if assignment.Y != nil {
		for p, duties := range assignment.Y {
			if scheduleErr = firstNonBinary(instance.Name, fmt.Sprintf("y[%d]", p), duties); scheduleErr != nil {
				break
			}
		}
	} else {
		scheduleErr = firstNonBinary(instance.Name, "y", assignment.AggregatedY)
	}
	if scheduleErr != nil {
		fail(RuleLinking, "%v", scheduleErr)
		fail(RuleSlotCapacity, "%v", scheduleErr)
		fail(RuleRepetitionCap, "%v", scheduleErr)
	}

	//** Tally owners per duty and hours per professional
	owners := make([][]int, instance.D)
	hours := make([]int, instance.P)
	for p, row := range assignment.X {
		for d, assigned := range row {
			if assigned == 1 {
				owners[d] = append(owners[d], p)
				hours[p] += instance.Hd[d]
			}
		}
	}

	for d, professionals := range owners {
		if len(professionals) > 1 {
			fail(RuleCoverage, "duty %d is claimed by professionals %v", d, professionals)
		}
	}
	for p, total := range hours {
		if total > instance.H {
			fail(RuleHourCap, "professional %d works %d hours, cap is %d", p, total, instance.H)
		}
	}

	//** Tally occupied slots
	slotLoad := make([]int, instance.T)
	occupancy := zeros(instance.P, instance.T) // occupancy[p][t]: duty-slots professional p holds at time t

	if assignment.Y != nil {
		for p, duties := range assignment.Y {
			for d, slots := range duties {
				occupied := 0
				for t, value := range slots {
					if value == 1 {
						occupied++
						slotLoad[t]++
						occupancy[p][t]++
					}
				}
				if expected := assignment.X[p][d] * instance.Hd[d]; occupied != expected {
					fail(RuleLinking, "professional %d occupies %d slots for duty %d, expected %d", p, occupied, d, expected)
				}
			}
		}
	} else {
		for d, slots := range assignment.AggregatedY {
			occupied := 0
			for t, value := range slots {
				if value == 1 {
					occupied++
					slotLoad[t]++
					for _, p := range owners[d] {
						occupancy[p][t]++
					}
				}
			}
			if expected := len(owners[d]) * instance.Hd[d]; occupied != expected {
				fail(RuleLinking, "duty %d occupies %d slots, expected %d", d, occupied, expected)
			}
		}
	}

	for t, load := range slotLoad {
		if load > instance.S {
			fail(RuleSlotCapacity, "time slot %d holds %d duty-slots, capacity is %d", t, load, instance.S)
		}
	}
	for p, row := range occupancy {
		for t, occupied := range row {
			if occupied > instance.Rpt[p][t] {
				fail(RuleRepetitionCap, "professional %d holds %d duty-slots at time %d, cap is %d", p, occupied, t, instance.Rpt[p][t])
			}
		}
	}

	return report, nil
}

func checkAssignmentShape(instance Instance, assignment Assignment) error {
	if err := checkMatrix(instance.Name, "x", assignment.X, instance.P, instance.D); err != nil {
		return err
	}

	switch {
	case assignment.Y != nil && assignment.AggregatedY != nil:
		return fmt.Errorf("instance \"%v\": assignment holds both schedule shapes", instance.Name)
	case assignment.Y != nil:
		if len(assignment.Y) != instance.P {
			return &DimensionMismatchError{Instance: instance.Name, Field: "y", Row: -1, Expected: instance.P, Actual: len(assignment.Y)}
		}
		for p, duties := range assignment.Y {
			field := fmt.Sprintf("y[%d]", p)
			if err := checkMatrix(instance.Name, field, duties, instance.D, instance.T); err != nil {
				return err
			}
		}
	case assignment.AggregatedY != nil:
		return checkMatrix(instance.Name, "y", assignment.AggregatedY, instance.D, instance.T)
	default:
		return fmt.Errorf("instance \"%v\": assignment holds no schedule", instance.Name)
	}
	return nil
}

func firstNonBinary(instance, field string, matrix [][]int) *NonBinaryValueError {
	for i, row := range matrix {
		for j, value := range row {
			if value != 0 && value != 1 {
				return &NonBinaryValueError{Instance: instance, Variable: fmt.Sprintf("%v[%d,%d]", field, i, j), Value: value}
			}
		}
	}
	return nil
}
