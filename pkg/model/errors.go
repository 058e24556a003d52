package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// MalformedInstanceError reports a structural defect in an instance file
type MalformedInstanceError struct {
	File   string
	Line   int // 1-based line number, 0 when the defect is not tied to a line (e.g. a missing line at EOF)
	Reason string
	Err    error
}

func (err *MalformedInstanceError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "malformed instance \"%v\"", err.File)
	if err.Line > 0 {
		fmt.Fprintf(&builder, " at line %d", err.Line)
	}
	fmt.Fprintf(&builder, ": %v", err.Reason)
	if err.Err != nil {
		fmt.Fprintf(&builder, ": %v", err.Err)
	}
	return builder.String()
}

func (err *MalformedInstanceError) Unwrap() error {
	return err.Err
}

// DimensionMismatchError reports a matrix or vector whose size disagrees with the declared dimensions
type DimensionMismatchError struct {
	Instance string
	Field    string
	Row      int // Row of the offending matrix, -1 when the mismatch concerns the number of rows
	Expected int
	Actual   int
}

func (err *DimensionMismatchError) Error() string {
	if err.Row >= 0 {
		return fmt.Sprintf("instance \"%v\": row %d of %v has %d columns, expected %d", err.Instance, err.Row, err.Field, err.Actual, err.Expected)
	}
	return fmt.Sprintf("instance \"%v\": %v has %d entries, expected %d", err.Instance, err.Field, err.Actual, err.Expected)
}

// ValidationFailure reports the rules that a candidate assignment violates
type ValidationFailure struct {
	Instance string
	Rules    []Rule
}

func NewValidationFailure(instance string, results map[Rule]bool) *ValidationFailure {
	return &ValidationFailure{
		Instance: instance,
		Rules:    FailedRules(results),
	}
}

func (err *ValidationFailure) Error() string {
	return fmt.Sprintf("instance \"%v\" failed validation: rules [%v]", err.Instance, strings.Join(lo.Map(err.Rules, func(rule Rule, _ int) string { return string(rule) }), ", "))
}
