package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintRule(t *testing.T) {
	assert.Equal(t, "coverage", constraintRule("coverage_3"))
	assert.Equal(t, "slot_capacity", constraintRule("slot_capacity_12"))
	assert.Equal(t, "repetition_cap", constraintRule("repetition_cap_0_4"))
	assert.Equal(t, "w_x_0_1_y_1_2_le_first", constraintRule("w_x_0_1_y_1_2_le_first"))
	assert.Equal(t, "objective", constraintRule("objective"))
}
