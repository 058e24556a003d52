package model

import (
	"context"
	"math/rand"
	"testing"

	"github.com/limaJavier/pap/pkg/milp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomInstance(random *rand.Rand) Instance {
	instance := Instance{
		Name: "random",
		P:    random.Intn(4) + 1,
		D:    random.Intn(5) + 1,
		T:    random.Intn(4) + 1,
		S:    random.Intn(3) + 1,
		H:    random.Intn(6) + 1,
	}
	instance.Hd = lo.Times(instance.D, func(int) int { return random.Intn(instance.T + 1) })
	instance.Apd = lo.Times(instance.P, func(int) []int {
		return lo.Times(instance.D, func(int) int { return random.Intn(240) - 120 })
	})
	instance.Rpt = lo.Times(instance.P, func(int) []int {
		return lo.Times(instance.T, func(int) int { return random.Intn(3) })
	})
	return instance
}

func TestIncumbent(t *testing.T) {
	t.Run("Covers every duty of the small instance", func(t *testing.T) {
		for _, variant := range Variants() {
			assignment, err := Incumbent(smallInstance(), variant)
			require.NoError(t, err)

			passed, _, err := Validate(smallInstance(), assignment)
			require.NoError(t, err)
			assert.True(t, passed)
			assert.Equal(t, 2, lo.SumBy(assignment.X, func(row []int) int { return lo.Sum(row) }))
			assert.Equal(t, variant.PerProfessionalSchedule(), assignment.Y != nil)
		}
	})

	t.Run("Always validates", func(t *testing.T) {
		random := rand.New(rand.NewSource(42))
		for range 200 {
			instance := randomInstance(random)
			for _, variant := range Variants() {
				assignment, err := Incumbent(instance, variant)
				require.NoError(t, err)

				report, err := Inspect(instance, assignment)
				require.NoError(t, err)
				assert.True(t, report.Passed(), "instance %+v: %v", instance, report.Violations)
			}
		}
	})

	t.Run("Leaves unprofitable duties uncovered", func(t *testing.T) {
		instance := Instance{
			Name: "penalty",
			P:    1, D: 2, T: 2, S: 1, H: 2,
			Hd:  []int{1, 1},
			Apd: [][]int{{-CoverageWeight, 4}},
			Rpt: [][]int{{1, 1}},
		}

		assignment, err := Incumbent(instance, DirectLinear)

		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, assignment.X[0])
	})

	t.Run("Dimension mismatch", func(t *testing.T) {
		instance := smallInstance()
		instance.Hd = []int{3}

		_, err := Incumbent(instance, DirectLinear)

		var mismatch *DimensionMismatchError
		assert.ErrorAs(t, err, &mismatch)
	})
}

func TestMatchingSolver(t *testing.T) {
	t.Run("Reports a validated solution", func(t *testing.T) {
		//** Arrange
		instance := smallInstance()
		for _, variant := range Variants() {
			model, err := Build(instance, variant)
			require.NoError(t, err)
			solver := NewMatchingSolver(instance, variant)

			//** Act
			solution, err := solver.Solve(context.Background(), model, milp.DefaultOptions())

			//** Assert
			require.NoError(t, err)
			assert.Equal(t, MatchingSolverName, solver.Name())
			assert.True(t, solution.HasValues())
			assert.Len(t, solution.Values, len(model.Variables()))
			assert.Equal(t, float64(instance.ObjectiveUpperBound()), solution.Bound)
			assert.Equal(t, solution.Status == milp.StatusOptimal, solution.Objective == solution.Bound)

			assignment := AssignmentFromValues(instance, variant, solution.Values)
			passed, _, err := Validate(instance, assignment)
			require.NoError(t, err)
			assert.True(t, passed)
			assert.Equal(t, float64(assignment.Objective(instance)), solution.Objective)
			assert.Empty(t, model.Violations(solution.Values, 1e-9))
		}
	})

	t.Run("Optimal when the bound is reached", func(t *testing.T) {
		instance := Instance{
			Name: "single",
			P:    1, D: 1, T: 1, S: 1, H: 1,
			Hd:  []int{1},
			Apd: [][]int{{7}},
			Rpt: [][]int{{1}},
		}
		model, err := Build(instance, DirectLinear)
		require.NoError(t, err)

		solution, err := NewMatchingSolver(instance, DirectLinear).Solve(context.Background(), model, milp.DefaultOptions())

		require.NoError(t, err)
		assert.Equal(t, milp.StatusOptimal, solution.Status)
		assert.Equal(t, float64(7), solution.Objective)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		model, err := Build(smallInstance(), DirectLinear)
		require.NoError(t, err)

		_, err = NewMatchingSolver(smallInstance(), DirectLinear).Solve(ctx, model, milp.DefaultOptions())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
