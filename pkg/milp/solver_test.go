package milp

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testModel() *Model {
	model := NewModel("test")
	x0 := model.AddVariable("x", 0)
	x1 := model.AddVariable("x", 1)
	x2 := model.AddVariable("x", 2)
	model.SetObjective(*new(Expr).Add(5, x0).Add(7, x1).Add(1, x2), -10, Maximize)
	model.AddConstraint("c", *new(Expr).Add(1, x0).Add(1, x1), LessEqual, 1)
	return model
}

const highsOptimalSolution = `Model status
Optimal

# Primal solution values
Feasible
Objective 8
# Columns 3
x_0 0
x_1 1
x_2 1
# Rows 1
c 1

# Dual solution values
None
`

func TestParseHighsSolution(t *testing.T) {
	t.Run("Optimal", func(t *testing.T) {
		solution, err := parseHighsSolution(highsOptimalSolution, "", testModel())

		require.NoError(t, err)
		assert.Equal(t, StatusOptimal, solution.Status)
		assert.Equal(t, float64(8-10), solution.Objective)
		assert.Equal(t, solution.Objective, solution.Bound)
		assert.Empty(t, cmp.Diff(map[string]float64{"x_0": 0, "x_1": 1, "x_2": 1}, solution.Values))
	})

	t.Run("Time limit with incumbent", func(t *testing.T) {
		content := `Model status
Time limit reached

# Primal solution values
Feasible
Objective 7
# Columns 2
x_1 1
w_x_1_x_2 0
`
		report := "  Dual bound        9.5\n  Gap  26%\n"

		solution, err := parseHighsSolution(content, report, testModel())

		require.NoError(t, err)
		assert.Equal(t, StatusFeasible, solution.Status)
		assert.Equal(t, float64(7-10), solution.Objective)
		assert.Equal(t, 9.5-10, solution.Bound)
		assert.Empty(t, cmp.Diff(map[string]float64{"x_0": 0, "x_1": 1, "x_2": 0}, solution.Values))
		assert.Equal(t, 2.5, solution.Gap())
	})

	t.Run("Time limit without incumbent", func(t *testing.T) {
		content := "Model status\nTime limit reached\n\n# Primal solution values\nNone\n"

		solution, err := parseHighsSolution(content, "", testModel())

		require.NoError(t, err)
		assert.Equal(t, StatusNoSolution, solution.Status)
		assert.False(t, solution.HasValues())
		assert.True(t, math.IsInf(solution.Gap(), 1))
	})

	t.Run("Infeasible", func(t *testing.T) {
		solution, err := parseHighsSolution("Model status\nInfeasible\n", "", testModel())

		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, solution.Status)
	})

	t.Run("Corrupt column", func(t *testing.T) {
		content := "Model status\nOptimal\n# Primal solution values\nFeasible\n# Columns 1\nx_0 one\n"

		_, err := parseHighsSolution(content, "", testModel())
		assert.Error(t, err)
	})
}

func TestParseCbcSolution(t *testing.T) {
	t.Run("Optimal", func(t *testing.T) {
		content := `Optimal - objective value 8.00000000
      1 x_1                      1                      -7
      2 x_2                      1                      -1
`
		solution, err := parseCbcSolution(content, "", testModel())

		require.NoError(t, err)
		assert.Equal(t, StatusOptimal, solution.Status)
		assert.Equal(t, float64(8-10), solution.Objective)
		assert.Equal(t, solution.Objective, solution.Bound)
		assert.Empty(t, cmp.Diff(map[string]float64{"x_0": 0, "x_1": 1, "x_2": 1}, solution.Values))
	})

	t.Run("Stopped on time with incumbent", func(t *testing.T) {
		content := `Stopped on time - objective value 6.00000000
      0 x_0                      1                      -5
   ** 2 x_2                      1                      -1
`
		report := "Lower bound:                    -9\nGap:                            0.5\n"

		solution, err := parseCbcSolution(content, report, testModel())

		require.NoError(t, err)
		assert.Equal(t, StatusFeasible, solution.Status)
		assert.Equal(t, float64(6-10), solution.Objective)
		assert.Equal(t, float64(9-10), solution.Bound)
		assert.Equal(t, float64(1), solution.Values["x_2"])
	})

	t.Run("Stopped without solution", func(t *testing.T) {
		solution, err := parseCbcSolution("Stopped on time - no integer solution - objective value 0.00000000\n", "", testModel())

		require.NoError(t, err)
		assert.Equal(t, StatusNoSolution, solution.Status)
	})

	t.Run("Infeasible", func(t *testing.T) {
		solution, err := parseCbcSolution("Infeasible - objective value 0.00000000\n", "", testModel())

		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, solution.Status)
	})

	t.Run("Empty file", func(t *testing.T) {
		_, err := parseCbcSolution("", "", testModel())
		assert.Error(t, err)
	})
}

func TestNewSolver(t *testing.T) {
	solver, err := NewSolver("highs", map[string]string{"highs": "/opt/highs/bin/highs"})
	require.NoError(t, err)
	assert.Equal(t, "highs", solver.Name())
	assert.Equal(t, "/opt/highs/bin/highs", solver.(*highsSolver).executable)

	solver, err = NewSolver("cbc", nil)
	require.NoError(t, err)
	assert.Equal(t, "cbc", solver.(*cbcSolver).executable)

	_, err = NewSolver("gurobi", nil)
	assert.Error(t, err)
}

func TestTimeLimitSeconds(t *testing.T) {
	assert.Equal(t, "1800", timeLimitSeconds(DefaultOptions()))
	assert.Equal(t, "2", timeLimitSeconds(Options{TimeLimit: 1500 * time.Millisecond}))
}

func TestLogSolverOutput(t *testing.T) {
	output := "Running HiGHS 1.7.0\n\n  Dual bound 12\nWriting the solution\n"

	t.Run("Verbose", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)

		logSolverOutput(Options{Verbose: true, Logger: zap.New(core)}, "highs", output)

		entries := logs.All()
		require.Len(t, entries, 3)
		assert.Equal(t, "Dual bound 12", entries[1].ContextMap()["line"])
		assert.Equal(t, "highs", entries[1].ContextMap()["solver"])
	})

	t.Run("Quiet", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)

		logSolverOutput(Options{Logger: zap.New(core)}, "highs", output)

		assert.Zero(t, logs.Len())
	})

	t.Run("No logger", func(t *testing.T) {
		assert.NotPanics(t, func() { logSolverOutput(Options{Verbose: true}, "cbc", output) })
	})
}
