package milp

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type highsSolver struct {
	executable string
}

func NewHighsSolver(executable string) Solver {
	return &highsSolver{executable: executable}
}

func (solver *highsSolver) Name() string {
	return "highs"
}

func (solver *highsSolver) Solve(ctx context.Context, model *Model, options Options) (Solution, error) {
	directory, lpPath, err := prepareWorkspace(model, "highs-*")
	if err != nil {
		return Solution{}, err
	}
	defer os.RemoveAll(directory) // Ensure the workspace is removed after execution

	solutionPath := filepath.Join(directory, "solution.txt")

	start := time.Now()
	stdOut, err := runSolver(ctx, solver.Name(), options, solver.executable,
		"--model_file", lpPath,
		"--solution_file", solutionPath,
		"--time_limit", timeLimitSeconds(options),
		"--random_seed", strconv.Itoa(options.Seed),
	)
	runtime := time.Since(start)
	if err != nil {
		return Solution{}, err
	}

	content, err := os.ReadFile(solutionPath)
	if err != nil {
		return Solution{}, fmt.Errorf("failed to read highs solution file: %w", err)
	}

	solution, err := parseHighsSolution(string(content), stdOut, model)
	if err != nil {
		return Solution{}, err
	}
	solution.Runtime = runtime
	logSolverOutput(options, solver.Name(), stdOut)
	return solution, nil
}

// parseHighsSolution reads a raw-style HiGHS solution file; the dual bound is taken from the solver's report
func parseHighsSolution(content string, report string, model *Model) (Solution, error) {
	var (
		modelStatus string
		primal      string
		objective   = math.NaN()
		raw         = make(map[string]float64)
	)

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	section := ""
	columns := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "Model status":
			section = "status"
			continue
		case line == "# Primal solution values":
			section = "primal"
			continue
		case strings.HasPrefix(line, "# Columns"):
			count, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "# Columns")))
			if err != nil {
				return Solution{}, fmt.Errorf("invalid column count in highs solution: %v", line)
			}
			section, columns = "columns", count
			continue
		case strings.HasPrefix(line, "#"):
			section = ""
			continue
		}

		switch section {
		case "status":
			modelStatus, section = line, ""
		case "primal":
			if strings.HasPrefix(line, "Objective") {
				value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "Objective")), 64)
				if err != nil {
					return Solution{}, fmt.Errorf("invalid objective in highs solution: %v", line)
				}
				objective = value
			} else {
				primal = line
			}
		case "columns":
			if columns == 0 {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return Solution{}, fmt.Errorf("invalid column line in highs solution: %v", line)
			}
			value, err := strconv.ParseFloat(fields[len(fields)-1], 64)
			if err != nil {
				return Solution{}, fmt.Errorf("invalid value for column %v in highs solution: %v", fields[0], err)
			}
			raw[fields[0]] = value
			columns--
		}
	}
	if err := scanner.Err(); err != nil {
		return Solution{}, fmt.Errorf("failed to read highs solution: %w", err)
	}

	solution := Solution{Status: highsStatus(modelStatus, primal)}
	if !solution.HasValues() {
		return solution, nil
	}

	solution.Values = completeValues(model, raw)
	if math.IsNaN(objective) {
		objective = model.Objective.Expr.Value(solution.Values)
	}
	solution.Objective = objective + model.Objective.Constant

	if bound, ok := reportNumber(report, "Dual bound"); ok {
		solution.Bound = bound + model.Objective.Constant
	} else if solution.Status == StatusOptimal {
		solution.Bound = solution.Objective
	} else if model.Objective.Sense == Maximize {
		solution.Bound = math.Inf(1)
	} else {
		solution.Bound = math.Inf(-1)
	}
	return solution, nil
}

func highsStatus(modelStatus, primal string) Status {
	feasible := strings.EqualFold(primal, "Feasible")
	switch strings.ToLower(modelStatus) {
	case "optimal":
		return StatusOptimal
	case "infeasible":
		return StatusInfeasible
	}
	if feasible {
		return StatusFeasible
	}
	if strings.Contains(strings.ToLower(modelStatus), "limit") {
		return StatusNoSolution
	}
	return StatusUnknown
}
