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

type cbcSolver struct {
	executable string
}

func NewCbcSolver(executable string) Solver {
	return &cbcSolver{executable: executable}
}

func (solver *cbcSolver) Name() string {
	return "cbc"
}

func (solver *cbcSolver) Solve(ctx context.Context, model *Model, options Options) (Solution, error) {
	directory, lpPath, err := prepareWorkspace(model, "cbc-*")
	if err != nil {
		return Solution{}, err
	}
	defer os.RemoveAll(directory) // Ensure the workspace is removed after execution

	solutionPath := filepath.Join(directory, "solution.txt")

	start := time.Now()
	stdOut, err := runSolver(ctx, solver.Name(), options, solver.executable,
		lpPath,
		"-sec", timeLimitSeconds(options),
		"-randomCbcSeed", strconv.Itoa(options.Seed),
		"-solve",
		"-solu", solutionPath,
	)
	runtime := time.Since(start)
	if err != nil {
		return Solution{}, err
	}

	content, err := os.ReadFile(solutionPath)
	if err != nil {
		return Solution{}, fmt.Errorf("failed to read cbc solution file: %w", err)
	}

	solution, err := parseCbcSolution(string(content), stdOut, model)
	if err != nil {
		return Solution{}, err
	}
	solution.Runtime = runtime
	logSolverOutput(options, solver.Name(), stdOut)
	return solution, nil
}

// parseCbcSolution reads a CBC solution file. Its first line holds the status and objective
// ("Optimal - objective value 11.00000000"), the following ones "index name value reduced-cost" for non-zero columns
func parseCbcSolution(content string, report string, model *Model) (Solution, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		return Solution{}, fmt.Errorf("empty cbc solution file")
	}
	header := strings.TrimSpace(scanner.Text())

	objective := math.NaN()
	if position := strings.LastIndex(header, "objective value"); position >= 0 {
		value, err := strconv.ParseFloat(strings.TrimSpace(header[position+len("objective value"):]), 64)
		if err != nil {
			return Solution{}, fmt.Errorf("invalid objective in cbc solution: %v", header)
		}
		objective = value
	}

	raw := make(map[string]float64)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "**" { // Infeasible rows are prefixed with "**"
			fields = fields[1:]
		}
		if len(fields) < 3 {
			return Solution{}, fmt.Errorf("invalid column line in cbc solution: %v", scanner.Text())
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Solution{}, fmt.Errorf("invalid value for column %v in cbc solution: %v", fields[1], err)
		}
		raw[fields[1]] = value
	}
	if err := scanner.Err(); err != nil {
		return Solution{}, fmt.Errorf("failed to read cbc solution: %w", err)
	}

	solution := Solution{Status: cbcStatus(header)}
	if !solution.HasValues() {
		return solution, nil
	}

	solution.Values = completeValues(model, raw)
	if math.IsNaN(objective) {
		objective = model.Objective.Expr.Value(solution.Values)
	}
	solution.Objective = objective + model.Objective.Constant

	// CBC minimizes internally, so the reported lower bound refers to the negated objective when maximizing
	if solution.Status == StatusOptimal {
		solution.Bound = solution.Objective
	} else if bound, ok := reportNumber(report, "Lower bound"); ok {
		if model.Objective.Sense == Maximize {
			bound = -bound
		}
		solution.Bound = bound + model.Objective.Constant
	} else if model.Objective.Sense == Maximize {
		solution.Bound = math.Inf(1)
	} else {
		solution.Bound = math.Inf(-1)
	}
	return solution, nil
}

func cbcStatus(header string) Status {
	lower := strings.ToLower(header)
	switch {
	case strings.HasPrefix(lower, "optimal"):
		return StatusOptimal
	case strings.HasPrefix(lower, "infeasible"), strings.Contains(lower, "integer infeasible"):
		return StatusInfeasible
	case strings.HasPrefix(lower, "stopped") && strings.Contains(lower, "no integer solution"):
		return StatusNoSolution
	case strings.HasPrefix(lower, "stopped"):
		return StatusFeasible
	}
	return StatusUnknown
}
