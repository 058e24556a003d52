package milp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Extra wall-clock time granted to a solver process beyond its own time limit before it is killed
const processGrace = time.Minute

// prepareWorkspace creates a temporary directory holding the linearized model in LP format
func prepareWorkspace(model *Model, pattern string) (directory string, lpPath string, err error) {
	directory, err = os.MkdirTemp("", pattern)
	if err != nil {
		return "", "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	lpPath = filepath.Join(directory, "model.lp")
	file, err := os.Create(lpPath)
	if err != nil {
		os.RemoveAll(directory)
		return "", "", fmt.Errorf("failed to create LP file: %w", err)
	}

	if err := model.Linearize().WriteLP(file); err != nil {
		file.Close()
		os.RemoveAll(directory)
		return "", "", fmt.Errorf("failed to write LP file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.RemoveAll(directory)
		return "", "", fmt.Errorf("failed to close LP file: %w", err)
	}

	return directory, lpPath, nil
}

// runSolver executes the solver binary, bounding its lifetime by the time limit plus a grace period
func runSolver(ctx context.Context, name string, options Options, executable string, args ...string) (stdout string, err error) {
	ctx, cancel := context.WithTimeout(ctx, options.TimeLimit+processGrace)
	defer cancel()

	cmd := exec.CommandContext(ctx, executable, args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdOut.String(), fmt.Errorf("an error occurred during %v execution: %v : %v", name, err.Error(), stderr.String())
	}
	return stdOut.String(), nil
}

// reportValue finds the first line whose trimmed content starts with key and returns the remainder without separators
func reportValue(output string, key string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, key) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, key))
		value = strings.TrimSpace(strings.TrimPrefix(value, ":"))
		return value, true
	}
	return "", false
}

// reportNumber is reportValue for numeric entries; only the first field is parsed
func reportNumber(output string, key string) (float64, bool) {
	value, ok := reportValue(output, key)
	if !ok {
		return 0, false
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, false
	}
	number, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return number, true
}

var solverConstructors = map[string]func(executable string) Solver{
	"highs": NewHighsSolver,
	"cbc":   NewCbcSolver,
}

// NewSolver returns the external solver registered under name, using the executable path configured for it.
// An empty path falls back to the solver's name, resolved through PATH
func NewSolver(name string, executables map[string]string) (Solver, error) {
	constructor, ok := solverConstructors[name]
	if !ok {
		return nil, fmt.Errorf("solver \"%v\" is not supported", name)
	}

	executable := executables[name]
	if executable == "" {
		executable = name
	}
	return constructor(executable), nil
}

// Solvers returns the names of the supported external solvers
func Solvers() []string {
	return []string{"highs", "cbc"}
}

// logSolverOutput forwards the solver's report to the logger, one debug entry per non-empty line
func logSolverOutput(options Options, solver string, output string) {
	if !options.Verbose || options.Logger == nil {
		return
	}
	logger := options.Logger.With(zap.String("solver", solver))
	for line := range strings.Lines(output) {
		if line = strings.TrimSpace(line); line != "" {
			logger.Debug("Solver output", zap.String("line", line))
		}
	}
}
