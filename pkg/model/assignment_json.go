package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mitchellh/mapstructure"
)

type rawAssignment struct {
	X           [][]float64   `mapstructure:"x"`
	Y           [][][]float64 `mapstructure:"y"`
	AggregatedY [][]float64   `mapstructure:"yAggregated"`
}

// AssignmentFromJson reads an assignment file: {"x": [[...]], "y": [[[...]]]} for per-professional schedules or
// {"x": [[...]], "yAggregated": [[...]]} for per-duty schedules
func AssignmentFromJson(file string) (Assignment, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Assignment{}, fmt.Errorf("cannot read assignment file \"%v\": %w", file, err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Assignment{}, fmt.Errorf("cannot parse assignment file \"%v\": %w", file, err)
	}

	var raw rawAssignment
	if err := mapstructure.Decode(inputJson, &raw); err != nil {
		return Assignment{}, fmt.Errorf("cannot decode assignment file \"%v\": %w", file, err)
	}

	assignment := Assignment{}
	if assignment.X, err = integerMatrix(file, "x", raw.X); err != nil {
		return Assignment{}, err
	}
	if raw.Y != nil {
		assignment.Y = make([][][]int, len(raw.Y))
		for p, duties := range raw.Y {
			if assignment.Y[p], err = integerMatrix(file, fmt.Sprintf("y[%d]", p), duties); err != nil {
				return Assignment{}, err
			}
		}
	}
	if raw.AggregatedY != nil {
		if assignment.AggregatedY, err = integerMatrix(file, "yAggregated", raw.AggregatedY); err != nil {
			return Assignment{}, err
		}
	}
	return assignment, nil
}

// WriteJson is the inverse of AssignmentFromJson
func (assignment Assignment) WriteJson(w io.Writer) error {
	output := map[string]any{"x": assignment.X}
	if assignment.Y != nil {
		output["y"] = assignment.Y
	}
	if assignment.AggregatedY != nil {
		output["yAggregated"] = assignment.AggregatedY
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func integerMatrix(file, field string, matrix [][]float64) ([][]int, error) {
	if matrix == nil {
		return nil, nil
	}
	result := make([][]int, len(matrix))
	for i, row := range matrix {
		result[i] = make([]int, len(row))
		for j, value := range row {
			if value != math.Trunc(value) {
				return nil, fmt.Errorf("assignment file \"%v\": %v[%d,%d] = %v is not an integer", file, field, i, j, value)
			}
			result[i][j] = int(value)
		}
	}
	return result, nil
}
