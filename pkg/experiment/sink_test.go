package experiment

import (
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/limaJavier/pap/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() Result {
	return Result{
		Instance:       "P50D50S1.pap",
		Variant:        "aggregated",
		Solver:         "highs",
		ObjectiveBound: 120,
		ObjectiveValue: 117.5,
		SolveTime:      1500 * time.Millisecond,
		Status:         StatusInvalid,
		FailedRules:    []model.Rule{model.RuleCoverage, model.RuleHourCap},
		Reason:         "failed validation",
	}
}

func TestCSVSink(t *testing.T) {
	//** Arrange
	directory := filepath.Join(t.TempDir(), "results")
	sink, err := NewCSVSink(directory)
	require.NoError(t, err)

	//** Act
	require.NoError(t, sink.Write(sampleResult()))
	require.NoError(t, sink.Close())

	//** Assert
	path := CSVPath(directory, sampleResult())
	assert.Equal(t, filepath.Join(directory, "results_aggregated_P50D50S1.csv"), path)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"instance", "Z_lb", "Z_ub", "time", "status", "failed_rules"},
		{"P50D50S1.pap", "120", "117.5", "1.500", "invalid", "coverage;hour_cap"},
	}, records)
}

func TestSQLiteSink(t *testing.T) {
	//** Arrange
	path := filepath.Join(t.TempDir(), "db", "results.db")
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)

	solved := sampleResult()
	solved.Instance, solved.Status, solved.FailedRules, solved.Reason = "P70D70S1.pap", StatusSolved, nil, ""

	//** Act
	require.NoError(t, sink.Write(sampleResult()))
	require.NoError(t, sink.Write(solved))
	require.NoError(t, sink.Close())

	//** Assert
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT instance, status, failed_rules, z_lb, z_ub, time_seconds FROM results ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		instance, status, failedRules string
		bound, value, seconds         float64
	}
	stored := make([]row, 0)
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.instance, &r.status, &r.failedRules, &r.bound, &r.value, &r.seconds))
		stored = append(stored, r)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []row{
		{"P50D50S1.pap", "invalid", "coverage;hour_cap", 120, 117.5, 1.5},
		{"P70D70S1.pap", "solved", "", 120, 117.5, 1.5},
	}, stored)
}

func TestSQLiteSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	for range 2 {
		sink, err := NewSQLiteSink(path)
		require.NoError(t, err)
		require.NoError(t, sink.Write(sampleResult()))
		require.NoError(t, sink.Close())
	}

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&count))
	assert.Equal(t, 2, count)
}
