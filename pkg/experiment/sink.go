package experiment

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// Sink receives the result of every instance of a batch
type Sink interface {
	Write(result Result) error
	Close() error
}

//** CSV

var csvHeader = []string{"instance", "Z_lb", "Z_ub", "time", "status", "failed_rules"}

type csvSink struct {
	directory string
}

// NewCSVSink writes one file per instance, results_<variant>_<instance>.csv, under directory
func NewCSVSink(directory string) (Sink, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create results directory: %w", err)
	}
	return &csvSink{directory: directory}, nil
}

func CSVPath(directory string, result Result) string {
	instance := strings.TrimSuffix(result.Instance, filepath.Ext(result.Instance))
	return filepath.Join(directory, fmt.Sprintf("results_%v_%v.csv", result.Variant, instance))
}

func (sink *csvSink) Write(result Result) (err error) {
	file, err := os.Create(CSVPath(sink.directory, result))
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	writer := csv.NewWriter(file)
	records := [][]string{
		csvHeader,
		{
			result.Instance,
			strconv.FormatFloat(result.ObjectiveBound, 'g', -1, 64),
			strconv.FormatFloat(result.ObjectiveValue, 'g', -1, 64),
			strconv.FormatFloat(result.SolveTime.Seconds(), 'f', 3, 64),
			string(result.Status),
			result.failedRules(),
		},
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("cannot write CSV file: %w", err)
	}
	return nil
}

func (sink *csvSink) Close() error {
	return nil
}

//** SQLite

const sqliteSchema = `CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	instance TEXT NOT NULL,
	variant TEXT NOT NULL,
	solver TEXT NOT NULL,
	z_lb REAL NOT NULL,
	z_ub REAL NOT NULL,
	time_seconds REAL NOT NULL,
	status TEXT NOT NULL,
	failed_rules TEXT NOT NULL,
	reason TEXT NOT NULL,
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

type sqliteSink struct {
	db *sql.DB
}

// NewSQLiteSink appends every result as a row of the results table of the database at path
func NewSQLiteSink(path string) (Sink, error) {
	if directory := filepath.Dir(path); directory != "" {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database \"%v\": %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create results table: %w", err)
	}
	return &sqliteSink{db: db}, nil
}

func (sink *sqliteSink) Write(result Result) error {
	_, err := sink.db.Exec(
		`INSERT INTO results (instance, variant, solver, z_lb, z_ub, time_seconds, status, failed_rules, reason) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Instance,
		result.Variant,
		result.Solver,
		result.ObjectiveBound,
		result.ObjectiveValue,
		result.SolveTime.Seconds(),
		string(result.Status),
		result.failedRules(),
		result.Reason,
	)
	if err != nil {
		return fmt.Errorf("cannot insert result: %w", err)
	}
	return nil
}

func (sink *sqliteSink) Close() error {
	return sink.db.Close()
}
