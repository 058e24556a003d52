package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/limaJavier/pap/internal/config"
	"github.com/limaJavier/pap/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestValidateCommandReportsFailureOnce(t *testing.T) {
	//** Arrange
	directory := t.TempDir()
	instance := model.Instance{
		Name: "P1D1S1.pap",
		P:    1, D: 1, T: 2, S: 1, H: 10,
		Hd:  []int{1},
		Apd: [][]int{{5}},
		Rpt: [][]int{{1, 1}},
	}
	require.NoError(t, model.SaveInstance(filepath.Join(directory, instance.Name), instance))

	// Duty claimed without a slot breaks linking
	assignment := model.NewAssignment(instance, model.DirectLinear)
	assignment.X[0][0] = 1
	path := filepath.Join(directory, "assignment.json")
	require.NoError(t, writeAssignment(path, assignment))

	previousCfg, previousLogger, previousPath := cfg, logger, assignmentPath
	t.Cleanup(func() { cfg, logger, assignmentPath = previousCfg, previousLogger, previousPath })

	core, logs := observer.New(zapcore.DebugLevel)
	cfg = config.Default()
	cfg.InstancesDir = directory
	logger = zap.New(core)
	assignmentPath = path

	var output bytes.Buffer
	validateCmd.SetOut(&output)
	t.Cleanup(func() { validateCmd.SetOut(nil) })

	//** Act
	err := validateCmd.RunE(validateCmd, []string{instance.Name})

	//** Assert
	var failure *model.ValidationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, []model.Rule{model.RuleLinking}, failure.Rules)
	assert.Contains(t, output.String(), "linking         FAILED")
	assert.Zero(t, logs.Len())
}
