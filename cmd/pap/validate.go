package main

import (
	"fmt"
	"os"

	"github.com/limaJavier/pap/pkg/model"
	"github.com/spf13/cobra"
)

var (
	assignmentPath string
	incumbentOut   string
)

var validateCmd = &cobra.Command{
	Use:   "validate <instance>",
	Short: "Check an assignment against every rule",
	Long: `Checks the assignment read from --assignment against every rule of the instance. Without --assignment
the matching incumbent of the instance is built and checked instead (and written to --write-incumbent if given).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsedVariant, err := model.ParseVariant(cfg.Variant)
		if err != nil {
			return err
		}
		instance, err := model.NewInstanceStore(cfg.InstancesDir).Load(args[0])
		if err != nil {
			return err
		}

		var assignment model.Assignment
		if assignmentPath != "" {
			if assignment, err = model.AssignmentFromJson(assignmentPath); err != nil {
				return err
			}
		} else {
			if assignment, err = model.Incumbent(instance, parsedVariant); err != nil {
				return err
			}
			if incumbentOut != "" {
				if err := writeAssignment(incumbentOut, assignment); err != nil {
					return err
				}
			}
		}

		report, err := model.Inspect(instance, assignment)
		if err != nil {
			return err
		}

		output := cmd.OutOrStdout()
		for _, rule := range model.Rules() {
			if report.Results[rule] {
				fmt.Fprintf(output, "%-15v ok\n", rule)
			} else {
				fmt.Fprintf(output, "%-15v FAILED  %v\n", rule, report.Violations[rule])
			}
		}
		fmt.Fprintf(output, "objective       %d (bound %d)\n", assignment.Objective(instance), instance.ObjectiveUpperBound())

		if !report.Passed() {
			return model.NewValidationFailure(instance.Name, report.Results)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&assignmentPath, "assignment", "a", "", "JSON assignment file to check")
	validateCmd.Flags().StringVar(&incumbentOut, "write-incumbent", "", "Write the matching incumbent to this JSON file")
}

func writeAssignment(path string, assignment model.Assignment) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create assignment file: %w", err)
	}
	defer file.Close()
	return assignment.WriteJson(file)
}
