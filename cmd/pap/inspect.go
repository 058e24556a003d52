package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/limaJavier/pap/pkg/milp"
	"github.com/limaJavier/pap/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the instances of the instances folder in batch order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := model.NewInstanceStore(cfg.InstancesDir)
		for name, err := range store.List() {
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var (
	writeLP bool
	lpOut   string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <instance>",
	Short: "Build the model of an instance and print its size, or its LP file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instance, built, err := loadAndBuild(args[0])
		if err != nil {
			return err
		}

		if writeLP || lpOut != "" {
			output := cmd.OutOrStdout()
			if lpOut != "" {
				file, err := os.Create(lpOut)
				if err != nil {
					return fmt.Errorf("cannot create LP file: %w", err)
				}
				defer file.Close()
				output = file
			}
			return built.Linearize().WriteLP(output)
		}

		writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(writer, "model\t%v\n", built.Name)
		fmt.Fprintf(writer, "dimensions\tP=%d D=%d T=%d S=%d H=%d\n", instance.P, instance.D, instance.T, instance.S, instance.H)
		fmt.Fprintf(writer, "objective bound\t%d\n", instance.ObjectiveUpperBound())
		fmt.Fprintf(writer, "linear\t%v\n", built.Linear())

		families := lo.GroupBy(built.Variables(), func(variable milp.Variable) string { return variable.Family })
		for _, family := range slices.Sorted(maps.Keys(families)) {
			fmt.Fprintf(writer, "variables %v\t%d\n", family, len(families[family]))
		}
		rules := lo.CountValuesBy(built.Constraints, func(constraint milp.Constraint) string { return constraintRule(constraint.Name) })
		for _, rule := range slices.Sorted(maps.Keys(rules)) {
			fmt.Fprintf(writer, "constraints %v\t%d\n", rule, rules[rule])
		}
		if unreferenced := built.Unreferenced(); len(unreferenced) > 0 {
			fmt.Fprintf(writer, "unreferenced\t%d\n", len(unreferenced))
		}
		return writer.Flush()
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&writeLP, "lp", false, "Print the linearized model in LP format")
	inspectCmd.Flags().StringVarP(&lpOut, "out", "o", "", "Write the LP file to this path instead of the standard output")
}

func loadAndBuild(name string) (model.Instance, *milp.Model, error) {
	parsedVariant, err := model.ParseVariant(cfg.Variant)
	if err != nil {
		return model.Instance{}, nil, err
	}
	instance, err := model.NewInstanceStore(cfg.InstancesDir).Load(name)
	if err != nil {
		return model.Instance{}, nil, err
	}
	built, err := model.Build(instance, parsedVariant)
	if err != nil {
		return model.Instance{}, nil, err
	}
	return instance, built, nil
}

// constraintRule strips the trailing indices of a constraint name, e.g. "slot_capacity_3" -> "slot_capacity"
func constraintRule(name string) string {
	parts := strings.Split(name, "_")
	end := len(parts)
	for end > 1 && strings.Trim(parts[end-1], "0123456789") == "" {
		end--
	}
	return strings.Join(parts[:end], "_")
}
