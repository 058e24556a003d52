package milp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const termsPerLine = 8 // Keeps LP lines well below the 510 characters accepted by most readers

var ErrNonlinear = errors.New("model contains bilinear products; linearize it before writing")

// WriteLP serializes the model in CPLEX-LP format. The objective constant is not written, solvers report values without it
func (model *Model) WriteLP(w io.Writer) error {
	if !model.Linear() {
		return ErrNonlinear
	}

	writer := bufio.NewWriter(w)
	fmt.Fprintf(writer, "\\ Model %v\n", model.Name)
	if model.Objective.Constant != 0 {
		fmt.Fprintf(writer, "\\ Objective constant %v is not part of the written objective\n", formatNumber(model.Objective.Constant))
	}

	if model.Objective.Sense == Maximize {
		writer.WriteString("Maximize\n")
	} else {
		writer.WriteString("Minimize\n")
	}
	writer.WriteString(" obj:")
	writeTerms(writer, model.Objective.Expr.Terms, model.firstVariable())
	writer.WriteString("\n")

	writer.WriteString("Subject To\n")
	for _, constraint := range model.Constraints {
		nonZero := nonZeroTerms(constraint.Expr.Terms)
		if len(nonZero) == 0 {
			// Constant constraint (0 <sense> rhs): skip it if it holds, otherwise the model is trivially infeasible
			if !constraint.Holds(nil, 0) {
				return fmt.Errorf("constraint \"%v\" has no variables and cannot hold: 0 %v %v", constraint.Name, constraint.Sense, constraint.RHS)
			}
			continue
		}

		fmt.Fprintf(writer, " %v:", constraint.Name)
		writeTerms(writer, nonZero, "")
		fmt.Fprintf(writer, " %v %v\n", constraint.Sense, formatNumber(constraint.RHS))
	}

	writer.WriteString("Binaries\n")
	for i, variable := range model.variables {
		if i%termsPerLine == 0 {
			writer.WriteString(" ")
		}
		writer.WriteString(variable.Name)
		if i%termsPerLine == termsPerLine-1 || i == len(model.variables)-1 {
			writer.WriteString("\n")
		} else {
			writer.WriteString(" ")
		}
	}
	writer.WriteString("End\n")

	return writer.Flush()
}

// ToLP returns the CPLEX-LP representation of the model
func (model *Model) ToLP() (string, error) {
	var builder strings.Builder
	if err := model.WriteLP(&builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func (model *Model) firstVariable() string {
	if len(model.variables) == 0 {
		return ""
	}
	return model.variables[0].Name
}

func writeTerms(writer *bufio.Writer, terms []Term, placeholder string) {
	terms = nonZeroTerms(terms)
	if len(terms) == 0 && placeholder != "" {
		fmt.Fprintf(writer, " 0 %v", placeholder) // LP readers require at least one term
		return
	}

	for i, term := range terms {
		if i > 0 && i%termsPerLine == 0 {
			writer.WriteString("\n  ")
		}
		sign := "+"
		coefficient := term.Coefficient
		if coefficient < 0 {
			sign = "-"
			coefficient = -coefficient
		}
		if i == 0 && sign == "+" {
			fmt.Fprintf(writer, " %v %v", formatNumber(coefficient), term.Variable)
		} else {
			fmt.Fprintf(writer, " %v %v %v", sign, formatNumber(coefficient), term.Variable)
		}
	}
}

func nonZeroTerms(terms []Term) []Term {
	nonZero := make([]Term, 0, len(terms))
	for _, term := range terms {
		if term.Coefficient != 0 {
			nonZero = append(nonZero, term)
		}
	}
	return nonZero
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
