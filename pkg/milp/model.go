package milp

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Sense of a constraint's relation between its expression and right-hand side
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (sense Sense) String() string {
	switch sense {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	}
	return fmt.Sprintf("Sense(%d)", int(sense))
}

type ObjectiveSense int

const (
	Maximize ObjectiveSense = iota
	Minimize
)

// Variable is a binary decision variable identified by its family and index tuple (e.g. x[3,7] is named "x_3_7")
type Variable struct {
	Name    string
	Family  string
	Indices []int
}

// Term is a coefficient multiplied by a variable
type Term struct {
	Coefficient float64
	Variable    string
}

// Product is a coefficient multiplied by the product of two binary variables
type Product struct {
	Coefficient float64
	First       string
	Second      string
}

// Expr is a sum of linear terms and bilinear products
type Expr struct {
	Terms    []Term
	Products []Product
}

func (expr *Expr) Add(coefficient float64, variable Variable) *Expr {
	expr.Terms = append(expr.Terms, Term{Coefficient: coefficient, Variable: variable.Name})
	return expr
}

func (expr *Expr) AddProduct(coefficient float64, first, second Variable) *Expr {
	expr.Products = append(expr.Products, Product{Coefficient: coefficient, First: first.Name, Second: second.Name})
	return expr
}

func (expr Expr) Linear() bool {
	return len(expr.Products) == 0
}

// Value evaluates the expression against the given variable values; missing variables count as zero
func (expr Expr) Value(values map[string]float64) float64 {
	value := lo.SumBy(expr.Terms, func(term Term) float64 {
		return term.Coefficient * values[term.Variable]
	})
	value += lo.SumBy(expr.Products, func(product Product) float64 {
		return product.Coefficient * values[product.First] * values[product.Second]
	})
	return value
}

func (expr Expr) variables() []string {
	names := lo.Map(expr.Terms, func(term Term, _ int) string { return term.Variable })
	for _, product := range expr.Products {
		names = append(names, product.First, product.Second)
	}
	return names
}

type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Holds reports whether the constraint is satisfied by the values within the given tolerance
func (constraint Constraint) Holds(values map[string]float64, tolerance float64) bool {
	lhs := constraint.Expr.Value(values)
	switch constraint.Sense {
	case LessEqual:
		return lhs <= constraint.RHS+tolerance
	case GreaterEqual:
		return lhs >= constraint.RHS-tolerance
	default:
		return math.Abs(lhs-constraint.RHS) <= tolerance
	}
}

type Objective struct {
	Expr     Expr
	Constant float64
	Sense    ObjectiveSense
}

// Model is a pure binary program: every declared variable takes values in {0, 1}
type Model struct {
	Name        string
	Constraints []Constraint
	Objective   Objective

	variables []Variable
	declared  map[string]int
}

func NewModel(name string) *Model {
	return &Model{
		Name:     name,
		declared: make(map[string]int),
	}
}

// AddVariable declares the binary variable family[indices...] and returns it. Declaring the same variable twice returns the existing one
func (model *Model) AddVariable(family string, indices ...int) Variable {
	name := VariableName(family, indices...)
	if position, ok := model.declared[name]; ok {
		return model.variables[position]
	}

	variable := Variable{
		Name:    name,
		Family:  family,
		Indices: append([]int(nil), indices...),
	}
	model.declared[name] = len(model.variables)
	model.variables = append(model.variables, variable)
	return variable
}

// AddConstraint appends a named constraint. Every variable in the expression must have been declared beforehand
func (model *Model) AddConstraint(name string, expr Expr, sense Sense, rhs float64) {
	model.checkExpression(name, expr)
	model.Constraints = append(model.Constraints, Constraint{
		Name:  name,
		Expr:  expr,
		Sense: sense,
		RHS:   rhs,
	})
}

func (model *Model) SetObjective(expr Expr, constant float64, sense ObjectiveSense) {
	model.checkExpression("objective", expr)
	model.Objective = Objective{
		Expr:     expr,
		Constant: constant,
		Sense:    sense,
	}
}

func (model *Model) Variables() []Variable {
	return model.variables
}

func (model *Model) Variable(name string) (Variable, bool) {
	position, ok := model.declared[name]
	if !ok {
		return Variable{}, false
	}
	return model.variables[position], true
}

// Family returns the declared variables of the given family in declaration order
func (model *Model) Family(family string) []Variable {
	return lo.Filter(model.variables, func(variable Variable, _ int) bool { return variable.Family == family })
}

func (model *Model) Linear() bool {
	return model.Objective.Expr.Linear() && lo.EveryBy(model.Constraints, func(constraint Constraint) bool {
		return constraint.Expr.Linear()
	})
}

// Unreferenced returns the variables that appear neither in a constraint nor in the objective
func (model *Model) Unreferenced() []Variable {
	referenced := make(map[string]bool)
	for _, name := range model.Objective.Expr.variables() {
		referenced[name] = true
	}
	for _, constraint := range model.Constraints {
		for _, name := range constraint.Expr.variables() {
			referenced[name] = true
		}
	}
	return lo.Filter(model.variables, func(variable Variable, _ int) bool { return !referenced[variable.Name] })
}

// Evaluate returns the objective value (constant included) for the given variable values
func (model *Model) Evaluate(values map[string]float64) float64 {
	return model.Objective.Expr.Value(values) + model.Objective.Constant
}

// Violations returns the names of the constraints that the values do not satisfy
func (model *Model) Violations(values map[string]float64, tolerance float64) []string {
	violated := lo.Filter(model.Constraints, func(constraint Constraint, _ int) bool {
		return !constraint.Holds(values, tolerance)
	})
	return lo.Map(violated, func(constraint Constraint, _ int) string { return constraint.Name })
}

func (model *Model) checkExpression(owner string, expr Expr) {
	for _, name := range expr.variables() {
		if _, ok := model.declared[name]; !ok {
			log.Panicf("%v references variable \"%v\" which has not been declared in model \"%v\"", owner, name, model.Name)
		}
	}
}

// VariableName builds the canonical name of a variable from its family and indices (x, 3, 7 -> "x_3_7")
func VariableName(family string, indices ...int) string {
	var builder strings.Builder
	builder.WriteString(family)
	for _, index := range indices {
		builder.WriteByte('_')
		builder.WriteString(strconv.Itoa(index))
	}
	return builder.String()
}
