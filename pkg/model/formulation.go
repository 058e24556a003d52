package model

import (
	"fmt"
	"strings"

	"github.com/limaJavier/pap/pkg/milp"
	"github.com/samber/lo"
)

// CoverageWeight scales the term that pushes every duty towards being covered
const CoverageWeight = 100

// Variant selects one of the alternative encodings of the PAP rules
type Variant int

const (
	DirectLinear        Variant = iota // x[p,d] and a per-professional schedule y[p,d,t]
	LinearAggregated                   // x[p,d] and a per-duty schedule y[d,t]; the repetition cap is bilinear
	QuadraticLinearized                // LinearAggregated plus the declared (and unreferenced) product variables z[p,d,t]
)

var variantNames = map[Variant]string{
	DirectLinear:        "direct",
	LinearAggregated:    "aggregated",
	QuadraticLinearized: "quadratic",
}

func (variant Variant) String() string {
	if name, ok := variantNames[variant]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", int(variant))
}

// PerProfessionalSchedule reports whether the variant schedules y[p,d,t] rather than y[d,t]
func (variant Variant) PerProfessionalSchedule() bool {
	return variant == DirectLinear
}

func Variants() []Variant {
	return []Variant{DirectLinear, LinearAggregated, QuadraticLinearized}
}

func ParseVariant(name string) (Variant, error) {
	for variant, variantName := range variantNames {
		if strings.EqualFold(name, variantName) {
			return variant, nil
		}
	}
	return 0, fmt.Errorf("%v is not a valid variant: expected one of %v", name, lo.Values(variantNames))
}

// ModelBuilder turns an instance into an optimization model; it performs no solving
type ModelBuilder interface {
	Variant() Variant
	Build(instance Instance) (*milp.Model, error)
}

func NewModelBuilder(variant Variant) (ModelBuilder, error) {
	formulation, ok := formulations[variant]
	if !ok {
		return nil, fmt.Errorf("variant %v has no formulation", variant)
	}
	return &modelBuilder{variant: variant, formulation: formulation}, nil
}

// Build is a shorthand for NewModelBuilder(variant).Build(instance)
func Build(instance Instance, variant Variant) (*milp.Model, error) {
	builder, err := NewModelBuilder(variant)
	if err != nil {
		return nil, err
	}
	return builder.Build(instance)
}

// formulation is the strategy of a variant: the variable families it declares and the rules it imposes
type formulation struct {
	declarations []func(state *formulationState)
	constraints  []func(state *formulationState)
}

var formulations = map[Variant]formulation{
	DirectLinear:        directLinearFormulation(),
	LinearAggregated:    linearAggregatedFormulation(),
	QuadraticLinearized: quadraticLinearizedFormulation(),
}

type formulationState struct {
	instance Instance
	model    *milp.Model

	x variableTable // x[p,d]
	y variableTable // y[p,d,t] or y[d,t], depending on the variant
	z variableTable // z[p,d,t], quadratic variant only
}

type modelBuilder struct {
	variant     Variant
	formulation formulation
}

func (builder *modelBuilder) Variant() Variant {
	return builder.variant
}

func (builder *modelBuilder) Build(instance Instance) (*milp.Model, error) {
	if err := instance.Check(); err != nil {
		return nil, err
	}

	state := &formulationState{
		instance: instance,
		model:    milp.NewModel(fmt.Sprintf("PAP-%v-%v", builder.variant, instance.Name)),
	}

	for _, declare := range builder.formulation.declarations {
		declare(state)
	}
	assignmentObjective(state)
	for _, constrain := range builder.formulation.constraints {
		constrain(state)
	}

	return state.model, nil
}

func declareAssignment(state *formulationState) {
	state.x = declareFamily(state.model, "x", state.instance.P, state.instance.D)
}

// maximize Σ apd[p,d]·x[p,d] + 100·Σ_d (Σ_p x[p,d] − 1); the −100·D part is kept as the objective constant
func assignmentObjective(state *formulationState) {
	instance := state.instance
	var objective milp.Expr
	for p := range instance.P {
		for d := range instance.D {
			objective.Add(float64(instance.Apd[p][d]+CoverageWeight), state.x.at(p, d))
		}
	}
	state.model.SetObjective(objective, -float64(CoverageWeight*instance.D), milp.Maximize)
}

// Σ_p x[p,d] <= 1 for all d
func coverageConstraints(state *formulationState) {
	instance := state.instance
	for d := range instance.D {
		var expr milp.Expr
		for p := range instance.P {
			expr.Add(1, state.x.at(p, d))
		}
		state.model.AddConstraint(milp.VariableName(string(RuleCoverage), d), expr, milp.LessEqual, 1)
	}
}

// Σ_d hd[d]·x[p,d] <= H for all p
func hourCapConstraints(state *formulationState) {
	instance := state.instance
	for p := range instance.P {
		var expr milp.Expr
		for d := range instance.D {
			expr.Add(float64(instance.Hd[d]), state.x.at(p, d))
		}
		state.model.AddConstraint(milp.VariableName(string(RuleHourCap), p), expr, milp.LessEqual, float64(instance.H))
	}
}
