package model

import "github.com/limaJavier/pap/pkg/milp"

func directLinearFormulation() formulation {
	return formulation{
		declarations: []func(state *formulationState){
			declareAssignment,
			declareProfessionalSchedule,
		},
		constraints: []func(state *formulationState){
			coverageConstraints,
			professionalLinkingConstraints,
			professionalSlotConstraints,
			professionalRepetitionConstraints,
			hourCapConstraints,
		},
	}
}

func declareProfessionalSchedule(state *formulationState) {
	state.y = declareFamily(state.model, "y", state.instance.P, state.instance.D, state.instance.T)
}

// Σ_t y[p,d,t] = hd[d]·x[p,d] for all p, d
func professionalLinkingConstraints(state *formulationState) {
	instance := state.instance
	for p := range instance.P {
		for d := range instance.D {
			var expr milp.Expr
			for t := range instance.T {
				expr.Add(1, state.y.at(p, d, t))
			}
			expr.Add(-float64(instance.Hd[d]), state.x.at(p, d))
			state.model.AddConstraint(milp.VariableName(string(RuleLinking), p, d), expr, milp.Equal, 0)
		}
	}
}

// Σ_{p,d} y[p,d,t] <= S for all t
func professionalSlotConstraints(state *formulationState) {
	instance := state.instance
	for t := range instance.T {
		var expr milp.Expr
		for p := range instance.P {
			for d := range instance.D {
				expr.Add(1, state.y.at(p, d, t))
			}
		}
		state.model.AddConstraint(milp.VariableName(string(RuleSlotCapacity), t), expr, milp.LessEqual, float64(instance.S))
	}
}

// Σ_d y[p,d,t] <= rpt[p,t] for all p, t
func professionalRepetitionConstraints(state *formulationState) {
	instance := state.instance
	for p := range instance.P {
		for t := range instance.T {
			var expr milp.Expr
			for d := range instance.D {
				expr.Add(1, state.y.at(p, d, t))
			}
			state.model.AddConstraint(milp.VariableName(string(RuleRepetitionCap), p, t), expr, milp.LessEqual, float64(instance.Rpt[p][t]))
		}
	}
}
