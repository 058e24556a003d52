package model

import "github.com/limaJavier/pap/pkg/milp"

func linearAggregatedFormulation() formulation {
	return formulation{
		declarations: []func(state *formulationState){
			declareAssignment,
			declareDutySchedule,
		},
		constraints: aggregatedConstraints(),
	}
}

func aggregatedConstraints() []func(state *formulationState) {
	return []func(state *formulationState){
		coverageConstraints,
		dutyLinkingConstraints,
		dutySlotConstraints,
		hourCapConstraints,
		crossTermConstraints,
	}
}

func declareDutySchedule(state *formulationState) {
	state.y = declareFamily(state.model, "y", state.instance.D, state.instance.T)
}

// Σ_t y[d,t] = hd[d]·Σ_p x[p,d] for all d
func dutyLinkingConstraints(state *formulationState) {
	instance := state.instance
	for d := range instance.D {
		var expr milp.Expr
		for t := range instance.T {
			expr.Add(1, state.y.at(d, t))
		}
		for p := range instance.P {
			expr.Add(-float64(instance.Hd[d]), state.x.at(p, d))
		}
		state.model.AddConstraint(milp.VariableName(string(RuleLinking), d), expr, milp.Equal, 0)
	}
}

// Σ_d y[d,t] <= S for all t
func dutySlotConstraints(state *formulationState) {
	instance := state.instance
	for t := range instance.T {
		var expr milp.Expr
		for d := range instance.D {
			expr.Add(1, state.y.at(d, t))
		}
		state.model.AddConstraint(milp.VariableName(string(RuleSlotCapacity), t), expr, milp.LessEqual, float64(instance.S))
	}
}

// Σ_d x[p,d]·y[d,t] <= rpt[p,t] for all p, t. The products are left to the solver layer to linearize
func crossTermConstraints(state *formulationState) {
	instance := state.instance
	for p := range instance.P {
		for t := range instance.T {
			var expr milp.Expr
			for d := range instance.D {
				expr.AddProduct(1, state.x.at(p, d), state.y.at(d, t))
			}
			state.model.AddConstraint(milp.VariableName(string(RuleRepetitionCap), p, t), expr, milp.LessEqual, float64(instance.Rpt[p][t]))
		}
	}
}
