package model

// The quadratic formulation declares z[p,d,t] as the stand-in for x[p,d]·y[d,t], but no rule or objective term
// references it: the products of the repetition cap are still linearized by the solver layer. It is kept as an
// explicitly incomplete variant; Model.Unreferenced reports the z family.
func quadraticLinearizedFormulation() formulation {
	return formulation{
		declarations: []func(state *formulationState){
			declareAssignment,
			declareDutySchedule,
			declareLinkingProducts,
		},
		constraints: aggregatedConstraints(),
	}
}

func declareLinkingProducts(state *formulationState) {
	state.z = declareFamily(state.model, "z", state.instance.P, state.instance.D, state.instance.T)
}
