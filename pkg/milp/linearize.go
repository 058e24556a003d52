package milp

const ProductFamily = "w"

// Linearize returns a copy of the model where every product of two binaries a·b is replaced by a fresh binary w
// bound by w <= a, w <= b and w >= a + b - 1. Linear models are returned unchanged
func (model *Model) Linearize() *Model {
	if model.Linear() {
		return model
	}

	linear := NewModel(model.Name)
	for _, variable := range model.variables {
		linear.addVariable(variable)
	}

	substitutes := make(map[[2]string]Variable)
	substitute := func(product Product) Variable {
		key := [2]string{product.First, product.Second}
		if product.Second < product.First {
			key = [2]string{product.Second, product.First}
		}
		if variable, ok := substitutes[key]; ok {
			return variable
		}

		first, _ := model.Variable(key[0])
		second, _ := model.Variable(key[1])
		variable := linear.addVariable(Variable{
			Name:   ProductFamily + "_" + key[0] + "_" + key[1],
			Family: ProductFamily,
		})
		substitutes[key] = variable

		linear.AddConstraint(variable.Name+"_le_first", *new(Expr).Add(1, variable).Add(-1, first), LessEqual, 0)
		linear.AddConstraint(variable.Name+"_le_second", *new(Expr).Add(1, variable).Add(-1, second), LessEqual, 0)
		linear.AddConstraint(variable.Name+"_ge_both", *new(Expr).Add(1, variable).Add(-1, first).Add(-1, second), GreaterEqual, -1)
		return variable
	}

	replace := func(expr Expr) Expr {
		replaced := Expr{Terms: append([]Term(nil), expr.Terms...)}
		for _, product := range expr.Products {
			replaced.Add(product.Coefficient, substitute(product))
		}
		return replaced
	}

	objective := replace(model.Objective.Expr)
	for _, constraint := range model.Constraints {
		linear.AddConstraint(constraint.Name, replace(constraint.Expr), constraint.Sense, constraint.RHS)
	}
	linear.SetObjective(objective, model.Objective.Constant, model.Objective.Sense)

	return linear
}

func (model *Model) addVariable(variable Variable) Variable {
	if position, ok := model.declared[variable.Name]; ok {
		return model.variables[position]
	}
	model.declared[variable.Name] = len(model.variables)
	model.variables = append(model.variables, variable)
	return variable
}
