/*
Copyright © 2018 the icets authors.
This file is part of icets.

icets is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

icets is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with icets.  If not, see <http://www.gnu.org/licenses/>.
*/

package icets

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
)

// DefaultDerivedVariables are the variables added to each basin time
// series after extraction.
var DefaultDerivedVariables = map[string]string{
	"dMdt":           "tendency_of_ice_mass - tendency_of_ice_mass_due_to_flow",
	"discharge_flux": "tendency_of_ice_mass_due_to_discharge + tendency_of_ice_mass_due_to_basal_mass_flux",
}

// Deriver calculates new variables from expressions of the variables in
// a dataset. Expressions are evaluated once per time step. Input
// variables are converted to the deriver's units before evaluation and
// derived variables are reported in those units.
type Deriver struct {
	expressions map[string]*govaluate.EvaluableExpression
	order       []string
	inputs      []string
	units       string
}

// NewDeriver parses expressions, which map the names of new variables
// to expressions such as "a + b". Expressions may refer to other derived
// variables. Default functions are abs(x), exp(x), max(x, y) and min(x, y);
// functions adds to or replaces them.
func NewDeriver(expressions map[string]string, units string, functions map[string]govaluate.ExpressionFunction) (*Deriver, error) {
	if len(expressions) == 0 {
		return nil, fmt.Errorf("icets: there are no derived variables specified")
	}
	if _, err := ParseUnit(units); err != nil {
		return nil, err
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"abs": unaryFunc("abs", math.Abs),
		"exp": unaryFunc("exp", math.Exp),
		"max": binaryFunc("max", math.Max),
		"min": binaryFunc("min", math.Min),
	}
	for k, f := range functions {
		funcs[k] = f
	}

	d := &Deriver{
		expressions: make(map[string]*govaluate.EvaluableExpression),
		units:       units,
	}
	deps := make(map[string][]string)
	inputs := make(map[string]bool)
	for name, exprStr := range expressions {
		exprStr = strings.Replace(exprStr, "\r\n", " ", -1)
		exprStr = strings.Replace(exprStr, "\n", " ", -1)
		e, err := govaluate.NewEvaluableExpressionWithFunctions(exprStr, funcs)
		if err != nil {
			return nil, fmt.Errorf("icets: parsing expression for %s: %v", name, err)
		}
		d.expressions[name] = e
		for _, v := range removeDuplicates(e.Vars()) {
			if _, ok := expressions[v]; ok {
				deps[name] = append(deps[name], v)
			} else {
				inputs[v] = true
			}
		}
	}
	for v := range inputs {
		d.inputs = append(d.inputs, v)
	}
	sort.Strings(d.inputs)

	order, err := evaluationOrder(deps, d.expressions)
	if err != nil {
		return nil, err
	}
	d.order = order
	return d, nil
}

func unaryFunc(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("icets: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("icets: argument to '%s' is %T, not a number", name, args[0])
		}
		return f(x), nil
	}
}

func binaryFunc(name string, f func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("icets: got %d arguments for function '%s', but needs 2", len(args), name)
		}
		x, ok1 := args[0].(float64)
		y, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("icets: arguments to '%s' must be numbers", name)
		}
		return f(x, y), nil
	}
}

// evaluationOrder sorts the derived variables so that each comes after
// the derived variables it depends on.
func evaluationOrder(deps map[string][]string, exprs map[string]*govaluate.EvaluableExpression) ([]string, error) {
	names := make([]string, 0, len(exprs))
	for n := range exprs {
		names = append(names, n)
	}
	sort.Strings(names)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	var order []string
	var visit func(n string, path []string) error
	visit = func(n string, path []string) error {
		switch state[n] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("icets: derived variables have a circular definition: %s", strings.Join(append(path, n), " -> "))
		}
		state[n] = visiting
		d := append([]string(nil), deps[n]...)
		sort.Strings(d)
		for _, dep := range d {
			if err := visit(dep, append(path, n)); err != nil {
				return err
			}
		}
		state[n] = done
		order = append(order, n)
		return nil
	}
	for _, n := range names {
		if err := visit(n, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// removeDuplicates returns the unique strings in s, in order of first
// appearance.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]bool)
	for _, val := range s {
		if !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}
	return result
}

// Inputs returns the dataset variables the expressions refer to.
func (d *Deriver) Inputs() []string { return d.inputs }

// Names returns the derived variable names in evaluation order.
func (d *Deriver) Names() []string { return d.order }

// Derive evaluates the expressions over ds. The output holds the time
// variable of ds, the input variables in the deriver's units, and the
// derived variables.
func (d *Deriver) Derive(ds *Dataset) (*Output, error) {
	n := ds.NumTimes()
	params := make(map[string][]float64)
	o := &Output{
		TimeUnits:  ds.Units("time"),
		Attributes: map[string]string{"source": ds.Path()},
	}
	if ds.Has("time") {
		t, err := ds.Values("time")
		if err != nil {
			return nil, err
		}
		o.Time = t
	} else {
		o.Time = DateAxis(0, 1, n)
	}
	for _, v := range d.inputs {
		vals, err := ds.Values(v)
		if err != nil {
			return nil, fmt.Errorf("icets: deriving variables from %s: %w", ds.Path(), err)
		}
		if len(vals) != n {
			return nil, fmt.Errorf("icets: deriving variables from %s: %s has %d values but there are %d times", ds.Path(), v, len(vals), n)
		}
		vals, err = Convert(vals, ds.Units(v), d.units)
		if err != nil {
			return nil, fmt.Errorf("icets: deriving variables from %s: variable %s: %w", ds.Path(), v, err)
		}
		params[v] = vals
		o.Vars = append(o.Vars, &Series{Name: v, Units: d.units, Values: vals})
	}
	for _, name := range d.order {
		expr := d.expressions[name]
		vals := make([]float64, n)
		p := make(map[string]interface{})
		for i := 0; i < n; i++ {
			for k, v := range params {
				p[k] = v[i]
			}
			r, err := expr.Evaluate(p)
			if err != nil {
				return nil, fmt.Errorf("icets: evaluating %s at time index %d: %v", name, i, err)
			}
			f, ok := r.(float64)
			if !ok {
				return nil, fmt.Errorf("icets: expression for %s evaluates to %T, not a number", name, r)
			}
			vals[i] = f
		}
		params[name] = vals
		o.Vars = append(o.Vars, &Series{Name: name, Units: d.units, Values: vals})
	}
	return o, nil
}
