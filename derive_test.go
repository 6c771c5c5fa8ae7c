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
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestDerive(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	in := filepath.Join(dir, "b_NE.nc")
	writeFixture(t, in,
		fixtureVar{"tendency_of_ice_mass", "kg year-1", []float64{-1e12, -2e12, -3e12}},
		fixtureVar{"tendency_of_ice_mass_due_to_flow", "Gt year-1", []float64{1, 1, 1}},
		fixtureVar{"tendency_of_ice_mass_due_to_discharge", "Gt year-1", []float64{-2, -3, -4}},
		fixtureVar{"tendency_of_ice_mass_due_to_basal_mass_flux", "Gt year-1", []float64{-0.5, -0.5, -0.5}},
	)

	d, err := NewDeriver(DefaultDerivedVariables, FluxUnits, nil)
	if err != nil {
		t.Fatal(err)
	}
	wantInputs := []string{
		"tendency_of_ice_mass",
		"tendency_of_ice_mass_due_to_basal_mass_flux",
		"tendency_of_ice_mass_due_to_discharge",
		"tendency_of_ice_mass_due_to_flow",
	}
	if !reflect.DeepEqual(d.Inputs(), wantInputs) {
		t.Errorf("inputs: have %v, want %v", d.Inputs(), wantInputs)
	}

	ds, err := Open(in)
	if err != nil {
		t.Fatal(err)
	}
	o, err := d.Derive(ds)
	ds.Close()
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "ts_b_NE.nc")
	f, err := os.Create(out)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Write(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	r, err := Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for name, want := range map[string][]float64{
		"dMdt":                 {-2, -3, -4},
		"discharge_flux":       {-2.5, -3.5, -4.5},
		"tendency_of_ice_mass": {-1, -2, -3},
		"time":                 {1, 2, 3},
	} {
		v, err := r.Values(name)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualApprox(v, want, 1e-12) {
			t.Errorf("%s: have %v, want %v", name, v, want)
		}
	}
	if u := r.Units("dMdt"); u != FluxUnits {
		t.Errorf("dMdt units %q", u)
	}
	if s := r.StringAttribute("", "source"); s != in {
		t.Errorf("source %q, want %q", s, in)
	}
}

func TestDeriverDependencies(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	in := filepath.Join(dir, "x.nc")
	writeFixture(t, in, fixtureVar{"a", "Gt year-1", []float64{1, -4}})

	d, err := NewDeriver(map[string]string{
		"c": "b * 2",
		"b": "abs(a) + max(a, 0)",
	}, FluxUnits, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"b", "c"}; !reflect.DeepEqual(d.Names(), want) {
		t.Errorf("order: have %v, want %v", d.Names(), want)
	}
	ds, err := Open(in)
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Close()
	o, err := d.Derive(ds)
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string][]float64)
	for _, v := range o.Vars {
		got[v.Name] = v.Values
	}
	want := map[string][]float64{
		"a": {1, -4},
		"b": {2, 4},
		"c": {4, 8},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("have %v, want %v", got, want)
	}
}

func TestDeriverErrors(t *testing.T) {
	for name, exprs := range map[string]map[string]string{
		"circular": {"a": "b + 1", "b": "a + 1"},
		"syntax":   {"a": "b +"},
		"empty":    {},
	} {
		if _, err := NewDeriver(exprs, FluxUnits, nil); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := NewDeriver(DefaultDerivedVariables, "furlong", nil); err == nil {
		t.Error("expected an error for unknown units")
	}
}
