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
	"strconv"
	"strings"
	"unicode"

	"github.com/ctessum/unit"
)

// Conversions between mass of ice and global mean sea level equivalent.
const (
	GtToMmSLE = 1. / 365
	GtToMSLE  = 1. / 365 / 1000
)

// secondsPerYear is the length of the UDUNITS "year" (a tropical year).
const secondsPerYear = 3.15569259747e7

type symbol struct {
	factor float64
	dims   unit.Dimensions
}

var symbols = map[string]symbol{
	"1":       {1, unit.Dimless},
	"%":       {0.01, unit.Dimless},
	"percent": {0.01, unit.Dimless},
	"g":       {1e-3, unit.Kilogram},
	"gram":    {1e-3, unit.Kilogram},
	"t":       {1e3, unit.Kilogram},
	"tonne":   {1e3, unit.Kilogram},
	"m":       {1, unit.Meter},
	"meter":   {1, unit.Meter},
	"metre":   {1, unit.Meter},
	"s":       {1, unit.Second},
	"sec":     {1, unit.Second},
	"second":  {1, unit.Second},
	"min":     {60, unit.Second},
	"minute":  {60, unit.Second},
	"h":       {3600, unit.Second},
	"hr":      {3600, unit.Second},
	"hour":    {3600, unit.Second},
	"d":       {86400, unit.Second},
	"day":     {86400, unit.Second},
	"a":       {secondsPerYear, unit.Second},
	"yr":      {secondsPerYear, unit.Second},
	"year":    {secondsPerYear, unit.Second},
}

// prefixes are tried in order, so that "da" is tested before "d".
var prefixes = []struct {
	name   string
	factor float64
}{
	{"G", 1e9},
	{"M", 1e6},
	{"k", 1e3},
	{"h", 1e2},
	{"da", 1e1},
	{"d", 1e-1},
	{"c", 1e-2},
	{"m", 1e-3},
	{"u", 1e-6},
	{"μ", 1e-6},
	{"n", 1e-9},
}

// ParseUnit parses a UDUNITS-style unit string such as "Gt year-1",
// "kg m-2 s-1" or "Gt/yr". The returned unit holds the SI value of one
// of the given unit.
func ParseUnit(s string) (*unit.Unit, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return nil, fmt.Errorf("icets: parsing unit %q: %w", s, ErrUnknownUnit)
	}
	u := unit.New(1, unit.Dimless)
	for i, part := range strings.Split(str, "/") {
		fields := splitTerms(part)
		if len(fields) == 0 {
			return nil, fmt.Errorf("icets: parsing unit %q: empty term: %w", s, ErrUnknownUnit)
		}
		for j, f := range fields {
			t, err := parseTerm(f)
			if err != nil {
				return nil, fmt.Errorf("icets: parsing unit %q: %w", s, err)
			}
			// Only the first term after a slash is in the denominator.
			if i > 0 && j == 0 {
				u = unit.Div(u, t)
			} else {
				u = unit.Mul(u, t)
			}
		}
	}
	return u, nil
}

// splitTerms splits a product of terms on spaces, '*' and '.'. A token
// that is a number, such as "0.001" or "1.5e3", is kept whole.
func splitTerms(part string) []string {
	var terms []string
	for _, tok := range strings.FieldsFunc(part, func(r rune) bool { return r == ' ' || r == '*' }) {
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			terms = append(terms, tok)
			continue
		}
		terms = append(terms, strings.FieldsFunc(tok, func(r rune) bool { return r == '.' })...)
	}
	return terms
}

// parseTerm parses a single term such as "km", "year-1" or "m^2".
func parseTerm(term string) (*unit.Unit, error) {
	if v, err := strconv.ParseFloat(term, 64); err == nil {
		return unit.New(v, unit.Dimless), nil
	}
	name, exp, err := splitExponent(term)
	if err != nil {
		return nil, err
	}
	if v, err := strconv.ParseFloat(name, 64); err == nil {
		return unit.New(math.Pow(v, float64(exp)), unit.Dimless), nil
	}
	sym, ok := lookupSymbol(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, term)
	}
	dims := make(unit.Dimensions, len(sym.dims))
	for d, p := range sym.dims {
		dims[d] = p * exp
	}
	return unit.New(math.Pow(sym.factor, float64(exp)), dims), nil
}

// splitExponent separates a trailing integer exponent from a term.
func splitExponent(term string) (string, int, error) {
	term = strings.Replace(term, "**", "^", 1)
	if i := strings.Index(term, "^"); i >= 0 {
		e, err := strconv.Atoi(term[i+1:])
		if err != nil {
			return "", 0, fmt.Errorf("%w: bad exponent in %q", ErrUnknownUnit, term)
		}
		return term[:i], e, nil
	}
	runes := []rune(term)
	i := len(runes)
	for i > 0 && unicode.IsDigit(runes[i-1]) {
		i--
	}
	if i > 0 && (runes[i-1] == '-' || runes[i-1] == '+') {
		i--
	}
	if i == len(runes) || i == 0 {
		// No exponent, or the term is a bare number.
		return term, 1, nil
	}
	e, err := strconv.Atoi(string(runes[i:]))
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad exponent in %q", ErrUnknownUnit, term)
	}
	return string(runes[:i]), e, nil
}

func lookupSymbol(name string) (symbol, bool) {
	if s, ok := symbols[name]; ok {
		return s, true
	}
	for _, p := range prefixes {
		if !strings.HasPrefix(name, p.name) {
			continue
		}
		base := strings.TrimPrefix(name, p.name)
		// Years only take multiplying prefixes ("ka", "Ma"), so that
		// "da" is not read as a tenth of a year.
		if base == "a" && p.factor < 1 {
			continue
		}
		if s, ok := symbols[base]; ok {
			return symbol{factor: p.factor * s.factor, dims: s.dims}, true
		}
	}
	if len(name) > 2 && strings.HasSuffix(name, "s") {
		return lookupSymbol(strings.TrimSuffix(name, "s"))
	}
	return symbol{}, false
}

// Factor returns the number that a value in units from must be
// multiplied by to express it in units to.
func Factor(from, to string) (float64, error) {
	f, err := ParseUnit(from)
	if err != nil {
		return 0, err
	}
	t, err := ParseUnit(to)
	if err != nil {
		return 0, err
	}
	if !unit.DimensionsMatch(f, t) {
		return 0, fmt.Errorf("icets: converting %q [%v] to %q [%v]: %w",
			from, f.Dimensions(), to, t.Dimensions(), ErrIncompatibleUnits)
	}
	return f.Value() / t.Value(), nil
}

// Convert returns a copy of vals converted from units from to units to.
func Convert(vals []float64, from, to string) ([]float64, error) {
	f, err := Factor(from, to)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(vals))
	for i, v := range vals {
		o[i] = v * f
	}
	return o, nil
}

// ToSLE converts masses (or cumulative mass changes) in the given units
// to sea level equivalent. The values are converted to Gt, multiplied
// by scale (GtToMSLE or GtToMmSLE) and negated, so that mass loss gives
// a positive sea level contribution.
func ToSLE(vals []float64, units string, scale float64) ([]float64, error) {
	o, err := Convert(vals, units, MassUnits)
	if err != nil {
		return nil, err
	}
	for i, v := range o {
		o[i] = -v * scale
	}
	return o, nil
}

// ToSLERate is like ToSLE but for mass fluxes, which are converted to
// FluxUnits first.
func ToSLERate(vals []float64, units string, scale float64) ([]float64, error) {
	o, err := Convert(vals, units, FluxUnits)
	if err != nil {
		return nil, err
	}
	for i, v := range o {
		o[i] = -v * scale
	}
	return o, nil
}
