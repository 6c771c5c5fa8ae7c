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
)

// DateAxis returns n years start+step, start+2*step, ..., start+n*step.
// The model writes one record per step after the start year, so the
// axis is built from the record count rather than from the time
// variable itself.
func DateAxis(start, step float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	o := make([]float64, n)
	for i := range o {
		o[i] = start + float64(i+1)*step
	}
	return o
}

// IndexOfYear returns the index of the first element of axis equal to
// year.
func IndexOfYear(axis []float64, year float64) (int, error) {
	for i, t := range axis {
		if math.Abs(t-year) < 1e-9 {
			return i, nil
		}
	}
	if len(axis) == 0 {
		return -1, fmt.Errorf("icets: looking for year %g on empty axis: %w", year, ErrYearNotFound)
	}
	return -1, fmt.Errorf("icets: looking for year %g on axis [%g, %g]: %w",
		year, axis[0], axis[len(axis)-1], ErrYearNotFound)
}
