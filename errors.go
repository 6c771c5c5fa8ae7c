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

import "errors"

var (
	// ErrNoVariable is returned when a requested variable is missing
	// from a dataset.
	ErrNoVariable = errors.New("variable not found")

	// ErrTooFewFiles is returned when a plot or operation needs more
	// input files than were matched.
	ErrTooFewFiles = errors.New("too few input files")

	// ErrUnknownUnit is returned when a unit string cannot be parsed.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrIncompatibleUnits is returned when converting between units
	// with different dimensions.
	ErrIncompatibleUnits = errors.New("incompatible units")

	// ErrUnknownPlot is returned for an unrecognized plot kind.
	ErrUnknownPlot = errors.New("unknown plot kind")

	// ErrYearNotFound is returned when a year is not on a time axis.
	ErrYearNotFound = errors.New("year not found on time axis")

	// ErrUnsupportedFormat is returned for input or output formats
	// that cannot be handled.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
