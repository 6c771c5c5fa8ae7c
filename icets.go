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

// Package icets post-processes scalar time series written by an ice-sheet
// model after basin extraction. It selects files by naming convention,
// normalizes units, derives sea-level-equivalent quantities, and
// assembles figures that the render package draws.
//
// Files are tagged implicitly by substrings of their paths: basins as
// "b_<code>" (for example "b_NE"), scenarios as "rcp_<code>" or "ctrl",
// and grid resolution as "g<N>m".
package icets

// Version gives the version number.
const Version = "0.3.0"

const (
	// FluxUnits are the units that mass fluxes are reported in.
	FluxUnits = "Gt year-1"

	// MassUnits are the units that masses are reported in.
	MassUnits = "Gt"
)
