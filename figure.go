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

import "image/color"

// LineStyle is the dash pattern of a line.
type LineStyle int

// Line styles.
const (
	Solid LineStyle = iota
	Dashed
	DashDot
	Dotted
)

// Line is a line (or, if Points is set, a set of markers) on a figure.
type Line struct {
	// Label is the legend entry. Lines without a label are not listed
	// in the legend.
	Label string

	X, Y []float64

	Color color.Color

	// Width is the line width in points.
	Width float64

	Style  LineStyle
	Points bool
}

// Band is a filled area between two curves sharing an abscissa.
type Band struct {
	Label        string
	X            []float64
	Lower, Upper []float64
	Color        color.Color
}

// Text is a text annotation placed in data coordinates.
type Text struct {
	X, Y  float64
	Text  string
	Color color.Color
}

// TwinAxis describes a secondary ordinate that is a fixed multiple of the
// primary one, such as mm SLE alongside Gt.
type TwinAxis struct {
	Scale float64
	Label string
}

// Figure is a renderer-independent description of a single plot.
type Figure struct {
	// Stem is the output path without the format suffix.
	Stem string

	Title          string
	XLabel, YLabel string

	// XBounds and YBounds, when they have two elements, fix the axis
	// limits. Otherwise the limits follow the data.
	XBounds, YBounds []float64

	Bands  []Band
	Lines  []Line
	Labels []Text

	// HLines are horizontal reference lines drawn across the figure.
	HLines []float64

	Twin *TwinAxis

	// RotateXTicks requests x tick labels rotated by 30 degrees.
	RotateXTicks bool
}

// relabel replaces the legend labels of the labelled bands and lines of
// f, in order, with labels. Extra labels are ignored.
func (f *Figure) relabel(labels []string) {
	i := 0
	for j := range f.Bands {
		if i == len(labels) {
			return
		}
		if f.Bands[j].Label != "" {
			f.Bands[j].Label = labels[i]
			i++
		}
	}
	for j := range f.Lines {
		if i == len(labels) {
			return
		}
		if f.Lines[j].Label != "" {
			f.Lines[j].Label = labels[i]
			i++
		}
	}
}
