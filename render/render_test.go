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

package render

import (
	"errors"
	"image/color"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spatialmodel/icets"
	"gonum.org/v1/plot/vg"
)

func testFigure(stem string) *icets.Figure {
	x := []float64{2009, 2010, 2011}
	return &icets.Figure{
		Stem:    stem,
		Title:   "test",
		XLabel:  "Year (CE)",
		YLabel:  "mass flux (Gt yr-1)",
		XBounds: []float64{2009, 2011},
		Bands: []icets.Band{
			{Label: "NE", X: x, Lower: []float64{0, 0, 0}, Upper: []float64{1, 2, 3}, Color: color.RGBA{R: 224, G: 130, B: 20, A: 255}},
		},
		Lines: []icets.Line{
			{Label: "D", X: x, Y: []float64{1, -1, 2}, Width: 0.5, Style: icets.Dashed},
			{X: x, Y: []float64{0, 1, 0}, Width: 0.25, Style: icets.Dotted, Points: true},
		},
		Labels:       []icets.Text{{X: 2011, Y: 3, Text: " 3.00"}},
		HLines:       []float64{0},
		Twin:         &icets.TwinAxis{Scale: icets.GtToMmSLE, Label: "mm SLE"},
		RotateXTicks: true,
	}
}

func TestRender(t *testing.T) {
	dir, err := ioutil.TempDir("", "render")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	stem := filepath.Join(dir, "out_fluxes")

	r := New(72, "png", "SVG", "pdf", "jpg", "tif")
	paths, err := r.Render(testFigure(stem))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{stem + ".png", stem + ".svg", stem + ".pdf", stem + ".jpg", stem + ".tif"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths: have %v, want %v", paths, want)
	}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			t.Error(err)
			continue
		}
		if fi.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
	}
}

func TestRenderUnsupported(t *testing.T) {
	dir, err := ioutil.TempDir("", "render")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	stem := filepath.Join(dir, "out")

	_, err = New(72, "png", "bmp").Render(testFigure(stem))
	if !errors.Is(err, icets.ErrUnsupportedFormat) {
		t.Fatalf("have error %v, want unsupported format", err)
	}
	if _, err := os.Stat(stem + ".png"); !os.IsNotExist(err) {
		t.Error("png written despite unsupported format")
	}
	if err := CheckFormats(nil); err == nil {
		t.Error("expected an error for no formats")
	}
}

func TestPlot(t *testing.T) {
	fig := testFigure("x")
	fig.YBounds = []float64{-5, 5}
	p, err := Plot(fig)
	if err != nil {
		t.Fatal(err)
	}
	if p.X.Min != 2009 || p.X.Max != 2011 || p.Y.Min != -5 || p.Y.Max != 5 {
		t.Errorf("bounds [%g, %g] [%g, %g]", p.X.Min, p.X.Max, p.Y.Min, p.Y.Max)
	}
	if want := "mass flux (Gt yr-1) / mm SLE"; p.Y.Label.Text != want {
		t.Errorf("y label %q, want %q", p.Y.Label.Text, want)
	}

	fig.Lines[0].Y = fig.Lines[0].Y[:2]
	if _, err := Plot(fig); err == nil {
		t.Error("expected an error for mismatched line lengths")
	}
}

func TestBand(t *testing.T) {
	poly, err := band(icets.Band{
		X:     []float64{1, 2, 3},
		Lower: []float64{0, -1, -2},
		Upper: []float64{1, 2, 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]float64{{1, 1}, {2, 2}, {3, 3}, {3, -2}, {2, -1}, {1, 0}}
	ring := poly.XYs[0]
	if ring.Len() != len(want) {
		t.Fatalf("have %d vertices, want %d", ring.Len(), len(want))
	}
	for i, w := range want {
		if x, y := ring.XY(i); x != w[0] || y != w[1] {
			t.Errorf("vertex %d: have (%g, %g), want (%g, %g)", i, x, y, w[0], w[1])
		}
	}
	if _, err := band(icets.Band{X: []float64{1}, Lower: []float64{0, 1}, Upper: []float64{1}}); err == nil {
		t.Error("expected an error for mismatched band lengths")
	}
}

func TestTwinTicker(t *testing.T) {
	ticks := twinTicker{scale: 2}.Ticks(0, 10)
	labelled := 0
	for _, tk := range ticks {
		if tk.Label == "" {
			continue
		}
		labelled++
		if !strings.HasSuffix(tk.Label, ")") {
			t.Errorf("tick %q has no twin value", tk.Label)
		}
	}
	if labelled == 0 {
		t.Error("no labelled ticks")
	}
}

func TestLineStyle(t *testing.T) {
	for style, n := range map[icets.LineStyle]int{
		icets.Solid:   0,
		icets.Dashed:  2,
		icets.DashDot: 4,
		icets.Dotted:  2,
	} {
		s := lineStyle(icets.Line{Style: style, Width: 0.5})
		if len(s.Dashes) != n {
			t.Errorf("style %d: have %d dashes, want %d", style, len(s.Dashes), n)
		}
		if s.Width != vg.Points(0.5) || s.Color != color.Black {
			t.Errorf("style %d: %+v", style, s)
		}
	}
}
