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

// Package render draws icets figures to image files using gonum/plot.
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/spatialmodel/icets"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Default figure dimensions.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 3 * vg.Inch
	DefaultDPI    = 300
)

var rasterFormats = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"tif":  true,
	"tiff": true,
}

var vectorFormats = map[string]bool{
	"pdf": true,
	"svg": true,
	"eps": true,
}

// Renderer writes figures to files.
type Renderer struct {
	// Formats are the file suffixes to write, such as "pdf" or "png".
	Formats []string

	// DPI is the resolution of raster formats.
	DPI int

	Width, Height vg.Length
}

// New returns a renderer for the given formats with default dimensions.
func New(dpi int, formats ...string) *Renderer {
	return &Renderer{Formats: formats, DPI: dpi, Width: DefaultWidth, Height: DefaultHeight}
}

// CheckFormats returns an error wrapping icets.ErrUnsupportedFormat if any
// of formats cannot be written.
func CheckFormats(formats []string) error {
	if len(formats) == 0 {
		return fmt.Errorf("render: no output formats specified")
	}
	for _, f := range formats {
		f = strings.ToLower(f)
		if !rasterFormats[f] && !vectorFormats[f] {
			return fmt.Errorf("render: output format %q: %w", f, icets.ErrUnsupportedFormat)
		}
	}
	return nil
}

// Render writes fig to <stem>.<format> for each format, overwriting
// existing files, and returns the paths written. Formats are checked
// before anything is written.
func (r *Renderer) Render(fig *icets.Figure) ([]string, error) {
	if err := CheckFormats(r.Formats); err != nil {
		return nil, err
	}
	p, err := Plot(fig)
	if err != nil {
		return nil, err
	}
	w, h := r.Width, r.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	var paths []string
	for _, format := range r.Formats {
		format = strings.ToLower(format)
		path := fig.Stem + "." + format
		if rasterFormats[format] {
			err = r.saveRaster(p, w, h, format, path)
		} else {
			err = p.Save(w, h, path)
		}
		if err != nil {
			return paths, fmt.Errorf("render: writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Renderer) saveRaster(p *plot.Plot, w, h vg.Length, format, path string) error {
	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case "png":
		_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(f)
	case "jpg", "jpeg":
		_, err = vgimg.JpegCanvas{Canvas: c}.WriteTo(f)
	default:
		_, err = vgimg.TiffCanvas{Canvas: c}.WriteTo(f)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Plot converts fig to a gonum plot.
func Plot(fig *icets.Figure) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	p.Legend.Top = true
	p.Legend.ThumbnailWidth = 0.25 * vg.Inch

	for _, b := range fig.Bands {
		poly, err := band(b)
		if err != nil {
			return nil, err
		}
		p.Add(poly)
		if b.Label != "" {
			p.Legend.Add(b.Label, poly)
		}
	}
	for _, l := range fig.Lines {
		xy, err := xys(l.X, l.Y)
		if err != nil {
			return nil, err
		}
		if l.Points {
			s, err := plotter.NewScatter(xy)
			if err != nil {
				return nil, err
			}
			s.GlyphStyle = draw.GlyphStyle{Color: l.Color, Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
			p.Add(s)
			if l.Label != "" {
				p.Legend.Add(l.Label, s)
			}
			continue
		}
		line, err := plotter.NewLine(xy)
		if err != nil {
			return nil, err
		}
		line.LineStyle = lineStyle(l)
		p.Add(line)
		if l.Label != "" {
			p.Legend.Add(l.Label, line)
		}
	}
	for _, y := range fig.HLines {
		y := y
		hl := plotter.NewFunction(func(float64) float64 { return y })
		hl.LineStyle = draw.LineStyle{Color: color.Black, Width: vg.Points(0.25)}
		p.Add(hl)
	}
	if len(fig.Labels) > 0 {
		font, err := vg.MakeFont(plot.DefaultFont, vg.Points(6))
		if err != nil {
			return nil, err
		}
		p.Add(&annotations{texts: fig.Labels, font: font})
	}

	if len(fig.XBounds) == 2 {
		p.X.Min, p.X.Max = fig.XBounds[0], fig.XBounds[1]
	}
	if len(fig.YBounds) == 2 {
		p.Y.Min, p.Y.Max = fig.YBounds[0], fig.YBounds[1]
	}
	if fig.Twin != nil {
		p.Y.Tick.Marker = twinTicker{scale: fig.Twin.Scale}
		p.Y.Label.Text = fmt.Sprintf("%s / %s", fig.YLabel, fig.Twin.Label)
	}
	if fig.RotateXTicks {
		p.X.Tick.Label.Rotation = math.Pi / 6
		p.X.Tick.Label.XAlign = draw.XRight
	}
	return p, nil
}

func xys(x, y []float64) (plotter.XYs, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("render: %d x values but %d y values", len(x), len(y))
	}
	o := make(plotter.XYs, len(x))
	for i := range x {
		o[i].X, o[i].Y = x[i], y[i]
	}
	return o, nil
}

// band returns a filled polygon running along the upper curve and back
// along the lower one.
func band(b icets.Band) (*plotter.Polygon, error) {
	if len(b.Lower) != len(b.X) || len(b.Upper) != len(b.X) {
		return nil, fmt.Errorf("render: band %q: mismatched lengths", b.Label)
	}
	n := len(b.X)
	xy := make(plotter.XYs, 2*n)
	for i := range b.X {
		xy[i].X, xy[i].Y = b.X[i], b.Upper[i]
		j := 2*n - 1 - i
		xy[j].X, xy[j].Y = b.X[i], b.Lower[i]
	}
	poly, err := plotter.NewPolygon(xy)
	if err != nil {
		return nil, err
	}
	poly.Color = b.Color
	poly.LineStyle.Width = 0
	return poly, nil
}

func lineStyle(l icets.Line) draw.LineStyle {
	s := draw.LineStyle{Color: l.Color, Width: vg.Points(l.Width)}
	if s.Color == nil {
		s.Color = color.Black
	}
	switch l.Style {
	case icets.Dashed:
		s.Dashes = []vg.Length{vg.Points(3), vg.Points(1.5)}
	case icets.DashDot:
		s.Dashes = []vg.Length{vg.Points(3), vg.Points(1.5), vg.Points(0.5), vg.Points(1.5)}
	case icets.Dotted:
		s.Dashes = []vg.Length{vg.Points(0.5), vg.Points(1)}
	}
	return s
}

// annotations draws text at data coordinates.
type annotations struct {
	texts []icets.Text
	font  vg.Font
}

func (a *annotations) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, t := range a.texts {
		sty := draw.TextStyle{Color: t.Color, Font: a.font}
		if sty.Color == nil {
			sty.Color = color.Black
		}
		c.FillText(sty, vg.Point{X: trX(t.X), Y: trY(t.Y)}, t.Text)
	}
}

// twinTicker adds the value of a second, proportional quantity to each
// labelled tick.
type twinTicker struct {
	scale float64
}

func (t twinTicker) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, tk := range ticks {
		if tk.Label == "" {
			continue
		}
		ticks[i].Label = fmt.Sprintf("%s (%.3g)", tk.Label, tk.Value*t.scale)
	}
	return ticks
}
