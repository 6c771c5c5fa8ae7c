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

package icetsutil

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/icets"
)

// run executes the root command with args and returns its output.
func run(args ...string) (string, error) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	Root.SetArgs(args)
	err := Root.Execute()
	return b.String(), err
}

func tempDir(t *testing.T) (string, func()) {
	t.Helper()
	Cfg.Set("log_file", "")
	dir, err := ioutil.TempDir("", "icetsutil")
	if err != nil {
		t.Fatal(err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

// writeSeries writes a yearly NetCDF time series file.
func writeSeries(t *testing.T, path string, vars ...*icets.Series) {
	t.Helper()
	o := &icets.Output{
		Time:      icets.DateAxis(0, 1, vars[0].Len()),
		TimeUnits: "years since 2008-1-1",
		Vars:      vars,
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Write(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestVersion(t *testing.T) {
	Cfg.Set("log_file", "")
	out, err := run("version")
	if err != nil {
		t.Fatal(err)
	}
	if want := "icets v" + icets.Version; !strings.Contains(out, want) {
		t.Errorf("have %q, want %q", out, want)
	}
}

func TestSelect(t *testing.T) {
	Cfg.Set("log_file", "")
	Cfg.Set("tag", "rcp_45")
	out, err := run("select", "a_rcp_26.nc", "a_rcp_45.nc", "b_rcp_45.nc")
	if err != nil {
		t.Fatal(err)
	}
	if want := "a_rcp_45.nc\nb_rcp_45.nc\n"; out != want {
		t.Errorf("have %q, want %q", out, want)
	}
	Cfg.Set("tag", "")
	if _, err := run("select", "a.nc"); err == nil {
		t.Error("expected an error without a tag")
	}
}

func TestConvert(t *testing.T) {
	Cfg.Set("log_file", "")
	for _, test := range []struct {
		name string
		args []string
		want string
	}{
		{
			name: "negative",
			args: []string{"--from", "kg", "--to", "Gt", "1e12", "-2e12"},
			want: "1\n-2\n",
		},
		{
			name: "equals",
			args: []string{"--from=Gt", "--to=kg", "-1.5"},
			want: "-1.5e+12\n",
		},
		{
			name: "numeric unit",
			args: []string{"--from", "%", "--to", "1", "-50", "50"},
			want: "-0.5\n0.5\n",
		},
		{
			name: "terminator",
			args: []string{"--from", "Gt", "--to", "kg", "--", "-1"},
			want: "-1e+12\n",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			out, err := run(append([]string{"convert"}, test.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			if out != test.want {
				t.Errorf("have %q, want %q", out, test.want)
			}
		})
	}
	if _, err := run("convert", "--from", "Gt", "--to", "m", "-1"); !errors.Is(err, icets.ErrIncompatibleUnits) {
		t.Errorf("incompatible units: %v", err)
	}
	if _, err := run("convert", "--from", "Gt", "--to", "kg", "one"); err == nil {
		t.Error("invalid value should give an error")
	}
}

func TestDerive(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	in := filepath.Join(dir, "b_SE.nc")
	writeSeries(t, in,
		&icets.Series{Name: "tendency_of_ice_mass", Units: "Gt year-1", Values: []float64{-1, -2}},
		&icets.Series{Name: "tendency_of_ice_mass_due_to_flow", Units: "Gt year-1", Values: []float64{1, 1}},
		&icets.Series{Name: "tendency_of_ice_mass_due_to_discharge", Units: "Gt year-1", Values: []float64{-1, -1}},
		&icets.Series{Name: "tendency_of_ice_mass_due_to_basal_mass_flux", Units: "Gt year-1", Values: []float64{0, 0}},
	)
	Cfg.Set("o_dir", dir)
	if _, err := run("derive", in); err != nil {
		t.Fatal(err)
	}
	ds, err := icets.Open(filepath.Join(dir, "ts_b_SE.nc"))
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Close()
	v, err := ds.Values("dMdt")
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 2 || v[0] != -2 || v[1] != -3 {
		t.Errorf("dMdt %v", v)
	}

}

func TestPlot(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	var files []string
	for _, b := range []string{"NE", "SW"} {
		p := filepath.Join(dir, "ts_b_"+b+".nc")
		writeSeries(t, p, &icets.Series{
			Name:   "tendency_of_ice_mass_due_to_discharge",
			Units:  "Gt year-1",
			Values: []float64{-1, -2, -3},
		})
		files = append(files, p)
	}
	stem := filepath.Join(dir, "control")
	Cfg.Set("plot", "basin_discharge")
	Cfg.Set("output_file", stem)
	Cfg.Set("output_format", []string{"png", "svg"})
	Cfg.Set("output_resolution", 50)
	Cfg.Set("time_bounds", []string{"2009", "2011"})
	Cfg.Set("log_file", "plot.log")
	defer func() {
		Cfg.Set("log_file", "")
		if c, ok := logFile.w.(interface{ Close() error }); ok {
			c.Close()
		}
		logFile.w = nil
	}()

	if _, err := run(append([]string{"plot"}, files...)...); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{stem + "_d.png", stem + "_d.svg", filepath.Join(dir, "plot.log")} {
		if _, err := os.Stat(p); err != nil {
			t.Error(err)
		}
	}

	Cfg.Set("output_format", []string{"png", "bmp"})
	Cfg.Set("output_file", filepath.Join(dir, "bad"))
	if _, err := run(append([]string{"plot"}, files...)...); !errors.Is(err, icets.ErrUnsupportedFormat) {
		t.Errorf("unsupported format: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad_d.png")); !os.IsNotExist(err) {
		t.Error("image written despite unsupported format")
	}

	Cfg.Set("output_format", []string{"png"})
	Cfg.Set("plot", "bogus")
	if _, err := run(append([]string{"plot"}, files...)...); !errors.Is(err, icets.ErrUnknownPlot) {
		t.Errorf("unknown plot: %v", err)
	}
	Cfg.Set("plot", "basin_discharge")
}

func TestSummary(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	in := filepath.Join(dir, "ts_b_NO.nc")
	writeSeries(t, in, &icets.Series{Name: "ice_mass", Units: "Gt", Values: []float64{-365, -730}})
	x := filepath.Join(dir, "summary.xlsx")
	Cfg.Set("xlsx", x)
	defer Cfg.Set("xlsx", "")
	out, err := run("summary", in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ice_mass") || !strings.Contains(out, "0.002") {
		t.Errorf("summary output:\n%s", out)
	}
	if _, err := os.Stat(x); err != nil {
		t.Error(err)
	}
}

func TestBasins(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := filepath.Join(dir, "basins.shp")
	e, err := shp.NewEncoderFromFields(path, goshp.POLYGON, goshp.StringField("basin", 10), goshp.NumberField("UGID", 10))
	if err != nil {
		t.Fatal(err)
	}
	square := geom.Polygon{{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 1000}, {X: 0, Y: 1000}, {X: 0, Y: 0}}}
	if err := e.EncodeFields(square, "CW", 1); err != nil {
		t.Fatal(err)
	}
	e.Close()

	Cfg.Set("shape_file", path)
	out, err := run("basins")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("output:\n%s", out)
	}
	if f := strings.Fields(lines[1]); len(f) != 3 || f[0] != "CW" || f[1] != "1" || f[2] != "1.0" {
		t.Errorf("row %q", lines[1])
	}
}

// TestConfigFile reads plot options from a TOML file. It runs last
// because configuration file values stay in Cfg.
func TestConfigFile(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := filepath.Join(dir, "icets.toml")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := toml.NewEncoder(f).Encode(map[string]interface{}{
		"bounds":        []float64{-1, 4},
		"percentiles":   []float64{5, 50, 95},
		"runmean":       11,
		"title":         "control run",
		"rotate_xticks": true,
		"basin":         "ne",
	}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	Cfg.Set("config", path)
	Cfg.Set("output_file", filepath.Join(dir, "out"))
	defer Cfg.Set("config", "")
	if err := setConfig(); err != nil {
		t.Fatal(err)
	}
	o, err := plotOptions(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if o.Basin != icets.NE || o.Runmean != 11 || o.Title != "control run" || !o.RotateXTicks {
		t.Errorf("options %+v", o)
	}
	if len(o.Bounds) != 2 || o.Bounds[0] != -1 || o.Bounds[1] != 4 {
		t.Errorf("bounds %v", o.Bounds)
	}
	if len(o.Percentiles) != 3 || o.Percentiles[0] != 0.05 || o.Percentiles[2] != 0.95 {
		t.Errorf("percentiles %v", o.Percentiles)
	}
}
