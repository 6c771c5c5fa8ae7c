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
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/icets"
)

func TestGetFloatSlice(t *testing.T) {
	for _, test := range []struct {
		name string
		val  interface{}
		n    int
		want []float64
		err  bool
	}{
		{name: "strings", val: []string{"2009", "3000"}, n: 2, want: []float64{2009, 3000}},
		{name: "comma string", val: "-1, 1", n: 2, want: []float64{-1, 1}},
		{name: "bracketed string", val: "[16,50,84]", n: -1, want: []float64{16, 50, 84}},
		{name: "config list", val: []interface{}{int64(1), 2.5}, n: 2, want: []float64{1, 2.5}},
		{name: "empty", val: []string{}, n: 2},
		{name: "wrong count", val: []string{"1"}, n: 2, err: true},
		{name: "not a number", val: []string{"a", "b"}, n: 2, err: true},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg := viper.New()
			cfg.Set("x", test.val)
			v, err := getFloatSlice("x", test.n, cfg)
			if (err != nil) != test.err {
				t.Fatalf("error %v", err)
			}
			if !reflect.DeepEqual(v, test.want) {
				t.Errorf("have %v, want %v", v, test.want)
			}
		})
	}
}

func TestGetStringMapString(t *testing.T) {
	cfg := viper.New()
	cfg.Set("json", `{"a": "b + c"}`)
	cfg.Set("map", map[string]interface{}{"a": "b + c"})
	cfg.Set("bad", `{"a": `)
	want := map[string]string{"a": "b + c"}
	for _, name := range []string{"json", "map"} {
		m, err := GetStringMapString(name, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(m, want) {
			t.Errorf("%s: have %v, want %v", name, m, want)
		}
	}
	if _, err := GetStringMapString("bad", cfg); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestInputFiles(t *testing.T) {
	cfg := viper.New()
	if _, err := inputFiles(nil, cfg); !errors.Is(err, icets.ErrTooFewFiles) {
		t.Errorf("no files: %v", err)
	}
	cfg.Set("files", []string{"a.nc", "b.nc"})
	f, err := inputFiles(nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a.nc", "b.nc"}; !reflect.DeepEqual(f, want) {
		t.Errorf("have %v, want %v", f, want)
	}
	f, err = inputFiles([]string{"c.nc"}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"c.nc"}; !reflect.DeepEqual(f, want) {
		t.Errorf("arguments: have %v, want %v", f, want)
	}
}

func TestCheckLogFile(t *testing.T) {
	out := filepath.Join("figures", "ts_control")
	if have, want := checkLogFile("icets.log", out), filepath.Join("figures", "icets.log"); have != want {
		t.Errorf("relative: have %q, want %q", have, want)
	}
	if have := checkLogFile("/tmp/icets.log", out); have != "/tmp/icets.log" {
		t.Errorf("absolute: have %q", have)
	}
	if have := checkLogFile("", out); have != "" {
		t.Errorf("disabled: have %q", have)
	}
}

func TestPlotOptionsErrors(t *testing.T) {
	for name, set := range map[string]func(*viper.Viper){
		"basin":       func(c *viper.Viper) { c.Set("basin", "XX") },
		"bounds":      func(c *viper.Viper) { c.Set("bounds", "1") },
		"step":        func(c *viper.Viper) { c.Set("step", 0.) },
		"no_output":   func(c *viper.Viper) { c.Set("output_file", "") },
		"missing_dir": func(c *viper.Viper) { c.Set("output_file", filepath.Join("nonexistent", "out")) },
	} {
		cfg := viper.New()
		cfg.Set("basin", "GR")
		cfg.Set("step", 1.)
		cfg.Set("output_file", "out")
		set(cfg)
		if _, err := plotOptions(cfg); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
