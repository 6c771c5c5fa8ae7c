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
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"gonum.org/v1/gonum/floats"
)

// strip returns a w by h m rectangle with its lower left corner at x0.
func strip(x0, w, h float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: 0}, {X: x0 + w, Y: 0}, {X: x0 + w, Y: h}, {X: x0, Y: h}, {X: x0, Y: 0},
	}}
}

func TestReadFloodGates(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := filepath.Join(dir, "gates_rcp_85.shp")

	e, err := shp.NewEncoderFromFields(path, goshp.POLYGON,
		goshp.FloatField("timestep", 14, 4),
		goshp.StringField("timestamp", 20))
	if err != nil {
		t.Fatal(err)
	}
	// Written out of order; the series is sorted by time.
	for _, r := range []struct {
		g  geom.Polygon
		ts float64
	}{
		{g: strip(0, 2000, 2), ts: 2},
		{g: strip(0, 1000, 2), ts: 1},
		{g: strip(5000, 3000, 2), ts: 3},
	} {
		if err := e.EncodeFields(r.g, r.ts, "2010-01-01"); err != nil {
			t.Fatal(err)
		}
	}
	e.Close()

	s, err := ReadFloodGates(path, 2008)
	if err != nil {
		t.Fatal(err)
	}
	if s.Units != "km" {
		t.Errorf("units %q", s.Units)
	}
	if want := []float64{2009, 2010, 2011}; !floats.EqualApprox(s.Time, want, 1e-9) {
		t.Errorf("time: have %v, want %v", s.Time, want)
	}
	if want := []float64{1, 2, 3}; !floats.EqualApprox(s.Values, want, 1e-9) {
		t.Errorf("length: have %v, want %v", s.Values, want)
	}
}

func TestReadFloodGatesMissing(t *testing.T) {
	if _, err := ReadFloodGates(filepath.Join("nonexistent", "gates.shp"), 2008); err == nil {
		t.Error("expected an error")
	}
}
