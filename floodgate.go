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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
)

// floodGateRecord is one time step of flood-gate outlines.
type floodGateRecord struct {
	geom.Geom
	Timestep  float64
	Timestamp string
}

// ReadFloodGates reads a shapefile of flood-gate polygons, one record per
// time step, and returns their total length in km as a time series. Gates
// are thin strips, so length is approximated as half the area (in m²,
// giving meters). Times are the "timestep" attribute plus startYear.
func ReadFloodGates(path string, startYear float64) (*Series, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("icets: opening flood gate shapefile: %w", err)
	}
	defer d.Close()

	type point struct{ t, l float64 }
	var pts []point
	for {
		var rec floodGateRecord
		if more := d.DecodeRow(&rec); !more {
			break
		}
		var length float64
		if rec.Geom != nil {
			p, ok := rec.Geom.(geom.Polygonal)
			if !ok {
				return nil, fmt.Errorf("icets: flood gate shapefile %s: geometry type %T is not polygonal", path, rec.Geom)
			}
			length = p.Area() / 2
		}
		pts = append(pts, point{t: rec.Timestep + startYear, l: length / 1000})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("icets: reading flood gate shapefile %s: %w", path, err)
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].t < pts[j].t })

	s := &Series{Name: "flood_gate_length", Units: "km"}
	for _, p := range pts {
		s.Time = append(s.Time, p.t)
		s.Values = append(s.Values, p.l)
	}
	return s, nil
}
