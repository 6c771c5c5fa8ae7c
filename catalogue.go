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
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// BasinShape describes one polygon of a drainage basin shapefile.
type BasinShape struct {
	Basin string
	UGID  int

	// Area is the polygon area in km², assuming projected coordinates in
	// meters.
	Area float64
}

// ReadBasinCatalogue lists the basins in a basin outline shapefile. The
// shapefile must have a "basin" attribute; a "UGID" attribute is read
// when present. The attribute names of the shapefile are also returned.
func ReadBasinCatalogue(path string) ([]BasinShape, []string, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, nil, fmt.Errorf("icets: opening basin shapefile: %w", err)
	}
	defer d.Close()

	names := fieldNames(d.Fields())
	basinField, ugidField := findField(names, "basin"), findField(names, "ugid")
	if basinField == "" {
		return nil, names, fmt.Errorf("icets: basin shapefile %s has no 'basin' attribute; attributes are %v", path, names)
	}
	want := []string{basinField}
	if ugidField != "" {
		want = append(want, ugidField)
	}

	var o []BasinShape
	for {
		g, fields, more := d.DecodeRowFields(want...)
		if !more {
			break
		}
		b := BasinShape{Basin: trimAttribute(fields[basinField])}
		if ugidField != "" {
			if s := trimAttribute(fields[ugidField]); s != "" {
				id, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, names, fmt.Errorf("icets: basin shapefile %s: invalid UGID %q", path, s)
				}
				b.UGID = int(id)
			}
		}
		if p, ok := g.(geom.Polygonal); ok {
			b.Area = p.Area() / 1e6
		}
		o = append(o, b)
	}
	if err := d.Error(); err != nil {
		return nil, names, fmt.Errorf("icets: reading basin shapefile %s: %w", path, err)
	}
	return o, names, nil
}

func fieldNames(fields []goshp.Field) []string {
	o := make([]string, len(fields))
	for i, f := range fields {
		o[i] = strings.TrimRight(string(f.Name[:]), "\x00")
	}
	return o
}

// findField returns the attribute in names matching name, ignoring case.
func findField(names []string, name string) string {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n
		}
	}
	return ""
}

func trimAttribute(s string) string { return strings.Trim(s, "\x00 ") }
