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
	"image/color"
	"path/filepath"
	"strconv"
	"strings"
)

// Basin is a drainage basin code.
type Basin string

// Drainage basins. GR stands for the whole ice sheet.
const (
	CW Basin = "CW"
	NE Basin = "NE"
	NO Basin = "NO"
	NW Basin = "NW"
	SE Basin = "SE"
	SW Basin = "SW"
	GR Basin = "GR"
)

// AllBasins lists the basins in the order in which untagged per-basin
// input files are assigned to them.
var AllBasins = []Basin{CW, NE, NO, NW, SE, SW, GR}

var basinColors = map[Basin]string{
	SW: "#542788",
	CW: "#b35806",
	NE: "#e08214",
	NO: "#fdb863",
	NW: "#b2abd2",
	SE: "#8073ac",
	GR: "#000000",
}

// ParseBasin returns the basin with the given code, ignoring case.
func ParseBasin(s string) (Basin, error) {
	b := Basin(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := basinColors[b]; !ok {
		return "", fmt.Errorf("icets: invalid basin %q; valid basins are %v", s, AllBasins)
	}
	return b, nil
}

// Tag returns the substring that marks files belonging to b.
func (b Basin) Tag() string { return "b_" + string(b) }

// Color returns the colour b is drawn in.
func (b Basin) Color() color.Color { return mustHex(basinColors[b]) }

// Scenario is a climate forcing scenario.
type Scenario string

// Forcing scenarios.
const (
	RCP26 Scenario = "RCP26"
	RCP45 Scenario = "RCP45"
	RCP85 Scenario = "RCP85"
	CTRL  Scenario = "CTRL"
)

// RCPs lists the representative concentration pathways in plotting order.
var RCPs = []Scenario{RCP26, RCP45, RCP85}

var allScenarios = []Scenario{RCP26, RCP45, RCP85, CTRL}

var scenarioColors = map[Scenario]string{
	CTRL:  "#000000",
	RCP85: "#d94701",
	RCP45: "#fd8d3c",
	RCP26: "#fdbe85",
}

// ParseScenario accepts "RCP26", "rcp_26", "rcp26", "26" and "ctrl" style
// names.
func ParseScenario(s string) (Scenario, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	t = strings.Replace(t, "_", "", -1)
	t = strings.Replace(t, " ", "", -1)
	t = strings.Replace(t, ".", "", -1)
	if t == "CTRL" {
		return CTRL, nil
	}
	t = strings.TrimPrefix(t, "RCP")
	sc := Scenario("RCP" + t)
	if _, ok := scenarioColors[sc]; !ok {
		return "", fmt.Errorf("icets: invalid scenario %q; valid scenarios are %v and %v", s, RCPs, CTRL)
	}
	return sc, nil
}

// Code returns the numeric code of an RCP scenario, e.g. "26".
// CTRL has no code and returns "".
func (s Scenario) Code() string {
	if s == CTRL {
		return ""
	}
	return strings.TrimPrefix(string(s), "RCP")
}

// Tag returns the substring that marks files belonging to s.
func (s Scenario) Tag() string {
	if s == CTRL {
		return "ctrl"
	}
	return "rcp_" + s.Code()
}

// Label returns the legend label for s, e.g. "RCP 2.6".
func (s Scenario) Label() string {
	c := s.Code()
	if len(c) != 2 {
		return string(s)
	}
	return "RCP " + c[:1] + "." + c[1:]
}

// Color returns the colour s is drawn in.
func (s Scenario) Color() color.Color { return mustHex(scenarioColors[s]) }

// BasinOf returns the basin tagged in the file name of path.
func BasinOf(path string) (Basin, bool) {
	name := filepath.Base(path)
	for _, b := range AllBasins {
		if hasTag(name, b.Tag()) {
			return b, true
		}
	}
	return "", false
}

// ScenarioOf returns the scenario tagged in the file name of path.
func ScenarioOf(path string) (Scenario, bool) {
	name := filepath.Base(path)
	for _, s := range allScenarios {
		if strings.Contains(name, s.Tag()) {
			return s, true
		}
	}
	return "", false
}

// ResolutionOf returns the grid spacing in meters tagged in the file
// name of path as "g<N>m".
func ResolutionOf(path string) (float64, bool) {
	name := filepath.Base(path)
	for i := strings.Index(name, "g"); i >= 0; {
		j := i + 1
		for j < len(name) && name[j] >= '0' && name[j] <= '9' {
			j++
		}
		if j > i+1 && j < len(name) && name[j] == 'm' {
			v, err := strconv.ParseFloat(name[i+1:j], 64)
			if err == nil {
				return v, true
			}
		}
		k := strings.Index(name[i+1:], "g")
		if k < 0 {
			break
		}
		i += k + 1
	}
	return 0, false
}

// hasTag reports whether tag occurs in name without being followed by a
// letter, so that "b_NO" does not match "b_NORTH".
func hasTag(name, tag string) bool {
	for i := strings.Index(name, tag); i >= 0; {
		end := i + len(tag)
		if end == len(name) || !isLetter(name[end]) {
			return true
		}
		k := strings.Index(name[end:], tag)
		if k < 0 {
			return false
		}
		i = end + k
	}
	return false
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

// mustHex parses a "#rrggbb" colour.
func mustHex(s string) color.Color {
	if len(s) != 7 || s[0] != '#' {
		panic(fmt.Errorf("icets: invalid colour %q", s))
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		panic(err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
