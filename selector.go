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
	"strings"

	"github.com/sirupsen/logrus"
)

// Select returns the files whose paths contain tag, in their original
// order.
func Select(files []string, tag string) []string {
	var o []string
	for _, f := range files {
		if strings.Contains(f, tag) {
			o = append(o, f)
		}
	}
	return o
}

// SelectN is like Select but returns an error wrapping ErrTooFewFiles
// when fewer than n files match.
func SelectN(files []string, tag string, n int) ([]string, error) {
	o := Select(files, tag)
	if len(o) < n {
		return o, fmt.Errorf("icets: selecting %q: %w: have %d, want %d", tag, ErrTooFewFiles, len(o), n)
	}
	return o, nil
}

// BasinFile is an input file together with the basin it holds.
type BasinFile struct {
	Path  string
	Basin Basin
}

// AssignBasins matches files to basins. A file tagged with a basin
// ("b_NE") gets that basin; an untagged file gets the basin at its
// position in AllBasins.
func AssignBasins(files []string) ([]BasinFile, error) {
	o := make([]BasinFile, len(files))
	for i, f := range files {
		b, ok := BasinOf(f)
		if !ok {
			if i >= len(AllBasins) {
				return nil, fmt.Errorf("icets: file %s has no basin tag and there are only %d basins", f, len(AllBasins))
			}
			b = AllBasins[i]
		}
		o[i] = BasinFile{Path: f, Basin: b}
	}
	return o, nil
}

// ScenarioFile is an input file together with the scenario it holds.
type ScenarioFile struct {
	Path     string
	Scenario Scenario
}

// AssignScenarios returns one file per scenario in scenarios, in order.
// Files are matched by their scenario tag. A scenario without a file is
// skipped with a warning; when several files match, the first is used.
// If none of the files carries a scenario tag, files are assigned to
// scenarios by position and an error wrapping ErrTooFewFiles is returned
// when there are fewer files than scenarios.
func AssignScenarios(files []string, scenarios []Scenario, log logrus.FieldLogger) ([]ScenarioFile, error) {
	tagged := false
	for _, f := range files {
		if _, ok := ScenarioOf(f); ok {
			tagged = true
			break
		}
	}
	var o []ScenarioFile
	if !tagged {
		if len(files) < len(scenarios) {
			return nil, fmt.Errorf("icets: assigning files to scenarios %v: %w: have %d, want %d",
				scenarios, ErrTooFewFiles, len(files), len(scenarios))
		}
		for i, s := range scenarios {
			o = append(o, ScenarioFile{Path: files[i], Scenario: s})
		}
		return o, nil
	}
	for _, s := range scenarios {
		var matched []string
		for _, f := range files {
			if fs, ok := ScenarioOf(f); ok && fs == s {
				matched = append(matched, f)
			}
		}
		switch {
		case len(matched) == 0:
			log.WithField("scenario", s).Warn("no input file for scenario; skipping")
			continue
		case len(matched) > 1:
			log.WithFields(logrus.Fields{"scenario": s, "files": matched}).Warn("several input files for scenario; using the first")
		}
		o = append(o, ScenarioFile{Path: matched[0], Scenario: s})
	}
	return o, nil
}
