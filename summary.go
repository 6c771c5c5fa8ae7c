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
	"io"
	"math"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

// SummaryRow describes one variable of one file.
type SummaryRow struct {
	File     string
	Variable string
	Units    string

	// Final is the last value of the variable.
	Final float64

	// SLE is the final value as sea level equivalent in m (or m year-1
	// for fluxes). It is NaN for variables that are neither masses nor
	// mass fluxes.
	SLE float64

	// Slope, Intercept and RSquared describe a linear fit of the
	// variable against time.
	Slope, Intercept, RSquared float64
}

// Summarize returns a row for each variable in each file. Time axes are
// built from start and step. Files lacking a variable are logged and
// skipped.
func Summarize(files, variables []string, start, step float64, log logrus.FieldLogger) ([]SummaryRow, error) {
	if len(variables) == 0 {
		return nil, fmt.Errorf("icets: summary: no variables specified")
	}
	var rows []SummaryRow
	for _, path := range files {
		ds, err := Open(path)
		if err != nil {
			return nil, err
		}
		for _, v := range variables {
			if !ds.Has(v) {
				log.WithFields(logrus.Fields{"file": path, "variable": v}).Warn("variable not in file; skipping")
				continue
			}
			s, err := ds.Series(v, start, step)
			if err != nil {
				ds.Close()
				return nil, err
			}
			r := SummaryRow{
				File:     path,
				Variable: v,
				Units:    s.Units,
				Final:    s.Last(),
				SLE:      sleOf(s),
			}
			if s.Len() > 1 {
				r.Slope, r.Intercept, r.RSquared, _ = s.Trend()
			} else {
				r.Slope, r.Intercept, r.RSquared = math.NaN(), math.NaN(), math.NaN()
			}
			rows = append(rows, r)
		}
		if err := ds.Close(); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// sleOf returns the final value of s as sea level equivalent, trying
// mass and then mass flux units.
func sleOf(s *Series) float64 {
	last := []float64{s.Last()}
	if v, err := ToSLE(last, s.Units, GtToMSLE); err == nil {
		return v[0]
	}
	if v, err := ToSLERate(last, s.Units, GtToMSLE); err == nil {
		return v[0]
	}
	return math.NaN()
}

var summaryHeader = []string{"file", "variable", "units", "final", "SLE (m)", "trend (per year)", "intercept", "r²"}

// WriteSummary writes rows to w as an aligned text table.
func WriteSummary(w io.Writer, rows []SummaryRow) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for i, h := range summaryHeader {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.6g\t%.6g\t%.6g\t%.6g\t%.4f\n",
			r.File, r.Variable, r.Units, r.Final, r.SLE, r.Slope, r.Intercept, r.RSquared)
	}
	return tw.Flush()
}

// WriteXLSX saves rows as a spreadsheet with a single "summary" sheet.
func WriteXLSX(path string, rows []SummaryRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("summary")
	if err != nil {
		return fmt.Errorf("icets: creating summary spreadsheet: %w", err)
	}
	row := sheet.AddRow()
	for _, h := range summaryHeader {
		row.AddCell().SetString(h)
	}
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.File)
		row.AddCell().SetString(r.Variable)
		row.AddCell().SetString(r.Units)
		for _, v := range []float64{r.Final, r.SLE, r.Slope, r.Intercept, r.RSquared} {
			c := row.AddCell()
			if math.IsNaN(v) {
				continue
			}
			c.SetFloat(v)
		}
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("icets: saving summary spreadsheet: %w", err)
	}
	return nil
}
