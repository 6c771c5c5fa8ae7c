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

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is a scalar time series.
type Series struct {
	Name  string
	Units string

	// Time holds the time axis in years (CE).
	Time []float64

	Values []float64
}

// NewSeries creates a new series, checking that time and values have
// the same length.
func NewSeries(name, units string, time, values []float64) (*Series, error) {
	if len(time) != len(values) {
		return nil, fmt.Errorf("icets: series %s has %d times but %d values", name, len(time), len(values))
	}
	return &Series{Name: name, Units: units, Time: time, Values: values}, nil
}

// Len returns the number of points in s.
func (s *Series) Len() int { return len(s.Values) }

// Copy returns a deep copy of s.
func (s *Series) Copy() *Series {
	return &Series{
		Name:   s.Name,
		Units:  s.Units,
		Time:   append([]float64(nil), s.Time...),
		Values: append([]float64(nil), s.Values...),
	}
}

// Convert returns a copy of s in the given units.
func (s *Series) Convert(units string) (*Series, error) {
	v, err := Convert(s.Values, s.Units, units)
	if err != nil {
		return nil, fmt.Errorf("icets: series %s: %w", s.Name, err)
	}
	o := s.Copy()
	o.Values = v
	o.Units = units
	return o, nil
}

// Scale returns a copy of s with values multiplied by f and the given
// units.
func (s *Series) Scale(f float64, units string) *Series {
	o := s.Copy()
	floats.Scale(f, o.Values)
	o.Units = units
	return o
}

// Anomaly returns a copy of s with its first value subtracted.
func (s *Series) Anomaly() *Series {
	o := s.Copy()
	if o.Len() > 0 {
		floats.AddConst(-o.Values[0], o.Values)
	}
	return o
}

// RelativePercent returns a copy of s, interpreted as a ratio to a
// reference, expressed as a percent difference (v*100-100).
func (s *Series) RelativePercent() *Series {
	o := s.Scale(100, "%")
	floats.AddConst(-100, o.Values)
	return o
}

// Runmean returns a copy of s smoothed by a centered moving average
// over window points. The series is reflected at its ends so that the
// result has the same length as s. A window of one or less returns a
// copy and a window longer than the series is shortened to its length.
func (s *Series) Runmean(window int) *Series {
	o := s.Copy()
	n := s.Len()
	if window > n {
		window = n
	}
	if window <= 1 {
		return o
	}
	half := window / 2
	for i := range o.Values {
		var sum float64
		for k := 0; k < window; k++ {
			sum += s.Values[mirrorIndex(i-half+k, n)]
		}
		o.Values[i] = sum / float64(window)
	}
	return o
}

// mirrorIndex maps i onto [0, n) by mirroring about the end points without
// repeating them.
func mirrorIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// Last returns the final value of s.
func (s *Series) Last() float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.Values[s.Len()-1]
}

// At returns the value of s at the given year.
func (s *Series) At(year float64) (float64, error) {
	i, err := IndexOfYear(s.Time, year)
	if err != nil {
		return 0, fmt.Errorf("icets: series %s: %w", s.Name, err)
	}
	return s.Values[i], nil
}

// Window returns the part of s with t0 <= time <= t1.
func (s *Series) Window(t0, t1 float64) *Series {
	o := &Series{Name: s.Name, Units: s.Units}
	for i, t := range s.Time {
		if t >= t0 && t <= t1 {
			o.Time = append(o.Time, t)
			o.Values = append(o.Values, s.Values[i])
		}
	}
	return o
}

// Trend fits a straight line to s and returns its slope (units per
// year), intercept and coefficient of determination.
func (s *Series) Trend() (slope, intercept, rsquared float64, err error) {
	if s.Len() < 2 {
		return 0, 0, 0, fmt.Errorf("icets: series %s: need at least 2 points for a trend, have %d", s.Name, s.Len())
	}
	slope, intercept, rsquared, _, _, _ = stats.LinearRegression(s.Time, s.Values)
	return slope, intercept, rsquared, nil
}

// Sum returns the element-wise sum of the given series, which must have
// equal lengths and compatible units. The result is in the units and on
// the time axis of the first series.
func Sum(name string, ss ...*Series) (*Series, error) {
	if len(ss) == 0 {
		return nil, fmt.Errorf("icets: sum %s: no series", name)
	}
	o := ss[0].Copy()
	o.Name = name
	for _, s := range ss[1:] {
		if s.Len() != o.Len() {
			return nil, fmt.Errorf("icets: sum %s: series %s has length %d, want %d", name, s.Name, s.Len(), o.Len())
		}
		if s.Units == o.Units {
			floats.Add(o.Values, s.Values)
			continue
		}
		c, err := s.Convert(o.Units)
		if err != nil {
			return nil, fmt.Errorf("icets: sum %s: %w", name, err)
		}
		floats.Add(o.Values, c.Values)
	}
	return o, nil
}

// Percentiles returns, for each p in ps (between 0 and 1), the series of
// the p-th empirical quantile across ensemble members at each time.
// Members must have equal lengths; the time axis of the first member is
// used.
func Percentiles(members []*Series, ps []float64) ([]*Series, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("icets: percentiles: no ensemble members")
	}
	n := members[0].Len()
	for _, m := range members[1:] {
		if m.Len() != n {
			return nil, fmt.Errorf("icets: percentiles: member %s has length %d, want %d", m.Name, m.Len(), n)
		}
	}
	o := make([]*Series, len(ps))
	for j, p := range ps {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("icets: percentile %g out of range [0, 1]", p)
		}
		o[j] = &Series{
			Name:   fmt.Sprintf("%s_p%.0f", members[0].Name, p*100),
			Units:  members[0].Units,
			Time:   append([]float64(nil), members[0].Time...),
			Values: make([]float64, n),
		}
	}
	col := make([]float64, len(members))
	for i := 0; i < n; i++ {
		for k, m := range members {
			col[k] = m.Values[i]
		}
		sort.Float64s(col)
		for j, p := range ps {
			o[j].Values[i] = stat.Quantile(p, stat.Empirical, col, nil)
		}
	}
	return o, nil
}
