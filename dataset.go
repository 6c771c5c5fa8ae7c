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
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/ctessum/cdf"
)

// Dataset is an open NetCDF file holding scalar time series.
// NetCDF classic and 64-bit-offset files are supported.
type Dataset struct {
	path string
	f    *os.File
	nc   *cdf.File
	nrec int
}

var (
	cdfMagic  = []byte("CDF")
	hdf5Magic = []byte("\x89HDF")
)

// Open opens the NetCDF file at path.
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("icets: opening dataset: %w", err)
	}
	magic := make([]byte, 4)
	if _, err := f.ReadAt(magic, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("icets: reading signature of %s: %w", path, err)
	}
	switch {
	case bytes.HasPrefix(magic, cdfMagic):
	case bytes.Equal(magic, hdf5Magic):
		f.Close()
		return nil, fmt.Errorf("icets: %s is a NetCDF-4/HDF5 file; convert it with `nccopy -k classic`: %w",
			path, ErrUnsupportedFormat)
	default:
		f.Close()
		return nil, fmt.Errorf("icets: %s is not a NetCDF file: %w", path, ErrUnsupportedFormat)
	}
	nc, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("icets: opening %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("icets: opening %s: %w", path, err)
	}
	return &Dataset{
		path: path,
		f:    f,
		nc:   nc,
		nrec: int(nc.Header.NumRecs(fi.Size())),
	}, nil
}

// Close closes the underlying file.
func (d *Dataset) Close() error { return d.f.Close() }

// Path returns the path d was opened from.
func (d *Dataset) Path() string { return d.path }

// Variables returns the names of the variables in d.
func (d *Dataset) Variables() []string { return d.nc.Header.Variables() }

// Has reports whether d contains variable name.
func (d *Dataset) Has(name string) bool {
	for _, v := range d.nc.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// Units returns the "units" attribute of variable name, or "" if
// there is none.
func (d *Dataset) Units(name string) string {
	return d.StringAttribute(name, "units")
}

// StringAttribute returns text attribute a of variable v, or of the
// file if v is "". It returns "" when the attribute is absent or not
// text.
func (d *Dataset) StringAttribute(v, a string) string {
	s, _ := d.nc.Header.GetAttribute(v, a).(string)
	return s
}

// shape returns the dimension lengths of variable name with the record
// dimension filled in.
func (d *Dataset) shape(name string) []int {
	l := append([]int(nil), d.nc.Header.Lengths(name)...)
	if d.nc.Header.IsRecordVariable(name) {
		l[0] = d.nrec
	}
	return l
}

// Values returns all values of variable name, flattened. Singleton
// dimensions are squeezed away, so a (time, 1, 1) variable gives one
// value per record. Fill values become NaN.
func (d *Dataset) Values(name string) ([]float64, error) {
	if !d.Has(name) {
		return nil, fmt.Errorf("icets: %s in %s: %w", name, d.path, ErrNoVariable)
	}
	shape := d.shape(name)
	n := 1
	for _, l := range shape {
		n *= l
	}
	if n == 0 {
		return []float64{}, nil
	}
	end := make([]int, len(shape))
	for i, l := range shape {
		end[i] = l - 1
	}
	r := d.nc.Reader(name, nil, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("icets: reading %s from %s: %w", name, d.path, err)
	}
	vals, err := toFloat64(buf)
	if err != nil {
		return nil, fmt.Errorf("icets: reading %s from %s: %w", name, d.path, err)
	}
	if fv, ok := d.fillValue(name); ok {
		for i, v := range vals {
			if v == fv {
				vals[i] = math.NaN()
			}
		}
	}
	return vals, nil
}

func (d *Dataset) fillValue(name string) (float64, bool) {
	a := d.nc.Header.GetAttribute(name, "_FillValue")
	if a == nil {
		return 0, false
	}
	v, err := toFloat64(a)
	if err != nil || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

func toFloat64(data interface{}) ([]float64, error) {
	switch t := data.(type) {
	case []float64:
		return t, nil
	case []float32:
		o := make([]float64, len(t))
		for i, v := range t {
			o[i] = float64(v)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(t))
		for i, v := range t {
			o[i] = float64(v)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(t))
		for i, v := range t {
			o[i] = float64(v)
		}
		return o, nil
	case []uint8:
		o := make([]float64, len(t))
		for i, v := range t {
			o[i] = float64(int8(v))
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported data type %T", data)
	}
}

// NumTimes returns the length of the time variable, or the number of
// records if there is no time variable.
func (d *Dataset) NumTimes() int {
	if d.Has("time") {
		s := d.shape("time")
		if len(s) > 0 {
			return s[0]
		}
	}
	return d.nrec
}

// Series reads variable name as a time series on the synthetic axis
// DateAxis(start, step, NumTimes()).
func (d *Dataset) Series(name string, start, step float64) (*Series, error) {
	vals, err := d.Values(name)
	if err != nil {
		return nil, err
	}
	n := d.NumTimes()
	if len(vals) != n {
		return nil, fmt.Errorf("icets: %s in %s has %d values but there are %d times", name, d.path, len(vals), n)
	}
	return NewSeries(name, d.Units(name), DateAxis(start, step, n), vals)
}

// Output is a set of time series to be written to a NetCDF file.
type Output struct {
	// Time holds the values of the time variable and TimeUnits its
	// units.
	Time      []float64
	TimeUnits string

	// Vars are written as record variables named after each series.
	Vars []*Series

	// Attributes are written as global attributes.
	Attributes map[string]string
}

// Write writes o to w, with time as the record dimension.
func (o *Output) Write(w *os.File) error {
	for _, v := range o.Vars {
		if v.Len() != len(o.Time) {
			return fmt.Errorf("icets: writing %s: variable has %d values but there are %d times", v.Name, v.Len(), len(o.Time))
		}
	}
	h := cdf.NewHeader([]string{"time"}, []int{0})
	for _, k := range sortedKeys(o.Attributes) {
		h.AddAttribute("", k, o.Attributes[k])
	}
	h.AddVariable("time", []string{"time"}, []float64{0})
	if o.TimeUnits != "" {
		h.AddAttribute("time", "units", o.TimeUnits)
	}
	for _, v := range o.Vars {
		h.AddVariable(v.Name, []string{"time"}, []float64{0})
		if v.Units != "" {
			h.AddAttribute(v.Name, "units", v.Units)
		}
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("icets: writing netcdf header: %w", err)
	}
	if err := writeVar(f, "time", o.Time); err != nil {
		return err
	}
	for _, v := range o.Vars {
		if err := writeVar(f, v.Name, v.Values); err != nil {
			return err
		}
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return fmt.Errorf("icets: updating record count: %w", err)
	}
	return nil
}

func writeVar(f *cdf.File, name string, data []float64) error {
	if len(data) == 0 {
		return nil
	}
	if _, err := f.Writer(name, nil, nil).Write(data); err != nil {
		return fmt.Errorf("icets: writing variable %s to netcdf file: %w", name, err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	k := make([]string, 0, len(m))
	for n := range m {
		k = append(k, n)
	}
	sort.Strings(k)
	return k
}
