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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/icets"
	"github.com/spf13/cast"
)

// expandStringSlice replaces environment variables in s.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile checks that the directory of output stem f exists.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("icets: you need to specify an output file (for example: --output_file=ts_control)")
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("icets: the output_file directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkOutputDir checks that directory d exists.
func checkOutputDir(d string) (string, error) {
	d = os.ExpandEnv(d)
	fi, err := os.Stat(d)
	if err != nil {
		return d, fmt.Errorf("icets: the o_dir directory doesn't exist: %v", err)
	}
	if !fi.IsDir() {
		return d, fmt.Errorf("icets: o_dir %s is not a directory", d)
	}
	return d, nil
}

// checkLogFile returns the log file path, placing relative paths in
// the directory of outputFile.
func checkLogFile(logFile, outputFile string) string {
	logFile = os.ExpandEnv(logFile)
	if logFile == "" || filepath.IsAbs(logFile) || outputFile == "" {
		return logFile
	}
	return filepath.Join(filepath.Dir(outputFile), logFile)
}

// inputFiles returns the command arguments if there are any and the
// "files" configuration variable otherwise.
func inputFiles(args []string, cfg *viper.Viper) ([]string, error) {
	files := args
	if len(files) == 0 {
		files = cfg.GetStringSlice("files")
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("icets: no input files specified: %w", icets.ErrTooFewFiles)
	}
	return expandStringSlice(append([]string(nil), files...)), nil
}

// getStringSlice returns configuration variable varName as a string
// slice, splitting single strings on commas.
func getStringSlice(varName string, cfg *viper.Viper) ([]string, error) {
	i := cfg.Get(varName)
	if i == nil {
		return nil, nil
	}
	if s, ok := i.(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return splitList(s), nil
	}
	s, err := cast.ToStringSliceE(i)
	if err != nil {
		return nil, fmt.Errorf("icets: invalid value for %s: %v", varName, err)
	}
	if len(s) == 1 && strings.Contains(s[0], ",") {
		return splitList(s[0]), nil
	}
	return s, nil
}

func splitList(s string) []string {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// getFloatSlice returns configuration variable varName as a slice of
// floats. The slice must have n elements unless n is negative; an empty
// value gives a nil slice.
func getFloatSlice(varName string, n int, cfg *viper.Viper) ([]float64, error) {
	var vals []interface{}
	switch t := cfg.Get(varName).(type) {
	case []interface{}:
		vals = t
	case []float64:
		for _, v := range t {
			vals = append(vals, v)
		}
	default:
		s, err := getStringSlice(varName, cfg)
		if err != nil {
			return nil, err
		}
		for _, v := range s {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil, nil
	}
	if n >= 0 && len(vals) != n {
		return nil, fmt.Errorf("icets: %s must have %d values but has %d", varName, n, len(vals))
	}
	o := make([]float64, len(vals))
	for i, v := range vals {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("icets: invalid value for %s: %v", varName, err)
		}
		o[i] = f
	}
	return o, nil
}

// GetStringMapString returns a map[string]string from a configuration
// variable that is a map or a JSON-encoded map.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch t := i.(type) {
	case map[string]string:
		return t, nil
	case map[string]interface{}:
		return cast.ToStringMapString(t), nil
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(t) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(t))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("icets: decoding %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("icets: invalid type for map variable %s: %#v", varName, i)
	}
}

// plotOptions creates plot options from cfg.
func plotOptions(cfg *viper.Viper) (icets.PlotOptions, error) {
	var o icets.PlotOptions
	var err error
	if o.Basin, err = icets.ParseBasin(cfg.GetString("basin")); err != nil {
		return o, err
	}
	if o.Bounds, err = getFloatSlice("bounds", 2, cfg); err != nil {
		return o, err
	}
	if o.TimeBounds, err = getFloatSlice("time_bounds", 2, cfg); err != nil {
		return o, err
	}
	pct, err := getFloatSlice("percentiles", -1, cfg)
	if err != nil {
		return o, err
	}
	for _, p := range pct {
		o.Percentiles = append(o.Percentiles, p/100)
	}
	if o.Labels, err = getStringSlice("labels", cfg); err != nil {
		return o, err
	}
	if o.Variables, err = getStringSlice("variables", cfg); err != nil {
		return o, err
	}
	if o.OutputFile, err = checkOutputFile(cfg.GetString("output_file")); err != nil {
		return o, err
	}
	o.StartYear = cfg.GetFloat64("start_year")
	o.Step = cfg.GetFloat64("step")
	if o.Step <= 0 {
		return o, fmt.Errorf("icets: step must be positive, but is %g", o.Step)
	}
	o.Runmean = cfg.GetInt("runmean")
	o.SwitchSign = cfg.GetBool("switch_sign")
	o.Normalize = cfg.GetBool("normalize")
	o.Twinx = cfg.GetBool("twinx")
	o.RotateXTicks = cfg.GetBool("rotate_xticks")
	o.Title = cfg.GetString("title")
	o.Log = Log
	return o, nil
}
