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
	"sort"

	"github.com/sirupsen/logrus"
)

// Axis labels.
const (
	yearLabel       = "Year (CE)"
	fluxLabel       = "mass flux (Gt yr-1)"
	cumulativeLabel = "cumulative mass change (Gt)"
	gmslLabel       = "Δ(GMSL) (m)"
	gmslRateLabel   = "Δ(GMSL) rate (m yr-1)"
	anomalyLabel    = "mass flux anomaly (%)"
	lengthLabel     = "length (km)"
)

// Mass flux variables with the cumulative mass variables they integrate
// to.
var fluxToMass = map[string]string{
	"tendency_of_ice_mass":                           "ice_mass",
	"tendency_of_ice_mass_due_to_flow":               "flow_cumulative",
	"tendency_of_ice_mass_due_to_conservation_error": "conservation_error_cumulative",
	"tendency_of_ice_mass_due_to_basal_mass_flux":    "basal_mass_flux_cumulative",
	"tendency_of_ice_mass_due_to_surface_mass_flux":  "surface_mass_flux_cumulative",
	"tendency_of_ice_mass_due_to_discharge":          "discharge_cumulative",
}

// FluxVariables lists the mass flux variables in plotting order.
var FluxVariables = []string{
	"tendency_of_ice_mass",
	"tendency_of_ice_mass_due_to_flow",
	"tendency_of_ice_mass_due_to_conservation_error",
	"tendency_of_ice_mass_due_to_basal_mass_flux",
	"tendency_of_ice_mass_due_to_surface_mass_flux",
	"tendency_of_ice_mass_due_to_discharge",
}

type varStyle struct {
	abbr, short string
	style       LineStyle
}

var fluxStyles = map[string]varStyle{
	"tendency_of_ice_mass":                           {"dM/dt", "dmdt", Solid},
	"tendency_of_ice_mass_due_to_flow":               {"divQ", "divq", Dotted},
	"tendency_of_ice_mass_due_to_conservation_error": {"e", "e", Dotted},
	"tendency_of_ice_mass_due_to_basal_mass_flux":    {"BMB", "bmb", DashDot},
	"tendency_of_ice_mass_due_to_surface_mass_flux":  {"SMB", "smb", Dotted},
	"tendency_of_ice_mass_due_to_discharge":          {"D", "d", Dashed},
}

var massStyles = map[string]varStyle{
	"ice_mass":                      {"M", "m", Solid},
	"flow_cumulative":               {"Q", "q", Dotted},
	"conservation_error_cumulative": {"e", "e", Dotted},
	"basal_mass_flux_cumulative":    {"BMB", "bmb", DashDot},
	"surface_mass_flux_cumulative":  {"SMB", "smb", Dotted},
	"discharge_cumulative":          {"D", "d", Dashed},
}

// PlotOptions holds the settings shared by all plot kinds.
type PlotOptions struct {
	// Basin is the basin whose colour is used by single-file plots.
	Basin Basin

	// Bounds holds the lower and upper ordinate limits.
	Bounds []float64

	// TimeBounds holds the lower and upper abscissa limits in years.
	// Plots that annotate final values do so at TimeBounds[1].
	TimeBounds []float64

	// StartYear and Step define the time axis of the input files:
	// StartYear+Step, StartYear+2*Step, ...
	StartYear, Step float64

	// Runmean is the running mean window in time steps. Values of one
	// or less disable smoothing.
	Runmean int

	// OutputFile is the output file stem, which plot kinds extend.
	OutputFile string

	// Labels, when not empty, replace the legend labels in order.
	Labels []string

	// SwitchSign negates and Normalize subtracts the first value from
	// line series.
	SwitchSign, Normalize bool

	// Percentiles are the ensemble quantiles, between 0 and 1.
	Percentiles []float64

	// Variables overrides the variables drawn by the fluxes plot.
	Variables []string

	Title        string
	Twinx        bool
	RotateXTicks bool

	Log logrus.FieldLogger
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Basin == "" {
		o.Basin = GR
	}
	if len(o.TimeBounds) != 2 {
		o.TimeBounds = []float64{2009, 3000}
	}
	if o.Step == 0 {
		o.Step = 1
	}
	if o.OutputFile == "" {
		o.OutputFile = "unnamed"
	}
	if len(o.Percentiles) == 0 {
		o.Percentiles = []float64{0.16, 0.5, 0.84}
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	return o
}

type plotFunc func(files []string, o *PlotOptions) ([]*Figure, error)

var plotKinds = map[string]plotFunc{
	"basin_discharge":      basinFluxPlot("tendency_of_ice_mass_due_to_discharge"),
	"basin_smb":            basinFluxPlot("tendency_of_ice_mass_due_to_surface_mass_flux"),
	"rel_basin_discharge":  relBasinDischargePlot,
	"basin_mass":           basinMassPlot("ice_mass"),
	"basin_mass_d":         basinMassDPlot,
	"basin_d_cumulative":   basinMassPlot("discharge_cumulative"),
	"flood_gates":          floodGatesPlot,
	"per_basin_fluxes":     perBasinFluxesPlot,
	"per_basin_cumulative": perBasinCumulativePlot,
	"rcp_mass":             rcpMassPlot("ice_mass"),
	"rcp_lapse_mass":       rcpLapseMassPlot,
	"rcp_d":                rcpMassPlot("discharge_cumulative"),
	"rcp_ensemble":         rcpEnsemblePlot,
	"grid_resolution":      gridResolutionPlot,
	"fluxes":               fluxesPlot,
}

// PlotKinds returns the names of the available plot kinds, sorted.
func PlotKinds() []string {
	o := make([]string, 0, len(plotKinds))
	for k := range plotKinds {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// Plot builds the figures of the given kind from files. Every file that
// is opened is closed before Plot returns.
func Plot(kind string, files []string, opts PlotOptions) ([]*Figure, error) {
	f, ok := plotKinds[kind]
	if !ok {
		return nil, fmt.Errorf("icets: plot kind %q: %w; valid kinds are %v", kind, ErrUnknownPlot, PlotKinds())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("icets: plot %s: %w: no input files", kind, ErrTooFewFiles)
	}
	o := opts.withDefaults()
	figs, err := f(files, &o)
	if err != nil {
		return nil, fmt.Errorf("icets: plot %s: %w", kind, err)
	}
	for _, fig := range figs {
		fig.Title = o.Title
		fig.RotateXTicks = o.RotateXTicks
		if len(o.Bounds) == 2 {
			fig.YBounds = append([]float64(nil), o.Bounds...)
		}
		if len(o.Labels) > 0 {
			fig.relabel(o.Labels)
		}
	}
	return figs, nil
}

// timeFigure returns an empty figure with a time abscissa.
func (o *PlotOptions) timeFigure(suffix, ylabel string) *Figure {
	return &Figure{
		Stem:    o.OutputFile + suffix,
		XLabel:  yearLabel,
		YLabel:  ylabel,
		XBounds: append([]float64(nil), o.TimeBounds...),
	}
}

// load opens path, calls f and closes the dataset.
func (o *PlotOptions) load(path string, f func(ds *Dataset) error) error {
	o.Log.WithField("file", path).Info("reading")
	ds, err := Open(path)
	if err != nil {
		return err
	}
	defer ds.Close()
	return f(ds)
}

// read returns variable name of ds converted to units.
func (o *PlotOptions) read(ds *Dataset, name, units string) (*Series, error) {
	s, err := ds.Series(name, o.StartYear, o.Step)
	if err != nil {
		return nil, err
	}
	if units == "" {
		return s, nil
	}
	return s.Convert(units)
}

// sle returns the sum of the given mass variables of ds as sea level
// equivalent in m, named name. With no parts, variable name itself is
// read.
func (o *PlotOptions) sle(ds *Dataset, name string, parts ...string) (*Series, error) {
	if len(parts) == 0 {
		parts = []string{name}
	}
	ss := make([]*Series, len(parts))
	for i, p := range parts {
		s, err := ds.Series(p, o.StartYear, o.Step)
		if err != nil {
			return nil, err
		}
		v, err := ToSLE(s.Values, s.Units, GtToMSLE)
		if err != nil {
			return nil, fmt.Errorf("icets: %s in %s: %w", p, ds.Path(), err)
		}
		ss[i] = &Series{Name: p, Units: "m", Time: s.Time, Values: v}
	}
	return Sum(name, ss...)
}

// cumulativeParts returns the mass variables summed to give variable.
// Cumulative discharge includes basal mass flux.
func cumulativeParts(variable string) []string {
	if variable == "discharge_cumulative" {
		return []string{"discharge_cumulative", "basal_mass_flux_cumulative"}
	}
	return []string{variable}
}

// adjust applies the sign switch and normalization options to s.
func (o *PlotOptions) adjust(s *Series) *Series {
	if o.SwitchSign {
		s = s.Scale(-1, s.Units)
	}
	if o.Normalize {
		s = s.Anomaly()
	}
	return s
}

// lines returns the lines that draw s. With a running mean, a thin line
// of the raw values is drawn below the labelled smoothed line.
func (o *PlotOptions) lines(s *Series, c color.Color, style LineStyle, label string) []Line {
	if o.Runmean <= 1 {
		return []Line{{Label: label, X: s.Time, Y: s.Values, Color: c, Width: 0.5, Style: style}}
	}
	r := s.Runmean(o.Runmean)
	return []Line{
		{X: s.Time, Y: s.Values, Color: c, Width: 0.25, Style: style},
		{Label: label, X: r.Time, Y: r.Values, Color: c, Width: 0.5, Style: style},
	}
}

// stack accumulates series drawn on top of each other.
type stack struct {
	sum []float64
}

// add returns the band from the current top of the stack to the top
// after adding s.
func (st *stack) add(s *Series) (lower, upper []float64, err error) {
	if st.sum == nil {
		st.sum = make([]float64, s.Len())
	}
	if len(st.sum) != s.Len() {
		return nil, nil, fmt.Errorf("icets: stacking %s: series has %d values, want %d", s.Name, s.Len(), len(st.sum))
	}
	lower = append([]float64(nil), st.sum...)
	for i, v := range s.Values {
		st.sum[i] += v
	}
	upper = append([]float64(nil), st.sum...)
	return lower, upper, nil
}

// top returns the value at the top of the stack at index i.
func (st *stack) top(i int) float64 {
	if i < 0 || i >= len(st.sum) {
		return 0
	}
	return st.sum[i]
}

func basinFluxPlot(variable string) plotFunc {
	return func(files []string, o *PlotOptions) ([]*Figure, error) {
		bf, err := AssignBasins(files)
		if err != nil {
			return nil, err
		}
		fig := o.timeFigure("_"+fluxStyles[variable].short, fluxLabel)
		fig.HLines = []float64{0}
		for _, f := range bf {
			err := o.load(f.Path, func(ds *Dataset) error {
				s, err := o.read(ds, variable, FluxUnits)
				if err != nil {
					return err
				}
				fig.Lines = append(fig.Lines, o.lines(o.adjust(s), f.Basin.Color(), Solid, string(f.Basin))...)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		return []*Figure{fig}, nil
	}
}

// relBasinDischargePlot draws discharge relative to a reference run,
// stored as a ratio, as a percent anomaly.
func relBasinDischargePlot(files []string, o *PlotOptions) ([]*Figure, error) {
	bf, err := AssignBasins(files)
	if err != nil {
		return nil, err
	}
	fig := o.timeFigure("_discharge_flux_anomaly", anomalyLabel)
	fig.HLines = []float64{0}
	for _, f := range bf {
		err := o.load(f.Path, func(ds *Dataset) error {
			s, err := o.read(ds, "tendency_of_ice_mass_due_to_discharge", "")
			if err != nil {
				return err
			}
			s = s.RelativePercent()
			fig.Lines = append(fig.Lines, Line{
				Label: string(f.Basin),
				X:     s.Time,
				Y:     s.Values,
				Color: f.Basin.Color(),
				Width: 0.75,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return []*Figure{fig}, nil
}

// basinMassPlot stacks the sea level contribution of each basin and
// labels each band with its final value.
func basinMassPlot(variable string) plotFunc {
	return func(files []string, o *PlotOptions) ([]*Figure, error) {
		bf, err := AssignBasins(files)
		if err != nil {
			return nil, err
		}
		fig := o.timeFigure("_"+variable, gmslLabel)
		var st stack
		for _, f := range bf {
			err := o.load(f.Path, func(ds *Dataset) error {
				s, err := o.sle(ds, variable, cumulativeParts(variable)...)
				if err != nil {
					return err
				}
				base := st.top(s.Len() - 1)
				lower, upper, err := st.add(s)
				if err != nil {
					return err
				}
				fig.Bands = append(fig.Bands, Band{
					Label: string(f.Basin),
					X:     s.Time,
					Lower: lower,
					Upper: upper,
					Color: f.Basin.Color(),
				})
				fig.Labels = append(fig.Labels, Text{
					X:     o.TimeBounds[1] + 10,
					Y:     base,
					Text:  fmt.Sprintf("% .2f", s.Last()),
					Color: f.Basin.Color(),
				})
				o.Log.WithFields(logrus.Fields{"basin": f.Basin, "sle": s.Last()}).Info("final sea level contribution")
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		return []*Figure{fig}, nil
	}
}

// basinMassDPlot stacks basins that lose mass by TimeBounds[1] upwards
// and those that gain mass downwards, and labels each losing basin with
// the share of its mass loss due to discharge.
func basinMassDPlot(files []string, o *PlotOptions) ([]*Figure, error) {
	bf, err := AssignBasins(files)
	if err != nil {
		return nil, err
	}
	fig := o.timeFigure("_ice_mass", gmslLabel)
	fig.HLines = []float64{0}
	var pos, neg stack
	for _, f := range bf {
		err := o.load(f.Path, func(ds *Dataset) error {
			mass, err := o.sle(ds, "ice_mass")
			if err != nil {
				return err
			}
			d, err := o.sle(ds, "discharge_cumulative", cumulativeParts("discharge_cumulative")...)
			if err != nil {
				return err
			}
			idx, err := IndexOfYear(mass.Time, o.TimeBounds[1])
			if err != nil {
				return fmt.Errorf("icets: %s: %w", f.Path, err)
			}
			st := &neg
			var y float64
			if mass.Values[idx] > 0 {
				st = &pos
				y = pos.top(idx)
			} else {
				y = neg.top(idx) + mass.Values[idx]
			}
			lower, upper, err := st.add(mass)
			if err != nil {
				return err
			}
			fig.Bands = append(fig.Bands, Band{
				Label: string(f.Basin),
				X:     mass.Time,
				Lower: lower,
				Upper: upper,
				Color: f.Basin.Color(),
			})
			fig.Lines = append(fig.Lines, Line{X: mass.Time, Y: upper, Color: color.Black, Width: 0.1})

			if mass.Values[idx] == 0 {
				o.Log.WithField("basin", f.Basin).Warn("no mass change; not labelling the discharge share")
				return nil
			}
			pct := d.Values[idx] / mass.Values[idx] * 100
			o.Log.WithFields(logrus.Fields{
				"basin":             f.Basin,
				"discharge_percent": pct,
				"discharge_sle":     d.Values[idx],
				"mass_sle":          mass.Values[idx],
			}).Info("contribution of discharge to mass change")
			if pct > 0 {
				fig.Labels = append(fig.Labels, Text{
					X:     mass.Time[idx],
					Y:     y,
					Text:  fmt.Sprintf("% 3.0f%%", pct),
					Color: f.Basin.Color(),
				})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return []*Figure{fig}, nil
}

func perBasinFluxesPlot(files []string, o *PlotOptions) ([]*Figure, error) {
	vars := []string{
		"tendency_of_ice_mass",
		"tendency_of_ice_mass_due_to_discharge",
		"tendency_of_ice_mass_due_to_surface_mass_flux",
	}
	bf, err := AssignBasins(files)
	if err != nil {
		return nil, err
	}
	var figs []*Figure
	for _, f := range bf {
		fig := o.timeFigure(fmt.Sprintf("_basin_%s_fluxes", f.Basin), gmslRateLabel)
		err := o.load(f.Path, func(ds *Dataset) error {
			for _, v := range vars {
				s, err := ds.Series(v, o.StartYear, o.Step)
				if err != nil {
					return err
				}
				if s.Values, err = ToSLERate(s.Values, s.Units, GtToMSLE); err != nil {
					return fmt.Errorf("icets: %s in %s: %w", v, ds.Path(), err)
				}
				s.Units = "m year-1"
				st := fluxStyles[v]
				fig.Lines = append(fig.Lines, o.lines(o.adjust(s), f.Basin.Color(), st.style, st.abbr)...)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		figs = append(figs, fig)
	}
	return figs, nil
}

func perBasinCumulativePlot(files []string, o *PlotOptions) ([]*Figure, error) {
	vars := []string{"ice_mass", "discharge_cumulative", "surface_mass_flux_cumulative"}
	bf, err := AssignBasins(files)
	if err != nil {
		return nil, err
	}
	var figs []*Figure
	for _, f := range bf {
		fig := o.timeFigure(fmt.Sprintf("_basin_%s_cumulative", f.Basin), cumulativeLabel)
		fig.Twin = &TwinAxis{Scale: GtToMmSLE, Label: "mm SLE"}
		err := o.load(f.Path, func(ds *Dataset) error {
			for _, v := range vars {
				parts := cumulativeParts(v)
				ss := make([]*Series, len(parts))
				for i, p := range parts {
					s, err := o.read(ds, p, MassUnits)
					if err != nil {
						return err
					}
					ss[i] = s
				}
				s, err := Sum(v, ss...)
				if err != nil {
					return err
				}
				st := massStyles[v]
				fig.Lines = append(fig.Lines, o.lines(o.adjust(s), f.Basin.Color(), st.style, st.abbr)...)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		figs = append(figs, fig)
	}
	return figs, nil
}

func rcpMassPlot(variable string) plotFunc {
	return func(files []string, o *PlotOptions) ([]*Figure, error) {
		sf, err := AssignScenarios(files, RCPs, o.Log)
		if err != nil {
			return nil, err
		}
		fig := o.timeFigure("_rcp_"+variable, gmslLabel)
		for _, f := range sf {
			err := o.load(f.Path, func(ds *Dataset) error {
				s, err := o.sle(ds, variable)
				if err != nil {
					return err
				}
				fig.Lines = append(fig.Lines, o.lines(o.adjust(s), f.Scenario.Color(), Solid, f.Scenario.Label())...)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		return []*Figure{fig}, nil
	}
}

// rcpLapseMassPlot compares runs with a surface temperature lapse rate
// (the first three files) against runs without (the next three).
func rcpLapseMassPlot(files []string, o *PlotOptions) ([]*Figure, error) {
	n := 2 * len(RCPs)
	if len(files) < n {
		return nil, fmt.Errorf("icets: lapse rate comparison: %w: have %d, want %d", ErrTooFewFiles, len(files), n)
	}
	lapse, err := AssignScenarios(files[:len(RCPs)], RCPs, o.Log)
	if err != nil {
		return nil, err
	}
	ctrl, err := AssignScenarios(files[len(RCPs):n], RCPs, o.Log)
	if err != nil {
		return nil, err
	}
	fig := o.timeFigure("_rcp_ice_mass", gmslLabel)
	final := make(map[Scenario]float64)
	for _, f := range ctrl {
		err := o.load(f.Path, func(ds *Dataset) error {
			s, err := o.sle(ds, "ice_mass")
			if err != nil {
				return err
			}
			final[f.Scenario] = s.Last()
			fig.Lines = append(fig.Lines, Line{X: s.Time, Y: s.Values, Color: f.Scenario.Color(), Width: 0.5, Style: Dotted})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	for _, f := range lapse {
		err := o.load(f.Path, func(ds *Dataset) error {
			s, err := o.sle(ds, "ice_mass")
			if err != nil {
				return err
			}
			fig.Lines = append(fig.Lines, Line{Label: f.Scenario.Label(), X: s.Time, Y: s.Values, Color: f.Scenario.Color(), Width: 0.5})
			ref, ok := final[f.Scenario]
			if !ok || ref == 0 {
				o.Log.WithField("scenario", f.Scenario).Warn("no reference run for lapse rate comparison")
				return nil
			}
			fig.Labels = append(fig.Labels, Text{
				X:     o.TimeBounds[1],
				Y:     s.Last(),
				Text:  fmt.Sprintf("% 3.0f%%", (s.Last()-ref)/ref*100),
				Color: f.Scenario.Color(),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Legend entries come first.
	sort.SliceStable(fig.Lines, func(i, j int) bool { return fig.Lines[i].Label != "" && fig.Lines[j].Label == "" })
	return []*Figure{fig}, nil
}

func floodGatesPlot(files []string, o *PlotOptions) ([]*Figure, error) {
	sf, err := AssignScenarios(files, RCPs, o.Log)
	if err != nil {
		return nil, err
	}
	fig := o.timeFigure("", lengthLabel)
	for _, f := range sf {
		o.Log.WithField("file", f.Path).Info("reading")
		s, err := ReadFloodGates(f.Path, o.StartYear)
		if err != nil {
			return nil, err
		}
		fig.Lines = append(fig.Lines, Line{Label: f.Scenario.Label(), X: s.Time, Y: s.Values, Color: f.Scenario.Color(), Width: 0.5})
	}
	return []*Figure{fig}, nil
}

// fluxesPlot draws the mass fluxes of the first file.
func fluxesPlot(files []string, o *PlotOptions) ([]*Figure, error) {
	fig := o.timeFigure("_fluxes", fluxLabel)
	if o.Twinx {
		fig.Twin = &TwinAxis{Scale: GtToMmSLE, Label: "mm SLE yr-1"}
	}
	err := o.load(files[0], func(ds *Dataset) error {
		vars := o.Variables
		if len(vars) == 0 {
			for _, v := range FluxVariables {
				if ds.Has(v) {
					vars = append(vars, v)
				}
			}
		}
		if len(vars) == 0 {
			return fmt.Errorf("icets: %s has no mass flux variables: %w", ds.Path(), ErrNoVariable)
		}
		for _, v := range vars {
			s, err := o.read(ds, v, FluxUnits)
			if err != nil {
				return err
			}
			st, ok := fluxStyles[v]
			if !ok {
				st = varStyle{abbr: v, style: Solid}
			}
			fig.Lines = append(fig.Lines, o.lines(o.adjust(s), o.Basin.Color(), st.style, st.abbr)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []*Figure{fig}, nil
}

// rcpEnsemblePlot draws, for each scenario, the band between the lowest
// and highest requested percentile of the ensemble sea level
// contribution, and the middle percentile as a line.
func rcpEnsemblePlot(files []string, o *PlotOptions) ([]*Figure, error) {
	fig := o.timeFigure("_rcp_ensemble", gmslLabel)
	ps := append([]float64(nil), o.Percentiles...)
	sort.Float64s(ps)
	for _, sc := range allScenarios {
		var members []*Series
		for _, f := range files {
			if s, ok := ScenarioOf(f); !ok || s != sc {
				continue
			}
			err := o.load(f, func(ds *Dataset) error {
				s, err := o.sle(ds, "ice_mass")
				if err != nil {
					return err
				}
				members = append(members, s)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		if len(members) == 0 {
			o.Log.WithField("scenario", sc).Debug("no ensemble members for scenario")
			continue
		}
		o.Log.WithFields(logrus.Fields{"scenario": sc, "members": len(members)}).Info("ensemble")
		q, err := Percentiles(members, ps)
		if err != nil {
			return nil, fmt.Errorf("icets: scenario %s: %w", sc, err)
		}
		if len(q) > 1 {
			fig.Bands = append(fig.Bands, Band{
				Label: sc.Label(),
				X:     q[0].Time,
				Lower: q[0].Values,
				Upper: q[len(q)-1].Values,
				Color: translucent(sc.Color()),
			})
		}
		if len(q) != 2 {
			m := q[len(q)/2]
			l := Line{X: m.Time, Y: m.Values, Color: sc.Color(), Width: 0.5}
			if len(q) == 1 {
				l.Label = sc.Label()
			}
			fig.Lines = append(fig.Lines, l)
		}
	}
	if len(fig.Bands) == 0 && len(fig.Lines) == 0 {
		return nil, fmt.Errorf("icets: ensemble: %w: no files carry a scenario tag", ErrTooFewFiles)
	}
	return []*Figure{fig}, nil
}

// gridResolutionPlot draws the sea level contribution at TimeBounds[1]
// against the horizontal grid spacing given in the file names.
func gridResolutionPlot(files []string, o *PlotOptions) ([]*Figure, error) {
	fig := &Figure{
		Stem:   o.OutputFile + "_grid_resolution",
		XLabel: "grid resolution (m)",
		YLabel: gmslLabel,
	}
	type point struct{ res, sle float64 }
	groups := make(map[Scenario][]point)
	for _, f := range files {
		res, ok := ResolutionOf(f)
		if !ok {
			o.Log.WithField("file", f).Warn("no grid resolution in file name; skipping")
			continue
		}
		sc, _ := ScenarioOf(f)
		err := o.load(f, func(ds *Dataset) error {
			s, err := o.sle(ds, "ice_mass")
			if err != nil {
				return err
			}
			v, err := s.At(o.TimeBounds[1])
			if err != nil {
				return fmt.Errorf("icets: %s: %w", f, err)
			}
			groups[sc] = append(groups[sc], point{res, v})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("icets: grid resolution: %w: no files with a grid resolution tag", ErrTooFewFiles)
	}
	for _, sc := range append([]Scenario{""}, allScenarios...) {
		pts, ok := groups[sc]
		if !ok {
			continue
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].res < pts[j].res })
		l := Line{Label: "simulations", Color: color.Black, Width: 0.5}
		if sc != "" {
			l.Label, l.Color = sc.Label(), sc.Color()
		}
		for _, p := range pts {
			l.X = append(l.X, p.res)
			l.Y = append(l.Y, p.sle)
		}
		marks := l
		marks.Label, marks.Points = "", true
		fig.Lines = append(fig.Lines, l, marks)
	}
	return []*Figure{fig}, nil
}

// translucent returns c at half opacity.
func translucent(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0x80
	return n
}
