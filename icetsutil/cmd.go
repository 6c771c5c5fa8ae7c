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

// Package icetsutil holds the command-line interface for icets.
package icetsutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/icets"
	"github.com/spatialmodel/icets/render"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to icets.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log_file",
			usage: `
              log_file specifies the location of the rotating debug log.
              Relative paths are placed in the directory of output_file.
              An empty value disables the log file.`,
			defaultVal: "icets.log",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "files",
			usage: `
              files specifies the input files when none are given as
              arguments.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "plot",
			usage: `
              plot specifies what to plot. Valid kinds are ` + strings.Join(icets.PlotKinds(), ", ") + `.`,
			defaultVal: "basin_discharge",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "basin",
			usage: `
              basin specifies the basin whose colour is used for
              single-file plots.`,
			shorthand:  "b",
			defaultVal: "GR",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "bounds",
			usage: `
              bounds specifies the lower and upper bound for the ordinate,
              e.g. -1,1.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "time_bounds",
			usage: `
              time_bounds specifies the lower and upper bound for the
              abscissa in years. Final values are reported at the upper
              bound.`,
			defaultVal: []string{"2009", "3000"},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "start_year",
			usage: `
              start_year specifies the year before the first time step.`,
			defaultVal: 2008.,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), summaryCmd.Flags()},
		},
		{
			name: "step",
			usage: `
              step specifies the length of a time step in years.`,
			defaultVal: 1.,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), summaryCmd.Flags()},
		},
		{
			name: "runmean",
			usage: `
              runmean specifies the running mean window in time steps.
              0 disables smoothing.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "output_file",
			usage: `
              output_file specifies the output file name without suffix;
              plot kinds extend it, i.e. ts_control -> ts_control_d.`,
			shorthand:  "o",
			defaultVal: "unnamed",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "output_format",
			usage: `
              output_format specifies the image formats to write. Valid
              formats are pdf, svg, eps, png, jpg and tiff.`,
			shorthand:  "f",
			defaultVal: []string{"pdf"},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "output_resolution",
			usage: `
              output_resolution specifies the resolution of raster images
              in dots per inch.`,
			shorthand:  "r",
			defaultVal: 300,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "rotate_xticks",
			usage: `
              rotate_xticks specifies whether to rotate the x tick labels
              by 30 degrees.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "twinx",
			usage: `
              twinx specifies whether to add mm SLE to the ordinate of
              the fluxes plot.`,
			shorthand:  "t",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "title",
			usage: `
              title specifies the plot title.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "labels",
			usage: `
              labels specifies legend labels that replace the default
              ones in order, e.g. 'label 1,label 2'.`,
			shorthand:  "l",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "switch_sign",
			usage: `
              switch_sign specifies whether to switch the sign of line
              data.`,
			shorthand:  "s",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "normalize",
			usage: `
              normalize specifies whether to normalize line data to the
              beginning of the time series.`,
			shorthand:  "n",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "percentiles",
			usage: `
              percentiles specifies the ensemble percentiles of the
              rcp_ensemble plot. The outer two bound the shaded band and
              the middle one is drawn as a line.`,
			defaultVal: []string{"16", "50", "84"},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "show",
			usage: `
              show specifies whether to open the first image written with
              the system viewer.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "variables",
			usage: `
              variables specifies the variables to plot in the fluxes plot
              or to summarize. By default the fluxes plot draws all mass
              fluxes and the summary covers ice_mass and
              discharge_cumulative.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), summaryCmd.Flags()},
		},
		{
			name: "expressions",
			usage: `
              expressions specifies the derived variables as a map of
              names to expressions, e.g. {"dMdt": "a - b"}.`,
			defaultVal: icets.DefaultDerivedVariables,
			flagsets:   []*pflag.FlagSet{deriveCmd.Flags()},
		},
		{
			name: "units",
			usage: `
              units specifies the units that the inputs of the derived
              variables are converted to and that the derived variables
              are reported in.`,
			defaultVal: icets.FluxUnits,
			flagsets:   []*pflag.FlagSet{deriveCmd.Flags()},
		},
		{
			name: "o_dir",
			usage: `
              o_dir specifies the directory the derived files are written
              to, as ts_<input file name>.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{deriveCmd.Flags()},
		},
		{
			name: "tag",
			usage: `
              tag specifies the file name tag to select, e.g. rcp_45.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "from",
			usage: `
              from specifies the units to convert from.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "to",
			usage: `
              to specifies the units to convert to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "xlsx",
			usage: `
              xlsx specifies a spreadsheet file to save the summary to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{summaryCmd.Flags()},
		},
		{
			name: "shape_file",
			usage: `
              shape_file specifies the basin outline shapefile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{basinsCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ICETS")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				set.StringP(option.name, option.shorthand, strings.TrimSpace(b.String()), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
	Cfg.AutomaticEnv()
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(deriveCmd)
	Root.AddCommand(selectCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(summaryCmd)
	Root.AddCommand(basinsCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and starts the log file.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("icets: problem reading configuration file: %v", err)
		}
	}
	if logFile := checkLogFile(Cfg.GetString("log_file"), Cfg.GetString("output_file")); logFile != "" {
		setLogFile(logFile)
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "icets",
	Short: "Ice sheet time series post-processing.",
	Long: `icets post-processes scalar time series of ice sheet model output that
has been extracted per drainage basin and per climate scenario. It selects
input files by naming convention (b_NE, rcp_85, g900m), normalizes units,
derives sea level equivalent quantities and plots a family of figures.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ICETS_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of icets.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("icets v%s\n", icets.Version)
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot [FILE...]",
	Short: "Plot time series.",
	Long: `plot draws the plot kind given by --plot from the input files and
writes one image per output format. Per-basin plots take one file per basin,
identified by its b_<basin> tag or, without tags, by position in the order
CW, NE, NO, NW, SE, SW, GR. Scenario plots take files tagged rcp_26, rcp_45,
rcp_85 or, without tags, one file per scenario in that order.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := inputFiles(args, Cfg)
		if err != nil {
			return err
		}
		formats, err := getStringSlice("output_format", Cfg)
		if err != nil {
			return err
		}
		if err = render.CheckFormats(formats); err != nil {
			return err
		}
		opts, err := plotOptions(Cfg)
		if err != nil {
			return err
		}
		kind := Cfg.GetString("plot")
		figs, err := icets.Plot(kind, files, opts)
		if err != nil {
			return err
		}
		r := render.New(Cfg.GetInt("output_resolution"), formats...)
		var written []string
		for _, fig := range figs {
			paths, err := r.Render(fig)
			if err != nil {
				return err
			}
			for _, p := range paths {
				Log.WithField("file", p).Info("writing image")
			}
			written = append(written, paths...)
		}
		if Cfg.GetBool("show") && len(written) > 0 {
			if err := open.Run(written[0]); err != nil {
				return fmt.Errorf("icets: opening %s: %v", written[0], err)
			}
		}
		return nil
	},
}

var deriveCmd = &cobra.Command{
	Use:   "derive [FILE...]",
	Short: "Calculate derived variables.",
	Long: `derive calculates the variables given by --expressions from the
variables in each input file and writes them, together with the inputs
they depend on, to ts_<input file name> in the directory given by --o_dir.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := inputFiles(args, Cfg)
		if err != nil {
			return err
		}
		exprs, err := GetStringMapString("expressions", Cfg)
		if err != nil {
			return err
		}
		oDir, err := checkOutputDir(Cfg.GetString("o_dir"))
		if err != nil {
			return err
		}
		d, err := icets.NewDeriver(exprs, Cfg.GetString("units"), nil)
		if err != nil {
			return err
		}
		for _, f := range files {
			out := filepath.Join(oDir, "ts_"+filepath.Base(f))
			if err := derive(d, f, out); err != nil {
				return err
			}
			Log.WithFields(logrus.Fields{"file": f, "output": out, "variables": d.Names()}).Info("derived variables")
		}
		return nil
	},
}

func derive(d *icets.Deriver, in, out string) error {
	ds, err := icets.Open(in)
	if err != nil {
		return err
	}
	o, err := d.Derive(ds)
	ds.Close()
	if err != nil {
		return err
	}
	w, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("icets: creating derived output file: %v", err)
	}
	if err := o.Write(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

var selectCmd = &cobra.Command{
	Use:   "select [FILE...]",
	Short: "Select files by tag.",
	Long: `select prints the input files whose names contain the tag given by
--tag, one per line, in their original order.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := Cfg.GetString("tag")
		if tag == "" {
			return fmt.Errorf("icets: you need to specify a tag to select (for example: --tag=rcp_45)")
		}
		files, err := inputFiles(args, Cfg)
		if err != nil {
			return err
		}
		for _, f := range icets.Select(files, tag) {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [VALUE...]",
	Short: "Convert values between units.",
	Long: `convert converts the values given as arguments from the units given by
--from to the units given by --to, e.g. --from="kg s-1" --to="Gt year-1".
Negative values such as -1.5 are values, not flags.`,
	DisableAutoGenTag: true,
	// Flags are parsed by RunE so that negative values are not read as
	// shorthand flags; RunE then reads the configuration.
	DisableFlagParsing: true,
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValueArgs(cmd, args)
		if err == pflag.ErrHelp {
			return cmd.Help()
		} else if err != nil {
			return err
		}
		if err = setConfig(); err != nil {
			return err
		}
		from, to := Cfg.GetString("from"), Cfg.GetString("to")
		if from == "" || to == "" {
			return fmt.Errorf("icets: you need to specify the units to convert from and to")
		}
		vals := make([]float64, len(values))
		for i, a := range values {
			v, err := cast.ToFloat64E(a)
			if err != nil {
				return fmt.Errorf("icets: invalid value %q: %v", a, err)
			}
			vals[i] = v
		}
		o, err := icets.Convert(vals, from, to)
		if err != nil {
			return err
		}
		for _, v := range o {
			fmt.Fprintf(cmd.OutOrStdout(), "%g\n", v)
		}
		return nil
	},
}

// parseValueArgs parses the flags of cmd and its parents from args and
// returns the remaining arguments. Numbers are always positional, unless
// they are the value of a preceding flag.
func parseValueArgs(cmd *cobra.Command, args []string) ([]string, error) {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(ioutil.Discard)
	fs.AddFlagSet(cmd.Flags())
	fs.AddFlagSet(cmd.InheritedFlags())

	var flags, values []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			values = append(values, args[i+1:]...)
			break
		}
		if _, err := strconv.ParseFloat(a, 64); err == nil {
			values = append(values, a)
			continue
		}
		flags = append(flags, a)
		if !strings.HasPrefix(a, "-") || strings.Contains(a, "=") {
			continue
		}
		f := fs.Lookup(strings.TrimLeft(a, "-"))
		if len(a) == 2 {
			f = fs.ShorthandLookup(a[1:])
		}
		if f != nil && f.Value.Type() != "bool" && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	if err := fs.Parse(flags); err != nil {
		return nil, err
	}
	if help, err := fs.GetBool("help"); err == nil && help {
		return nil, pflag.ErrHelp
	}
	return append(fs.Args(), values...), nil
}

var summaryCmd = &cobra.Command{
	Use:   "summary [FILE...]",
	Short: "Summarize time series.",
	Long: `summary prints, for each input file and variable, the final value,
its sea level equivalent and a linear trend. With --xlsx, the table is also
saved as a spreadsheet.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := inputFiles(args, Cfg)
		if err != nil {
			return err
		}
		vars, err := getStringSlice("variables", Cfg)
		if err != nil {
			return err
		}
		if len(vars) == 0 {
			vars = []string{"ice_mass", "discharge_cumulative"}
		}
		rows, err := icets.Summarize(files, vars, Cfg.GetFloat64("start_year"), Cfg.GetFloat64("step"), Log)
		if err != nil {
			return err
		}
		if err := icets.WriteSummary(cmd.OutOrStdout(), rows); err != nil {
			return err
		}
		if x := os.ExpandEnv(Cfg.GetString("xlsx")); x != "" {
			if err := icets.WriteXLSX(x, rows); err != nil {
				return err
			}
			Log.WithField("file", x).Info("writing summary spreadsheet")
		}
		return nil
	},
}

var basinsCmd = &cobra.Command{
	Use:   "basins",
	Short: "List the basins in a basin shapefile.",
	Long: `basins prints the basin code, UGID and area of each polygon in the
basin outline shapefile given by --shape_file.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := os.ExpandEnv(Cfg.GetString("shape_file"))
		if path == "" {
			return fmt.Errorf("icets: you need to specify a basin shapefile (for example: --shape_file=basins.shp)")
		}
		shapes, fields, err := icets.ReadBasinCatalogue(path)
		if err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{"file": path, "attributes": fields}).Debug("read basin shapefile")
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "basin\tUGID\tarea (km²)")
		for _, s := range shapes {
			fmt.Fprintf(tw, "%s\t%d\t%.1f\n", s.Basin, s.UGID, s.Area)
		}
		return tw.Flush()
	},
}
