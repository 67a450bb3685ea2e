/*
Copyright © 2020 the EventRisk authors.
This file is part of EventRisk.

EventRisk is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EventRisk is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EventRisk.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package riskutil contains the command-line interface for EventRisk.
package riskutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/eventrisk"
	"github.com/spatialmodel/eventrisk/riskmap"
	"github.com/spatialmodel/eventrisk/sources"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// logger is replaced once the configuration has been read.
var logger logrus.FieldLogger = logrus.StandardLogger()

// defaultServeQuery is shown by the server when a request has no query.
var defaultServeQuery = eventrisk.Query{People: 50, Days: 14}

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to EventRisk.
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
			name: "StateProfile",
			usage: `
              StateProfile is the path to a TOML file with the fields Name, FIPS,
              Lat, Lon, and Zoom describing the state to calculate risk for.
              If it is empty, Texas is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "CountiesGeoJSON",
			usage: `
              CountiesGeoJSON is the location of a GeoJSON FeatureCollection of
              county boundaries with five-digit FIPS codes as feature ids. It can be
              a local path, a URL, or a blob (file://, gs://, s3://) and can include
              environment variables.`,
			defaultVal: DefaultInputs.CountiesGeoJSON,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "CaseCounts",
			usage: `
              CaseCounts is the location of the cumulative COVID-19 case counts by
              county, in CSV format with date, county, state, fips, and cases columns.`,
			defaultVal: DefaultInputs.CaseCounts,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Population",
			usage: `
              Population is the location of the Census Bureau county population
              estimates spreadsheet.`,
			defaultVal: DefaultInputs.Population,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ReproductionNumbers",
			usage: `
              ReproductionNumbers is the location of the county effective
              reproduction number table, in CSV format or as a zip archive holding a
              CSV file, with UID, date, and Rt_loess_fit columns.`,
			defaultVal: DefaultInputs.ReproductionNumbers,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "CacheDir",
			usage: `
              CacheDir is a directory to keep downloaded and parsed input data in
              between runs. Downloads are reused for 12 hours. If it is empty, input
              data is downloaded every time.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print. Options are
              "debug", "info", "warning", and "error".`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of input data sets to download and read at
              the same time.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "people",
			usage: `
              people is the number of people at the event. If people and days
              are not both set, they will be asked for.`,
			shorthand:  "p",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), tableCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "days",
			usage: `
              days is the number of days the event may be postponed by.`,
			shorthand:  "d",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), tableCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output web page location.
              It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "eventrisk.html",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags()},
		},
		{
			name: "NoBrowser",
			usage: `
              If NoBrowser is true, the map is written to OutputFile but not
              opened in a web browser.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{mapCmd.Flags()},
		},
		{
			name: "http",
			usage: `
              http specifies the address to serve the map at.`,
			defaultVal: ":8080",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("EVENTRISK")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
		Cfg.BindEnv(option.name)
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(mapCmd)
	Root.AddCommand(serveCmd)
	Root.AddCommand(tableCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("eventrisk: problem reading configuration file: %v", err)
		}
	}
	l, err := newLogger(Cfg.GetString("LogLevel"))
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "eventrisk",
	Short: "Estimate the chance of COVID-19 at an event.",
	Long: `EventRisk estimates, for every county in a state, the probability that at
least one person at an event of a given size is carrying COVID-19, both if the
event were held now and if it were postponed by a given number of days.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'EVENTRISK_var' where 'var' is the
name of the variable to be set. Paths can contain environment variables.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of EventRisk.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "EventRisk v%s\n", eventrisk.Version)
	},
	DisableAutoGenTag: true,
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Create a web page with a map of event risk.",
	Long: `map loads the input data, asks for the number of people at the event and the
number of days it may be postponed by unless they are given as flags, writes a
web page with a map of the results to OutputFile, and opens it in a browser.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return runMap(context.Background(), os.Stdin, cmd.OutOrStdout(), outputFile, !Cfg.GetBool("NoBrowser"))
	},
	DisableAutoGenTag: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a map of event risk over HTTP.",
	Long: `serve loads the input data once and then serves a map of event risk at the
http address. The number of people and days are given as the "people" and
"days" URL parameters. The GeoJSON data behind the map is at /map.geojson.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		t, counties, state, err := load(ctx, nil)
		if err != nil {
			return err
		}
		def := defaultServeQuery
		if q, ok, err := configQuery(); err != nil {
			return err
		} else if ok {
			def = q
		}
		h := &riskmap.Handler{
			Table:    t,
			Counties: counties,
			View:     state.View(),
			Default:  def,
			Log:      logger,
		}
		addr := Cfg.GetString("http")
		logger.WithField("address", addr).Info("serving map")
		return http.ListenAndServe(addr, h)
	},
	DisableAutoGenTag: true,
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print event risk for each county as tab-separated text.",
	Long: `table loads the input data and prints one line per county with the joined
input data and the probability of at least one carrier at the event now and
after postponing it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		t, _, _, err := load(ctx, nil)
		if err != nil {
			return err
		}
		q, ok, err := configQuery()
		if err != nil {
			return err
		}
		if !ok {
			if q, err = promptQuery(os.Stdin, os.Stderr); err != nil {
				return err
			}
		}
		proj, err := t.Query(q)
		if err != nil {
			return err
		}
		return writeTable(cmd.OutOrStdout(), t, proj)
	},
	DisableAutoGenTag: true,
}

// configQuery returns the query given by the people and days options,
// and whether one was given.
func configQuery() (eventrisk.Query, bool, error) {
	q := eventrisk.Query{
		People: cast.ToInt(Cfg.Get("people")),
		Days:   cast.ToInt(Cfg.Get("days")),
	}
	if q.People == 0 && q.Days == 0 {
		return q, false, nil
	}
	if err := q.Validate(); err != nil {
		return q, false, err
	}
	return q, true, nil
}

// load reads the input data sets specified in the configuration. If
// out is not nil, an introduction is written to it first.
func load(ctx context.Context, out io.Writer) (*eventrisk.Table, sources.Counties, StateProfile, error) {
	state, err := LoadStateProfile(Cfg.GetString("StateProfile"))
	if err != nil {
		return nil, nil, state, err
	}
	if out != nil {
		fmt.Fprintf(out, banner, state.Name)
	}
	in := Inputs{
		CountiesGeoJSON:     Cfg.GetString("CountiesGeoJSON"),
		CaseCounts:          Cfg.GetString("CaseCounts"),
		Population:          Cfg.GetString("Population"),
		ReproductionNumbers: Cfg.GetString("ReproductionNumbers"),
	}
	l := NewLoader(in, state, os.ExpandEnv(Cfg.GetString("CacheDir")), cast.ToInt(Cfg.Get("Workers")), logger)
	t, counties, err := l.Load(ctx)
	return t, counties, state, err
}

// runMap loads the data, gets the query from the configuration or from
// in, and writes the map to outputFile.
func runMap(ctx context.Context, in io.Reader, out io.Writer, outputFile string, browse bool) error {
	t, counties, state, err := load(ctx, out)
	if err != nil {
		return err
	}
	q, ok, err := configQuery()
	if err != nil {
		return err
	}
	if !ok {
		if q, err = promptQuery(in, out); err != nil {
			return err
		}
	}
	fc, scale, err := riskmap.Render(t, counties, q, logger)
	if err != nil {
		return err
	}
	w, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("eventrisk: creating output file: %v", err)
	}
	if err := riskmap.WriteHTML(w, fc, scale, state.View(), q); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "The map has been written to %s\n", outputFile)
	if browse {
		if err := open.Run(outputFile); err != nil {
			logger.WithError(err).Warn("could not open the map in a browser")
		}
	}
	return nil
}

// writeTable writes the table records and their projections as
// tab-separated text.
func writeTable(w io.Writer, t *eventrisk.Table, proj []eventrisk.Projection) error {
	if len(proj) != t.Len() {
		return fmt.Errorf("eventrisk: %d projections for %d counties", len(proj), t.Len())
	}
	if _, err := fmt.Fprintln(w, "fips\tname\tcases_14d\tpopulation\tcases_per_100k\trt\tcurrent\tpostponed"); err != nil {
		return err
	}
	for i, p := range proj {
		r := t.Record(i)
		_, err := fmt.Fprintf(w, "%05d\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n", r.FIPS, r.Name, r.RecentCases,
			r.Population, r.CasesPer100k, r.Rt, p.Current, p.Postponed)
		if err != nil {
			return err
		}
	}
	return nil
}
