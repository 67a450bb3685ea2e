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

package riskutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/eventrisk/riskmap"
)

// StateProfile holds the information needed to select one state from the
// national data sets and to center the map on it.
type StateProfile struct {
	// Name is the full state name as used in the case counts and
	// population tables, e.g. "Texas".
	Name string

	// FIPS is the two-digit state FIPS code.
	FIPS int

	// Lat, Lon and Zoom set the initial map view.
	Lat, Lon float64
	Zoom     int
}

// Texas is the default state profile.
var Texas = StateProfile{
	Name: "Texas",
	FIPS: 48,
	Lat:  31.1322,
	Lon:  -99.3413,
	Zoom: 5,
}

// LoadStateProfile reads a TOML state profile from path. If path is
// empty, the Texas profile is returned.
func LoadStateProfile(path string) (StateProfile, error) {
	if path == "" {
		return Texas, nil
	}
	var p StateProfile
	if _, err := toml.DecodeFile(os.ExpandEnv(path), &p); err != nil {
		return p, fmt.Errorf("eventrisk: reading state profile: %v", err)
	}
	if err := p.check(); err != nil {
		return p, err
	}
	return p, nil
}

func (p StateProfile) check() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("eventrisk: state profile is missing Name")
	}
	if p.FIPS < 1 || p.FIPS > 99 {
		return fmt.Errorf("eventrisk: invalid state FIPS code %d in profile for %s", p.FIPS, p.Name)
	}
	if p.Zoom < 1 {
		return fmt.Errorf("eventrisk: invalid map zoom %d in profile for %s", p.Zoom, p.Name)
	}
	return nil
}

// View returns the map settings for the state.
func (p StateProfile) View() riskmap.View {
	v := riskmap.DefaultView
	v.Title = fmt.Sprintf("%s: %s", p.Name, v.Title)
	v.Lat, v.Lon, v.Zoom = p.Lat, p.Lon, p.Zoom
	return v
}

// checkOutputFile makes sure the directory that f is to be written in
// exists.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`eventrisk: you need to specify an output file configuration variable (for example: OutputFile="eventrisk.html")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("eventrisk: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// newLogger creates a logger writing at the given level.
func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("eventrisk: %v", err)
	}
	l := logrus.New()
	l.Out = os.Stderr
	l.Level = lvl
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	return l, nil
}
