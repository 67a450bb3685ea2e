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
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/eventrisk"
	"github.com/spatialmodel/eventrisk/sources"
)

func init() {
	gob.Register([]eventrisk.CaseObservation{})
	gob.Register([]eventrisk.PopulationEntry{})
	gob.Register([]eventrisk.RtObservation{})
	gob.Register(sources.Counties{})
}

// Inputs holds the locations of the input data sets. Each can be a
// local path, an http(s) URL, or a blob URL.
type Inputs struct {
	CountiesGeoJSON     string
	CaseCounts          string
	Population          string
	ReproductionNumbers string
}

// DefaultInputs are the public data sets the program was built around.
var DefaultInputs = Inputs{
	CountiesGeoJSON:     "https://raw.githubusercontent.com/plotly/datasets/master/geojson-counties-fips.json",
	CaseCounts:          "https://raw.githubusercontent.com/nytimes/covid-19-data/master/us-counties.csv",
	Population:          "https://www2.census.gov/programs-surveys/popest/tables/2010-2019/counties/totals/co-est2019-annres.xlsx",
	ReproductionNumbers: "https://github.com/lin-lab/COVID19-Viz/raw/master/clean_data/rt_table_export.csv.zip",
}

type sourceKind string

const (
	countiesSource   sourceKind = "counties"
	casesSource      sourceKind = "cases"
	populationSource sourceKind = "population"
	rtSource         sourceKind = "rt"
)

type sourceRequest struct {
	kind sourceKind
	path string
}

// Loader reads the input data sets and combines them into a region
// table. Parsed data sets are cached, so repeated loads of the same
// inputs on the same day do not read them again.
type Loader struct {
	Inputs Inputs
	State  StateProfile

	// CacheDir, if not empty, is where downloads and parsed data sets
	// are kept between runs.
	CacheDir string

	Log logrus.FieldLogger

	dl    *downloader
	cache *requestcache.Cache
}

// NewLoader creates a Loader that reads up to workers data sets at once.
func NewLoader(in Inputs, state StateProfile, cacheDir string, workers int, log logrus.FieldLogger) *Loader {
	if workers < 1 {
		workers = 1
	}
	l := &Loader{
		Inputs:   in,
		State:    state,
		CacheDir: cacheDir,
		Log:      log,
		dl:       &downloader{CacheDir: cacheDir, Log: log},
	}
	cacheFuncs := []requestcache.CacheFunc{requestcache.Deduplicate(), requestcache.Memory(4)}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
			log.WithError(err).Warn("not caching data sets on disk")
		} else {
			cacheFuncs = append(cacheFuncs,
				requestcache.Disk(cacheDir, requestcache.MarshalGob, requestcache.UnmarshalGob))
		}
	}
	l.cache = requestcache.NewCache(l.read, workers, cacheFuncs...)
	return l
}

// key returns the cache key for a data set. Keys change daily so that
// updated case counts are picked up.
func (l *Loader) key(r sourceRequest) string {
	k := fmt.Sprintf("%s_%s_%s_%s", r.kind, l.State.Name, filepath.Base(r.path),
		time.Now().Format("2006-01-02"))
	return strings.Map(func(c rune) rune {
		switch c {
		case ' ', '/', '\\', ':', '?', '&', '=':
			return '_'
		}
		return c
	}, k)
}

// read is the requestcache processor for data sets.
func (l *Loader) read(ctx context.Context, request interface{}) (interface{}, error) {
	req := request.(sourceRequest)
	start := time.Now()
	path, err := l.dl.maybeDownload(ctx, req.path)
	if err != nil {
		return nil, err
	}

	var (
		result interface{}
		rows   int
	)
	switch req.kind {
	case populationSource:
		pop, err := sources.ReadPopulationFile(path, l.State.Name, sources.CensusLayout)
		if err != nil {
			return nil, err
		}
		result, rows = pop, len(pop)
	case rtSource:
		min, max := sources.UIDRange(l.State.FIPS)
		var rt []eventrisk.RtObservation
		if strings.HasSuffix(strings.ToLower(path), ".zip") {
			rt, err = sources.ReadRtZip(path, min, max)
		} else {
			err = withFile(path, func(f *os.File) (err error) {
				rt, err = sources.ReadRt(f, min, max)
				return err
			})
		}
		if err != nil {
			return nil, err
		}
		result, rows = rt, len(rt)
	case casesSource:
		var cases []eventrisk.CaseObservation
		err = withFile(path, func(f *os.File) (err error) {
			cases, err = sources.ReadCases(f, l.State.Name)
			return err
		})
		if err != nil {
			return nil, err
		}
		result, rows = cases, len(cases)
	case countiesSource:
		var counties sources.Counties
		err = withFile(path, func(f *os.File) (err error) {
			counties, err = sources.ReadCounties(f, l.State.FIPS)
			return err
		})
		if err != nil {
			return nil, err
		}
		result, rows = counties, len(counties)
	default:
		return nil, fmt.Errorf("eventrisk: invalid data set %q", req.kind)
	}
	l.Log.WithFields(logrus.Fields{
		"source":   req.kind,
		"rows":     rows,
		"duration": time.Since(start),
	}).Info("read data set")
	return result, nil
}

func withFile(path string, f func(*os.File) error) error {
	r, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("eventrisk: %v", err)
	}
	defer r.Close()
	return f(r)
}

// Load reads all of the input data sets at once and joins them into a
// region table. It also returns the county boundaries for mapping.
func (l *Loader) Load(ctx context.Context) (*eventrisk.Table, sources.Counties, error) {
	reqs := []sourceRequest{
		{kind: countiesSource, path: l.Inputs.CountiesGeoJSON},
		{kind: casesSource, path: l.Inputs.CaseCounts},
		{kind: populationSource, path: l.Inputs.Population},
		{kind: rtSource, path: l.Inputs.ReproductionNumbers},
	}
	results := make([]interface{}, len(reqs))
	errs := make([]error, len(reqs))
	var wg sync.WaitGroup
	wg.Add(len(reqs))
	for i, req := range reqs {
		go func(i int, req sourceRequest) {
			defer wg.Done()
			results[i], errs[i] = l.cache.NewRequest(ctx, req, l.key(req)).Result()
		}(i, req)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, nil, fmt.Errorf("eventrisk: loading %s data: %v", reqs[i].kind, err)
		}
	}

	counties := results[0].(sources.Counties)
	cases := results[1].([]eventrisk.CaseObservation)
	pop := results[2].([]eventrisk.PopulationEntry)
	rt := results[3].([]eventrisk.RtObservation)

	changes := eventrisk.RecentChange(cases, eventrisk.LookbackDays)
	t := eventrisk.Join(changes, pop, rt)
	var complete int
	for _, r := range t.Records() {
		if r.Complete() {
			complete++
		}
	}
	l.Log.WithFields(logrus.Fields{
		"state":      l.State.Name,
		"counties":   t.Len(),
		"complete":   complete,
		"boundaries": len(counties),
	}).Info("joined data sets")
	return t, counties, nil
}
