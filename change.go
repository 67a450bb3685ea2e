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

package eventrisk

import "time"

// LookbackDays is the length of the window over which cases are counted as
// recent. Fourteen days is the commonly used duration over which a case is
// most likely to be contagious.
const LookbackDays = 14

// CaseObservation is one row of a cumulative case count time series.
type CaseObservation struct {
	Date   time.Time
	County string
	State  string
	FIPS   int
	Cases  int
}

// CaseChange holds the net change in cumulative cases for one county.
type CaseChange struct {
	FIPS        int
	Name        string
	RecentCases int
}

type countyKey struct {
	fips int
	name string
}

// day truncates t to its calendar day.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecentChange reduces a cumulative case count time series to the net
// change over the last window days for each county. Only the snapshots at
// the latest date and exactly window days before it are used. Every county
// in the earlier snapshot is kept unless it has no count at the latest
// date, in which case its change is unknown and it is dropped. Counties
// that only appear in the latest snapshot are dropped as well. Negative
// changes, which come from corrections to the source data, are set to
// zero. Observations without a FIPS code are ignored.
//
// The result is in the order the counties appear in the earlier snapshot.
func RecentChange(obs []CaseObservation, window int) []CaseChange {
	var latest time.Time
	for _, o := range obs {
		if o.FIPS <= 0 {
			continue
		}
		if d := day(o.Date); d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return nil
	}
	prior := latest.AddDate(0, 0, -window)

	var old []CaseObservation
	current := make(map[countyKey]int)
	for _, o := range obs {
		if o.FIPS <= 0 {
			continue
		}
		key := countyKey{fips: o.FIPS, name: o.County}
		switch d := day(o.Date); {
		case d.Equal(latest):
			if _, ok := current[key]; !ok {
				current[key] = o.Cases
			}
		case d.Equal(prior):
			old = append(old, o)
		}
	}

	o := make([]CaseChange, 0, len(old))
	seen := make(map[int]bool, len(old))
	for _, prev := range old {
		if seen[prev.FIPS] {
			continue
		}
		cases, ok := current[countyKey{fips: prev.FIPS, name: prev.County}]
		if !ok {
			continue
		}
		seen[prev.FIPS] = true
		o = append(o, CaseChange{
			FIPS:        prev.FIPS,
			Name:        prev.County,
			RecentCases: clampDelta(cases - prev.Cases),
		})
	}
	return o
}

// clampDelta returns d, or zero if d is negative.
func clampDelta(d int) int {
	if d < 0 {
		return 0
	}
	return d
}
