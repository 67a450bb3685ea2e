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

import (
	"math"
	"strings"
	"time"
)

// NeutralRt is the reproduction number used for counties where the source
// was not able to estimate one, which happens for small populations.
const NeutralRt = 1.0

// countySuffix is the region-type word that the population source appends
// to county names.
const countySuffix = " County"

// PopulationEntry is one row of the population table.
type PopulationEntry struct {
	// Name is the county name as written by the source, for example
	// ".Anderson County, Texas".
	Name       string
	Population int
}

// RtObservation is one row of the reproduction number time series.
// Rt is NaN when the source could not estimate it.
type RtObservation struct {
	FIPS int
	Date time.Time
	Rt   float64
}

// NormalizeName converts a county name from any of the sources to the form
// used for matching: leading and trailing periods are removed and
// everything from the first " County" onward is dropped, so that the
// Census spelling ".Anderson County, Texas", "Anderson County." and
// "Anderson" all match.
func NormalizeName(name string) string {
	name = strings.Trim(strings.TrimSpace(name), ".")
	if i := strings.Index(name, countySuffix); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// LatestRt reduces the reproduction number time series to its most recent
// date. The latest date is found independently of the case count data,
// since the two sources are not updated on the same schedule. Values that
// could not be estimated are replaced with NeutralRt. When a county has
// several observations on the latest date, the first is used.
func LatestRt(obs []RtObservation) map[int]float64 {
	var latest time.Time
	for _, o := range obs {
		if d := day(o.Date); d.After(latest) {
			latest = d
		}
	}
	o := make(map[int]float64)
	for _, ob := range obs {
		if !day(ob.Date).Equal(latest) {
			continue
		}
		if _, ok := o[ob.FIPS]; ok {
			continue
		}
		rt := ob.Rt
		if math.IsNaN(rt) {
			rt = NeutralRt
		}
		o[ob.FIPS] = rt
	}
	return o
}

// CasesPer100k returns the number of cases per 100,000 people, rounded
// down. ok is false if population is not positive.
func CasesPer100k(cases, population int) (per100k int, ok bool) {
	if population <= 0 {
		return 0, false
	}
	return int(math.Floor(100000 * float64(cases) / float64(population))), true
}

// Join combines the recent case changes with the population and
// reproduction number tables. The result has exactly one record for each
// entry in changes, in the same order. Populations are matched by
// normalized county name and reproduction numbers by FIPS code. Counties
// with no reproduction number get NeutralRt. Populations that could not be
// matched are left undefined, so empty or unusable source tables result in
// records with undefined fields rather than an error.
func Join(changes []CaseChange, population []PopulationEntry, rt []RtObservation) *Table {
	pop := make(map[string]int, len(population))
	for _, p := range population {
		name := NormalizeName(p.Name)
		if _, ok := pop[name]; ok {
			continue
		}
		pop[name] = p.Population
	}
	rts := LatestRt(rt)

	records := make([]RegionRecord, 0, len(changes))
	seen := make(map[int]bool, len(changes))
	for _, c := range changes {
		if seen[c.FIPS] {
			continue
		}
		seen[c.FIPS] = true
		r := RegionRecord{
			FIPS:        c.FIPS,
			Name:        NormalizeName(c.Name),
			RecentCases: clampDelta(c.RecentCases),
		}
		if p, ok := pop[r.Name]; ok {
			r.Population = someInt(p)
			if v, ok := CasesPer100k(r.RecentCases, p); ok {
				r.CasesPer100k = someInt(v)
			}
		}
		r.Rt = someFloat(NeutralRt)
		if v, ok := rts[r.FIPS]; ok {
			r.Rt = someFloat(v)
		}
		records = append(records, r)
	}
	return newTable(records)
}
