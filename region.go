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

// Package eventrisk estimates, for each county in a state, the probability
// that at least one contagious person attends an event of a given size,
// both now and after the event is postponed.
//
// County case counts, populations, and reproduction numbers are joined into
// a Table once per run. Each query (group size and postponement) then
// projects every county in the table without modifying it.
package eventrisk

import (
	"fmt"
	"strconv"
)

// Version gives the version number.
const Version = "1.0.0"

// Int is an integer that may be undefined, for example when a county could
// not be matched in one of the source tables.
type Int struct {
	Value int
	Valid bool
}

func someInt(v int) Int { return Int{Value: v, Valid: true} }

func (i Int) String() string {
	if !i.Valid {
		return "n/a"
	}
	return strconv.Itoa(i.Value)
}

// Float is a floating point value that may be undefined.
type Float struct {
	Value float64
	Valid bool
}

func someFloat(v float64) Float { return Float{Value: v, Valid: true} }

func (f Float) String() string {
	if !f.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(f.Value, 'g', -1, 64)
}

// RegionRecord holds the joined information for one county.
type RegionRecord struct {
	// FIPS is the county FIPS code. It is unique within a Table.
	FIPS int

	// Name is the normalized county name.
	Name string

	// RecentCases is the net number of new cases over the lookback
	// window. It is never negative.
	RecentCases int

	// Population is undefined if the county name could not be matched
	// in the population table.
	Population Int

	// CasesPer100k is RecentCases scaled to a population of
	// 100,000 people. It is undefined when Population is undefined or zero.
	CasesPer100k Int

	// Rt is the reproduction number. It is 1.0 when the source was not
	// able to estimate it or has no entry for the county.
	Rt Float
}

// Complete returns whether r holds all of the information needed to
// project its cases forward in time.
func (r RegionRecord) Complete() bool {
	return r.Population.Valid && r.Population.Value > 0
}

func (r RegionRecord) String() string {
	return fmt.Sprintf("%05d %s: cases=%d population=%v per100k=%v rt=%v",
		r.FIPS, r.Name, r.RecentCases, r.Population, r.CasesPer100k, r.Rt)
}

// Table is the joined set of county records. It is created once by Join and
// is not modified afterwards, so it can be shared between queries.
type Table struct {
	records []RegionRecord
	index   map[int]int
}

func newTable(records []RegionRecord) *Table {
	t := &Table{
		records: records,
		index:   make(map[int]int, len(records)),
	}
	for i, r := range records {
		t.index[r.FIPS] = i
	}
	return t
}

// Len returns the number of counties in the table.
func (t *Table) Len() int { return len(t.records) }

// Records returns a copy of the records in the table.
func (t *Table) Records() []RegionRecord {
	o := make([]RegionRecord, len(t.records))
	copy(o, t.records)
	return o
}

// Record returns the record at index i.
func (t *Table) Record(i int) RegionRecord { return t.records[i] }

// Region returns the record for the county with the given FIPS code.
func (t *Table) Region(fips int) (RegionRecord, bool) {
	i, ok := t.index[fips]
	if !ok {
		return RegionRecord{}, false
	}
	return t.records[i], true
}
