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
	"testing"

	"github.com/kr/pretty"
)

func TestNormalizeName(t *testing.T) {
	var tests = []struct {
		in, out string
	}{
		{in: ".Anderson County, Texas", out: "Anderson"},
		{in: "Anderson", out: "Anderson"},
		{in: "Anderson County.", out: "Anderson"},
		{in: ".De Witt County, Texas", out: "De Witt"},
		{in: "Fort Bend County.", out: "Fort Bend"},
		{in: " El Paso ", out: "El Paso"},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			if have := NormalizeName(test.in); have != test.out {
				t.Errorf("NormalizeName(%q) = %q, want %q", test.in, have, test.out)
			}
		})
	}
}

func TestLatestRt(t *testing.T) {
	obs := []RtObservation{
		{FIPS: 48001, Date: date("2020-11-10"), Rt: 1.4},
		{FIPS: 48001, Date: date("2020-11-12"), Rt: 1.2},
		{FIPS: 48003, Date: date("2020-11-12"), Rt: math.NaN()},
		{FIPS: 48005, Date: date("2020-11-11"), Rt: 0.9},
	}
	have := LatestRt(obs)
	want := map[int]float64{48001: 1.2, 48003: NeutralRt}
	if diff := pretty.Diff(have, want); len(diff) > 0 {
		t.Errorf("latest rt (have, want): %v", diff)
	}
}

func testTable() *Table {
	changes := []CaseChange{
		{FIPS: 48001, Name: "Anderson", RecentCases: 100},
		{FIPS: 48003, Name: "Andrews", RecentCases: 0},
		{FIPS: 48005, Name: "Angelina", RecentCases: 250},
		{FIPS: 48007, Name: "Aransas", RecentCases: 30},
	}
	pop := []PopulationEntry{
		{Name: ".Anderson County, Texas", Population: 100000},
		{Name: ".Andrews County, Texas", Population: 18705},
		{Name: ".Angelina County, Texas", Population: 86715},
		{Name: ".Anderson County, Texas", Population: 1}, // duplicate
	}
	rt := []RtObservation{
		{FIPS: 48001, Date: date("2020-11-12"), Rt: 1.0},
		{FIPS: 48003, Date: date("2020-11-12"), Rt: math.NaN()},
		{FIPS: 48007, Date: date("2020-11-12"), Rt: 1.3},
		{FIPS: 48099, Date: date("2020-11-12"), Rt: 1.1}, // not in case data
	}
	return Join(changes, pop, rt)
}

func TestJoin(t *testing.T) {
	have := testTable().Records()
	want := []RegionRecord{
		{
			FIPS: 48001, Name: "Anderson", RecentCases: 100,
			Population:   Int{Value: 100000, Valid: true},
			CasesPer100k: Int{Value: 100, Valid: true},
			Rt:           Float{Value: 1, Valid: true},
		},
		{
			FIPS: 48003, Name: "Andrews", RecentCases: 0,
			Population:   Int{Value: 18705, Valid: true},
			CasesPer100k: Int{Value: 0, Valid: true},
			Rt:           Float{Value: NeutralRt, Valid: true},
		},
		{
			FIPS: 48005, Name: "Angelina", RecentCases: 250,
			Population:   Int{Value: 86715, Valid: true},
			CasesPer100k: Int{Value: 288, Valid: true},
			Rt:           Float{Value: NeutralRt, Valid: true},
		},
		{
			FIPS: 48007, Name: "Aransas", RecentCases: 30,
			Rt: Float{Value: 1.3, Valid: true},
		},
	}
	if diff := pretty.Diff(have, want); len(diff) > 0 {
		t.Errorf("joined records (have, want): %v", diff)
	}
}

func TestJoinCompleteness(t *testing.T) {
	changes := []CaseChange{
		{FIPS: 48001, Name: "Anderson", RecentCases: 1},
		{FIPS: 48003, Name: "Andrews", RecentCases: 2},
		{FIPS: 48001, Name: "Anderson", RecentCases: 3},
	}
	table := Join(changes, nil, nil)
	if table.Len() != 2 {
		t.Fatalf("have %d records, want 2", table.Len())
	}
	for _, fips := range []int{48001, 48003} {
		r, ok := table.Region(fips)
		if !ok {
			t.Fatalf("missing region %d", fips)
		}
		if r.Population.Valid || r.CasesPer100k.Valid {
			t.Errorf("expected undefined population with empty sources: %v", r)
		}
		if !r.Rt.Valid || r.Rt.Value != NeutralRt {
			t.Errorf("rt = %v, want %v", r.Rt, NeutralRt)
		}
		if r.Complete() {
			t.Errorf("%v should not be complete", r)
		}
	}
	if _, ok := table.Region(48005); ok {
		t.Error("region not in the case data should not be in the table")
	}
}

func TestJoinMissingRt(t *testing.T) {
	changes := []CaseChange{{FIPS: 48005, Name: "Angelina", RecentCases: 250}}
	pop := []PopulationEntry{{Name: ".Angelina County, Texas", Population: 86715}}
	rt := []RtObservation{{FIPS: 48001, Date: date("2020-11-12"), Rt: 1.4}}
	for _, obs := range [][]RtObservation{nil, rt} {
		table := Join(changes, pop, obs)
		r := table.Record(0)
		if !r.Rt.Valid || r.Rt.Value != 1.0 {
			t.Errorf("rt = %v, want 1", r.Rt)
		}
		if !r.Complete() {
			t.Errorf("%v should be complete", r)
		}
		p, err := Project(r, 100, 14)
		if err != nil {
			t.Fatal(err)
		}
		if p.String() != "25%" {
			t.Errorf("have %s, want 25%%", p)
		}
	}
}

func TestJoinClampsNegativeChanges(t *testing.T) {
	table := Join([]CaseChange{{FIPS: 48001, Name: "Anderson", RecentCases: -40}}, nil, nil)
	if r := table.Record(0); r.RecentCases != 0 {
		t.Errorf("recent cases = %d, want 0", r.RecentCases)
	}
}

func TestCasesPer100k(t *testing.T) {
	if v, ok := CasesPer100k(250, 86715); !ok || v != 288 {
		t.Errorf("have %d, %v; want 288, true", v, ok)
	}
	if _, ok := CasesPer100k(250, 0); ok {
		t.Error("zero population should be undefined")
	}
}

func TestTableRecordsIsCopy(t *testing.T) {
	table := testTable()
	r := table.Records()
	r[0].RecentCases = 1e6
	if table.Record(0).RecentCases == 1e6 {
		t.Error("modifying the returned records changed the table")
	}
}
