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
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
)

func region(cases, population int, rt float64) RegionRecord {
	return RegionRecord{
		FIPS:        48001,
		Name:        "Anderson",
		RecentCases: cases,
		Population:  Int{Value: population, Valid: true},
		Rt:          Float{Value: rt, Valid: true},
	}
}

func TestProject(t *testing.T) {
	var tests = []struct {
		r            RegionRecord
		people, days int
		want         string
	}{
		{r: region(100, 100000, 1), people: 10, days: 0, want: "1%"},
		{r: region(100, 100000, 2), people: 10, days: 30, want: "100%"},
		{r: region(100, 100000, 1), people: 10, days: 60, want: "1%"},
		{r: region(0, 100000, 3), people: 1000, days: 90, want: "0%"},
		{r: region(2500, 100000, 1), people: 100, days: 0, want: "92%"},
		{r: region(2500, 100000, 0.5), people: 100, days: 6, want: "92%"},
		{r: region(2500, 100000, 0.5), people: 100, days: 7, want: "0%"},
		{r: region(50, 1000, 3), people: 2, days: 400, want: "100%"},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v_%d_%d", test.r.Rt.Value, test.people, test.days), func(t *testing.T) {
			have, err := Project(test.r, test.people, test.days)
			if err != nil {
				t.Fatal(err)
			}
			if have.String() != test.want {
				t.Errorf("have %s, want %s", have, test.want)
			}
		})
	}
}

type linearGrowth float64

func (l linearGrowth) Factor(rt float64, days int) float64 { return 1 + float64(l)*float64(days) }
func (l linearGrowth) Name() string                         { return "linear" }

func TestProjectPopulationCeiling(t *testing.T) {
	// Projected cases far exceed the population, so every member of the
	// group is certain to be a carrier.
	for _, days := range []int{1, 29, 30, 31, 365} {
		t.Run(fmt.Sprint(days), func(t *testing.T) {
			have, err := project(linearGrowth(1e6), region(10, 500, 1), 1, days)
			if err != nil {
				t.Fatal(err)
			}
			if have.Value != 100 {
				t.Errorf("have %s, want 100%%", have)
			}
		})
	}
}

func TestProjectMonotonicInPeople(t *testing.T) {
	for _, r := range []RegionRecord{region(100, 100000, 1), region(37, 4500, 1.2), region(900, 2000000, 0.8)} {
		for _, days := range []int{0, 7, 30} {
			prev := -1
			for people := 1; people <= 500; people += 7 {
				p, err := Project(r, people, days)
				if err != nil {
					t.Fatal(err)
				}
				if p.Value < prev {
					t.Errorf("%v days=%d: probability fell from %d%% to %s at %d people", r, days, prev, p, people)
				}
				if p.Value < 0 || p.Value > 100 {
					t.Errorf("probability %s out of range", p)
				}
				prev = p.Value
			}
		}
	}
}

func TestProjectIncomplete(t *testing.T) {
	var tests = []RegionRecord{
		{FIPS: 48001, RecentCases: 10, Rt: Float{Value: 1, Valid: true}},
		region(10, 0, 1),
	}
	for i, r := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			p, err := Project(r, 10, 5)
			if !errors.Is(err, ErrIncomplete) {
				t.Errorf("have error %v, want ErrIncomplete", err)
			}
			if p.Valid {
				t.Errorf("percent should be undefined, have %s", p)
			}
			if p.String() != "n/a" {
				t.Errorf("undefined percent formatted as %q", p.String())
			}
		})
	}
}

func TestProjectWithoutRt(t *testing.T) {
	r := RegionRecord{FIPS: 48001, RecentCases: 100, Population: Int{Value: 100000, Valid: true}}
	for _, days := range []int{0, 14} {
		have, err := Project(r, 10, days)
		if err != nil {
			t.Fatal(err)
		}
		want, err := Project(region(100, 100000, NeutralRt), 10, days)
		if err != nil {
			t.Fatal(err)
		}
		if have != want {
			t.Errorf("days=%d: have %s, want %s", days, have, want)
		}
	}
}

func TestProjectRoundsHalfToEven(t *testing.T) {
	var tests = []struct {
		cases int
		want  string
	}{
		{cases: 5, want: "0%"},  // 0.5
		{cases: 15, want: "2%"}, // 1.5
		{cases: 25, want: "2%"}, // 2.5
		{cases: 45, want: "4%"}, // 4.5
		{cases: 6, want: "1%"},  // 0.6
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.cases), func(t *testing.T) {
			have, err := Project(region(test.cases, 1000, 1), 1, 0)
			if err != nil {
				t.Fatal(err)
			}
			if have.String() != test.want {
				t.Errorf("have %s, want %s", have, test.want)
			}
		})
	}
}

func TestTableQuery(t *testing.T) {
	table := testTable()
	q := Query{People: 25, Days: 14}
	first, err := table.Query(q)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != table.Len() {
		t.Fatalf("have %d projections for %d records", len(first), table.Len())
	}
	for i, p := range first {
		r := table.Record(i)
		if p.FIPS != r.FIPS {
			t.Errorf("projection %d is for %d, want %d", i, p.FIPS, r.FIPS)
		}
		if r.Complete() != (p.Err == nil) {
			t.Errorf("%v: unexpected error state %v", r, p.Err)
		}
		if p.Err != nil && (p.Current.Valid || p.Postponed.Valid) {
			t.Errorf("%v: incomplete record has defined percentages", r)
		}
	}

	// Another query must not change the table or leak into a repeat of
	// the first query.
	if _, err := table.Query(Query{People: 1000, Days: 60}); err != nil {
		t.Fatal(err)
	}
	second, err := table.Query(q)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated query differs: %v != %v", first, second)
	}
}

func TestTableQueryInvalid(t *testing.T) {
	for _, q := range []Query{{People: 0, Days: 1}, {People: 1, Days: 0}, {People: -5, Days: -5}} {
		_, err := testTable().Query(q)
		var ie *InputError
		if !errors.As(err, &ie) {
			t.Errorf("%+v: have error %v, want *InputError", q, err)
		}
	}
}

func TestParseQuery(t *testing.T) {
	var tests = []struct {
		people, days string
		want         Query
		field        string
	}{
		{people: "25", days: "14", want: Query{People: 25, Days: 14}},
		{people: " 8\n", days: "3\n", want: Query{People: 8, Days: 3}},
		{people: "ten", days: "3", field: "people"},
		{people: "10", days: "-3", field: "days"},
		{people: "0", days: "3", field: "people"},
		{people: "2.5", days: "3", field: "people"},
		{people: "", days: "", field: "people"},
	}
	for _, test := range tests {
		t.Run(test.people+"_"+test.days, func(t *testing.T) {
			have, err := ParseQuery(test.people, test.days)
			if test.field == "" {
				if err != nil {
					t.Fatal(err)
				}
				if have != test.want {
					t.Errorf("have %+v, want %+v", have, test.want)
				}
				return
			}
			var ie *InputError
			if !errors.As(err, &ie) {
				t.Fatalf("have error %v, want *InputError", err)
			}
			if ie.Field != test.field {
				t.Errorf("error for field %s, want %s", ie.Field, test.field)
			}
		})
	}
}

func TestPercentMatchesFormula(t *testing.T) {
	r := region(100, 100000, 1)
	p, err := Project(r, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := int(math.RoundToEven(100 * (1 - math.Pow(0.999, 10))))
	if p.Value != want {
		t.Errorf("have %d, want %d", p.Value, want)
	}
}
