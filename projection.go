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
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/spatialmodel/eventrisk/epi"
)

// ErrIncomplete is returned when a county is missing the population needed
// for a projection.
var ErrIncomplete = errors.New("eventrisk: incomplete region record")

// Percent is a whole-number percentage that may be undefined.
type Percent struct {
	Value int
	Valid bool
}

// String returns the percentage formatted as, for example, "12%",
// or "n/a" if it is undefined.
func (p Percent) String() string {
	if !p.Valid {
		return "n/a"
	}
	return strconv.Itoa(p.Value) + "%"
}

// Project returns the probability that at least one person in a group of
// the given size drawn from region r is contagious after the given
// number of days, according to the calibrated exponential growth model.
// A record without a reproduction number is projected with NeutralRt.
// It returns an error wrapping ErrIncomplete if r has no usable population.
func Project(r RegionRecord, people, days int) (Percent, error) {
	return project(epi.Calibrated, r, people, days)
}

func project(g epi.Grower, r RegionRecord, people, days int) (Percent, error) {
	if !r.Complete() {
		return Percent{}, fmt.Errorf("%w: %05d %s", ErrIncomplete, r.FIPS, r.Name)
	}
	population := float64(r.Population.Value)
	current := float64(r.RecentCases)
	rt := NeutralRt
	if r.Rt.Valid {
		rt = r.Rt.Value
	}
	rt = epi.Round(rt, 5)

	growth := math.RoundToEven(g.Factor(rt, days))
	var cases float64
	if current > 0 {
		cases = current * growth
	}
	// Projected cases never exceed the population, for short postponements
	// as well as those of 30 days or more.
	if cases > population {
		cases = population
	}

	perCapita := epi.Round(cases/population, 5)
	p := epi.Round(epi.CarrierProbability(perCapita, people), 5)
	return Percent{Value: int(math.RoundToEven(100 * p)), Valid: true}, nil
}

// InputError is returned when a query is not made of two positive integers.
type InputError struct {
	Field string
	Input string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("eventrisk: %s must be a positive integer, not %q", e.Field, e.Input)
}

// Query holds the user's inputs: the number of people at the event and the
// number of days it may be postponed by.
type Query struct {
	People int
	Days   int
}

// Validate returns an *InputError if either field is not positive.
func (q Query) Validate() error {
	if q.People < 1 {
		return &InputError{Field: "people", Input: strconv.Itoa(q.People)}
	}
	if q.Days < 1 {
		return &InputError{Field: "days", Input: strconv.Itoa(q.Days)}
	}
	return nil
}

// ParseQuery parses the number of people and days from user input.
func ParseQuery(people, days string) (Query, error) {
	p, err := parsePositive("people", people)
	if err != nil {
		return Query{}, err
	}
	d, err := parsePositive("days", days)
	if err != nil {
		return Query{}, err
	}
	return Query{People: p, Days: d}, nil
}

func parsePositive(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, &InputError{Field: field, Input: s}
	}
	return v, nil
}

// Projection holds the result of a query for one county.
type Projection struct {
	FIPS int

	// Current is the probability of at least one carrier at an event held
	// now, and Postponed is the probability after waiting the requested
	// number of days.
	Current, Postponed Percent

	// Err is non-nil if the county could not be projected.
	Err error
}

// Query projects every county in the table for the given query and returns
// one Projection per record, in table order. The table itself is not
// modified, so repeating a query always gives the same result.
// Counties that cannot be projected have undefined percentages and a
// non-nil Err; they do not affect the other counties.
func (t *Table) Query(q Query) ([]Projection, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	o := make([]Projection, len(t.records))
	nprocs := runtime.GOMAXPROCS(-1)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for p := 0; p < nprocs; p++ {
		go func(p int) {
			defer wg.Done()
			for i := p; i < len(t.records); i += nprocs {
				o[i] = projectRecord(t.records[i], q)
			}
		}(p)
	}
	wg.Wait()
	return o, nil
}

func projectRecord(r RegionRecord, q Query) Projection {
	o := Projection{FIPS: r.FIPS}
	current, err := Project(r, q.People, 0)
	if err != nil {
		o.Err = err
		return o
	}
	postponed, err := Project(r, q.People, q.Days)
	if err != nil {
		o.Err = err
		return o
	}
	o.Current, o.Postponed = current, postponed
	return o
}
