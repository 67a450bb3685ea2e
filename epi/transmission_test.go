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

package epi

import (
	"fmt"
	"math"
	"testing"
)

func TestCalibratedFactor(t *testing.T) {
	var tests = []struct {
		rt   float64
		days int
		out  float64
	}{
		{rt: 1, days: 30, out: 1},
		{rt: 2, days: 0, out: 1},
		{rt: 2, days: 30, out: math.Exp(6.66)},
		{rt: 0.5, days: 10, out: math.Exp(-1.11)},
	}

	for _, test := range tests {
		t.Run(fmt.Sprint(test.rt, "_", test.days), func(t *testing.T) {
			have := Calibrated.Factor(test.rt, test.days)
			if math.Abs(have-test.out) > 1e-12 {
				t.Errorf("Factor(%g, %d) = %g, want %g", test.rt, test.days, have, test.out)
			}
		})
	}
}

func TestCarrierProbability(t *testing.T) {
	if p := CarrierProbability(0, 1000); p != 0 {
		t.Errorf("no carriers: %g != 0", p)
	}
	if p := CarrierProbability(1, 1); p != 1 {
		t.Errorf("everyone a carrier: %g != 1", p)
	}
	prev := 0.
	for people := 1; people <= 200; people++ {
		p := CarrierProbability(0.003, people)
		if p < prev {
			t.Fatalf("probability decreased from %g to %g at %d people", prev, p, people)
		}
		prev = p
	}
}

func TestRound(t *testing.T) {
	var tests = []struct {
		in     float64
		places int
		out    float64
	}{
		{in: 0.0099551, places: 5, out: 0.00996},
		{in: 2.5, places: 0, out: 2},
		{in: 3.5, places: 0, out: 4},
		{in: 0.125, places: 2, out: 0.12},
		{in: 2.675, places: 2, out: 2.67}, // stored just below 2.675
		{in: 1250, places: -2, out: 1200},
		{in: 1351, places: -2, out: 1400},
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.in), func(t *testing.T) {
			have := Round(test.in, test.places)
			if math.Abs(have-test.out) > 1e-12 {
				t.Errorf("Round(%g, %d) = %g, want %g", test.in, test.places, have, test.out)
			}
		})
	}
	if !math.IsNaN(Round(math.NaN(), 5)) {
		t.Error("NaN should round to NaN")
	}
}

// This example calculates the chance that a wedding has at least one
// contagious guest, now and after postponing it by three weeks.
func Example() {
	var (
		// recent represents cases reported in the last two weeks.
		recent = 250.0

		// population is the number of people living in the county.
		population = 100000.0

		// rt is the current reproduction number in the county.
		rt = 1.1

		guests = 150
	)

	now := CarrierProbability(recent/population, guests)
	fmt.Printf("now: %.0f%%\n", 100*now)

	later := recent * math.RoundToEven(Calibrated.Factor(rt, 21)) / population
	fmt.Printf("in three weeks: %.0f%%\n", 100*CarrierProbability(later, guests))

	// Output:
	// now: 31%
	// in three weeks: 53%
}
