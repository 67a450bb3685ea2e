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

// Package epi holds a collection of functions for projecting the spread of
// an infectious disease and the chance of encountering a contagious person.
package epi

import "math"

// Exponential implements a simple exponential growth model where the daily
// growth rate of active cases is proportional to the excess of the
// reproduction number over one.
type Exponential struct {
	// Coefficient relates (Rt - 1) to the daily exponential growth rate.
	Coefficient float64

	// Label is the name of the model.
	Label string
}

// Factor returns the multiplicative change in the number of active cases
// after the given number of days when the reproduction number is rt.
func (e Exponential) Factor(rt float64, days int) float64 {
	return math.Exp((rt - 1) * e.Coefficient * float64(days))
}

// Name returns the label for this model.
func (e Exponential) Name() string { return e.Label }

// Calibrated is an exponential growth model fit to nationwide US case
// counts over periods where the national reproduction number was roughly
// constant. The exponent of each period's growth curve was regressed against
// its reproduction number, giving a slope of 0.222 per day.
var Calibrated = Exponential{
	Coefficient: 0.222,
	Label:       "Calibrated",
}

// Grower is an interface for any type that can calculate how the number of
// active cases changes over time for a given reproduction number.
type Grower interface {
	Factor(rt float64, days int) float64
	Name() string
}

// CarrierProbability returns the probability that at least one of people
// individuals drawn at random from a population is contagious, where
// perCapita is the contagious fraction of that population.
func CarrierProbability(perCapita float64, people int) float64 {
	return 1 - math.Pow(1-perCapita, float64(people))
}

// Round rounds x to the given number of decimal places. Halves of the
// scaled binary value go to the nearest even integer, so decimal inputs
// that are not exactly representable, such as 2.675, may round either way.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	pow := math.Pow10(places)
	return math.RoundToEven(x*pow) / pow
}
