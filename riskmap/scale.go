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

package riskmap

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/carto"
	"github.com/gonum/floats"
	"github.com/spatialmodel/eventrisk/epi"
	"gonum.org/v1/gonum/stat"
)

// Scale maps values to fill colors, going from white at zero to dark red
// at Max. Values above Max get the color of Max.
type Scale struct {
	Max  float64
	cmap *carto.ColorMap
}

// Tick is a labeled color on the legend.
type Tick struct {
	Value float64
	Color string
}

// NewScale creates a color scale for vals. The top of the scale is the
// mean plus two standard deviations, rounded to the nearest hundred, so
// that a few outlying counties do not wash out the rest of the map.
func NewScale(vals []float64) *Scale {
	s := &Scale{
		Max:  colorRange(vals),
		cmap: carto.NewColorMap(carto.Linear),
	}
	if s.Max > 0 {
		s.cmap.AddArray([]float64{0, s.Max})
		s.cmap.Set()
	}
	return s
}

func colorRange(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	if len(vals) > 1 {
		top := epi.Round(stat.Mean(vals, nil)+2*stat.StdDev(vals, nil), -2)
		if top > 0 && !math.IsNaN(top) {
			return top
		}
	}
	return math.Max(floats.Max(vals), 0)
}

// Color returns the fill color for v as a hex string.
func (s *Scale) Color(v float64) string {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > s.Max {
		v = s.Max
	}
	c := s.cmap.GetColor(v)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Ticks returns n+1 evenly spaced legend entries from zero to Max.
func (s *Scale) Ticks(n int) []Tick {
	if n < 1 {
		n = 1
	}
	o := make([]Tick, n+1)
	for i := range o {
		v := s.Max * float64(i) / float64(n)
		o[i] = Tick{Value: v, Color: s.Color(v)}
	}
	return o
}
