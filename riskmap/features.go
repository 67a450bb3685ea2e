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

// Package riskmap renders county event risk projections as a choropleth
// map, colored by recent cases per 100,000 people.
package riskmap

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/spatialmodel/eventrisk"
	"github.com/spatialmodel/eventrisk/sources"
)

// FeatureCollection is a GeoJSON FeatureCollection of counties.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// Feature is a GeoJSON Feature representing one county.
type Feature struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties Properties      `json:"properties"`
}

// Properties holds the information displayed for a county.
type Properties struct {
	FIPS         int      `json:"fips"`
	Name         string   `json:"name"`
	RecentCases  int      `json:"cases_14d"`
	Population   int      `json:"population"`
	CasesPer100k int      `json:"cases_per_100k"`
	Rt           *float64 `json:"rt,omitempty"`
	Current      string   `json:"current"`
	Postponed    string   `json:"postponed"`

	// Color is the fill color and Hover is the HTML shown when the
	// pointer is over the county.
	Color string `json:"color"`
	Hover string `json:"hover"`
}

// Build creates map features for the counties in t, where proj holds the
// results of a query on t. Counties without a cases per 100,000 value or
// without a boundary in counties are left out of the map.
func Build(t *eventrisk.Table, proj []eventrisk.Projection, counties sources.Counties) (*FeatureCollection, *Scale, error) {
	if len(proj) != t.Len() {
		return nil, nil, fmt.Errorf("riskmap: %d projections for %d counties", len(proj), t.Len())
	}
	boundaries := make(map[int]sources.County, len(counties))
	for _, c := range counties {
		boundaries[c.FIPS] = c
	}

	fc := &FeatureCollection{Type: "FeatureCollection"}
	var vals []float64
	for i, p := range proj {
		r := t.Record(i)
		if p.FIPS != r.FIPS {
			return nil, nil, fmt.Errorf("riskmap: projection %d is for county %05d, not %05d", i, p.FIPS, r.FIPS)
		}
		if !r.CasesPer100k.Valid {
			continue
		}
		b, ok := boundaries[r.FIPS]
		if !ok {
			continue
		}
		props := Properties{
			FIPS:         r.FIPS,
			Name:         r.Name,
			RecentCases:  r.RecentCases,
			Population:   r.Population.Value,
			CasesPer100k: r.CasesPer100k.Value,
			Current:      p.Current.String(),
			Postponed:    p.Postponed.String(),
		}
		if r.Rt.Valid {
			rt := r.Rt.Value
			props.Rt = &rt
		}
		props.Hover = hover(props)
		fc.Features = append(fc.Features, &Feature{
			Type:       "Feature",
			ID:         fmt.Sprintf("%05d", r.FIPS),
			Geometry:   b.Geometry,
			Properties: props,
		})
		vals = append(vals, float64(r.CasesPer100k.Value))
	}

	scale := NewScale(vals)
	for _, f := range fc.Features {
		f.Properties.Color = scale.Color(float64(f.Properties.CasesPer100k))
	}
	return fc, scale, nil
}

func hover(p Properties) string {
	return fmt.Sprintf("<b>%s</b><br>2 Weeks Cases per 100,000=%d<br>At Least 1 Carrier Probability=%s<br>Likely Prob. After Waiting=%s",
		html.EscapeString(p.Name), p.CasesPer100k, p.Current, p.Postponed)
}
