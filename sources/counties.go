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

package sources

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
)

// County holds the boundary of one county.
type County struct {
	// FIPS is the five-digit county FIPS code.
	FIPS int

	// Geometry is the boundary as it appeared in the source, in
	// longitude and latitude.
	Geometry json.RawMessage

	// Bounds is the extent of the boundary.
	Bounds *geom.Bounds
}

// Counties is a set of county boundaries.
type Counties []County

// Bounds returns the combined extent of the counties.
func (c Counties) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, county := range c {
		b.Extend(county.Bounds)
	}
	return b
}

type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		ID       json.RawMessage `json:"id"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// ReadCounties reads county boundaries from a GeoJSON FeatureCollection
// whose feature ids are five-digit county FIPS codes, such as the one
// distributed with the Plotly example datasets. Only counties in the state
// with the given FIPS code are kept.
func ReadCounties(r io.Reader, stateFIPS int) (Counties, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("sources: decoding county GeoJSON: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("sources: county GeoJSON is a %q, not a FeatureCollection", fc.Type)
	}
	var o Counties
	for i, f := range fc.Features {
		fips, err := featureFIPS(f.ID)
		if err != nil {
			return nil, fmt.Errorf("sources: county feature %d: %v", i, err)
		}
		if fips/1000 != stateFIPS {
			continue
		}
		g, err := geojson.Decode(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("sources: county %05d geometry: %v", fips, err)
		}
		o = append(o, County{
			FIPS:     fips,
			Geometry: f.Geometry,
			Bounds:   g.Bounds(),
		})
	}
	return o, nil
}

// featureFIPS parses a feature id, which may be a string such as "48001" or
// a number.
func featureFIPS(id json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(id, &s); err != nil {
		s = string(id)
	}
	fips, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid FIPS id %s", id)
	}
	return fips, nil
}
