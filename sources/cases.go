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

// Package sources reads the external tables used by EventRisk: cumulative
// county case counts, county population estimates, county reproduction
// number estimates, and county boundaries.
package sources

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spatialmodel/eventrisk"
)

// dateFormat is the format of dates in the case count and reproduction
// number tables.
const dateFormat = "2006-01-02"

// columns maps the names in a CSV header line to their positions.
type columns map[string]int

func readHeader(r *csv.Reader, required ...string) (columns, error) {
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %v", err)
	}
	c := make(columns, len(header))
	for i, h := range header {
		c[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := c[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return c, nil
}

func (c columns) get(line []string, name string) string {
	return strings.TrimSpace(line[c[name]])
}

// ReadCases reads a cumulative case count table in the format published by
// The New York Times (columns date, county, state, fips, and cases),
// keeping only rows for the given state. Rows without a FIPS code, which
// the source uses for cases it could not assign to a county, are skipped.
func ReadCases(f io.Reader, state string) ([]eventrisk.CaseObservation, error) {
	r := csv.NewReader(f)
	r.ReuseRecord = true
	c, err := readHeader(r, "date", "county", "state", "fips", "cases")
	if err != nil {
		return nil, fmt.Errorf("sources: reading cases: %v", err)
	}
	var o []eventrisk.CaseObservation
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sources: reading cases: %v", err)
		}
		if c.get(rec, "state") != state {
			continue
		}
		fipsStr := c.get(rec, "fips")
		if fipsStr == "" {
			continue
		}
		fips, err := strconv.Atoi(fipsStr)
		if err != nil {
			return nil, fmt.Errorf("sources: reading cases line %d: invalid fips: %v", line, err)
		}
		d, err := time.Parse(dateFormat, c.get(rec, "date"))
		if err != nil {
			return nil, fmt.Errorf("sources: reading cases line %d: %v", line, err)
		}
		cases, err := parseCount(c.get(rec, "cases"))
		if err != nil {
			return nil, fmt.Errorf("sources: reading cases line %d: %v", line, err)
		}
		o = append(o, eventrisk.CaseObservation{
			Date:   d,
			County: c.get(rec, "county"),
			State:  state,
			FIPS:   fips,
			Cases:  cases,
		})
	}
	return o, nil
}

// parseCount parses a count that may have been written as a float.
func parseCount(s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int(f), nil
}
