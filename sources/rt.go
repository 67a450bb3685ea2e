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
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spatialmodel/eventrisk"
)

// UIDOffset is the prefix added to county FIPS codes in the Johns Hopkins
// style UIDs used by the reproduction number table (840 is the country
// code of the United States).
const UIDOffset = 84000000

// maxCountyCode is the largest county code within a state.
const maxCountyCode = 507

// UIDRange returns the range of reproduction number table UIDs, inclusive,
// for the counties in the state with the given FIPS code.
func UIDRange(stateFIPS int) (min, max int) {
	base := UIDOffset + stateFIPS*1000
	return base + 1, base + maxCountyCode
}

// ReadRtZip reads the first CSV file inside the zip archive at path.
// See ReadRt for details.
func ReadRtZip(path string, minUID, maxUID int) ([]eventrisk.RtObservation, error) {
	z, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("sources: opening rt archive: %v", err)
	}
	defer z.Close()
	for _, f := range z.File {
		if strings.ToLower(filepath.Ext(f.Name)) != ".csv" || strings.HasPrefix(filepath.Base(f.Name), ".") {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("sources: opening %s in rt archive: %v", f.Name, err)
		}
		defer r.Close()
		return ReadRt(r, minUID, maxUID)
	}
	return nil, fmt.Errorf("sources: no csv file in rt archive %s", path)
}

// ReadRt reads a reproduction number table with columns UID, date, and
// Rt_loess_fit, such as the county estimates published by the Lin lab at
// the Harvard T.H. Chan School of Public Health. Only rows with UIDs in
// [minUID, maxUID] are kept, and UIDOffset is subtracted from the UID to
// give the county FIPS code. Estimates that are missing or marked "NA" are
// returned as NaN.
func ReadRt(f io.Reader, minUID, maxUID int) ([]eventrisk.RtObservation, error) {
	r := csv.NewReader(f)
	r.ReuseRecord = true
	c, err := readHeader(r, "UID", "date", "Rt_loess_fit")
	if err != nil {
		return nil, fmt.Errorf("sources: reading rt: %v", err)
	}
	var o []eventrisk.RtObservation
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sources: reading rt: %v", err)
		}
		uid, err := parseCount(c.get(rec, "UID"))
		if err != nil {
			return nil, fmt.Errorf("sources: reading rt line %d: invalid UID: %v", line, err)
		}
		if uid < minUID || uid > maxUID {
			continue
		}
		d, err := time.Parse(dateFormat, c.get(rec, "date"))
		if err != nil {
			return nil, fmt.Errorf("sources: reading rt line %d: %v", line, err)
		}
		o = append(o, eventrisk.RtObservation{
			FIPS: uid - UIDOffset,
			Date: d,
			Rt:   parseRt(c.get(rec, "Rt_loess_fit")),
		})
	}
	return o, nil
}

func parseRt(s string) float64 {
	switch strings.ToUpper(s) {
	case "", "NA", "NAN", "NULL":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
