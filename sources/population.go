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
	"fmt"
	"strings"

	"github.com/spatialmodel/eventrisk"
	"github.com/tealeg/xlsx"
)

// PopulationLayout describes where the data are in a population
// spreadsheet.
type PopulationLayout struct {
	// HeaderRows and FooterRows are the numbers of rows to skip at the
	// top and bottom of the first sheet.
	HeaderRows, FooterRows int

	// NameColumn and PopulationColumn are the zero-based columns holding
	// the county name and the population estimate.
	NameColumn, PopulationColumn int
}

// CensusLayout is the layout of the U.S. Census Bureau's annual county
// resident population estimates for 2010-2019 (co-est2019-annres.xlsx),
// using the July 1, 2019 estimate.
var CensusLayout = PopulationLayout{
	HeaderRows:       4,
	FooterRows:       6,
	NameColumn:       0,
	PopulationColumn: 12,
}

// ReadPopulationFile reads the population spreadsheet at path.
// See ReadPopulation for details.
func ReadPopulationFile(path, state string, l PopulationLayout) ([]eventrisk.PopulationEntry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sources: opening population xlsx file: %v", err)
	}
	return ReadPopulation(f, state, l)
}

// ReadPopulation reads county populations from the first sheet of f,
// keeping only counties whose names contain ", <state>". County names are
// returned as written in the spreadsheet; they are normalized when joined.
// Rows with an empty or unparseable population are skipped.
func ReadPopulation(f *xlsx.File, state string, l PopulationLayout) ([]eventrisk.PopulationEntry, error) {
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("sources: reading population: no sheets in file")
	}
	sheet := f.Sheets[0]
	end := len(sheet.Rows) - l.FooterRows
	if end < l.HeaderRows {
		return nil, fmt.Errorf("sources: reading population: %d rows is too few for layout %+v", len(sheet.Rows), l)
	}
	suffix := ", " + state
	var o []eventrisk.PopulationEntry
	for _, row := range sheet.Rows[l.HeaderRows:end] {
		if len(row.Cells) <= l.NameColumn || len(row.Cells) <= l.PopulationColumn {
			continue
		}
		name := strings.TrimSpace(row.Cells[l.NameColumn].Value)
		if !strings.Contains(name, suffix) {
			continue
		}
		pop, err := parseCount(strings.Replace(strings.TrimSpace(row.Cells[l.PopulationColumn].Value), ",", "", -1))
		if err != nil {
			continue
		}
		o = append(o, eventrisk.PopulationEntry{Name: name, Population: pop})
	}
	return o, nil
}
