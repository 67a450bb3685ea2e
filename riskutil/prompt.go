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

package riskutil

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spatialmodel/eventrisk"
)

const banner = `
This program pulls live data from every county in %s to calculate how likely an event, like a party or wedding, will have at least one person with COVID-19.
Once the data is loaded, enter the number of people at the event, as well as the number of days to postpone the event to see how the probability changes.
Loading data from sources...
`

// promptQuery asks for the number of people and days until two positive
// integers are entered.
func promptQuery(in io.Reader, out io.Writer) (eventrisk.Query, error) {
	s := bufio.NewScanner(in)
	line := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !s.Scan() {
			if err := s.Err(); err != nil {
				return "", fmt.Errorf("eventrisk: reading input: %v", err)
			}
			return "", fmt.Errorf("eventrisk: input ended before a valid query was entered")
		}
		return s.Text(), nil
	}
	for {
		people, err := line("How many people will be at the event? ")
		if err != nil {
			return eventrisk.Query{}, err
		}
		days, err := line("How many days would you like to postpone the event? ")
		if err != nil {
			return eventrisk.Query{}, err
		}
		q, err := eventrisk.ParseQuery(people, days)
		if err == nil {
			return q, nil
		}
		fmt.Fprint(out, "\nYou must enter two positive integers\n\n")
	}
}
