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

// Command eventrisk estimates the chance that at least one person at an
// event is carrying COVID-19, for every county in a state.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/eventrisk/riskutil"
)

func main() {
	if err := riskutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
