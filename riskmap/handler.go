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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/eventrisk"
	"github.com/spatialmodel/eventrisk/sources"
)

// Handler serves the map for queries given as "people" and "days" URL
// parameters. The page is served at "/" and the features at
// "/map.geojson". Requests without parameters use Default.
type Handler struct {
	Table    *eventrisk.Table
	Counties sources.Counties
	View     View
	Default  eventrisk.Query
	Log      logrus.FieldLogger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/", "/map.geojson":
	default:
		http.NotFound(w, r)
		return
	}
	q, err := h.query(r)
	if err != nil {
		h.Log.WithError(err).Debug("invalid query")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fc, scale, err := Render(h.Table, h.Counties, q, h.Log)
	if err != nil {
		h.Log.WithError(err).Error("rendering map")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.URL.Path == "/map.geojson" {
		w.Header().Set("Content-Type", "application/geo+json")
		if err := json.NewEncoder(w).Encode(fc); err != nil {
			h.Log.WithError(err).Error("writing features")
		}
		return
	}
	v := h.View
	v.Interactive = true
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := WriteHTML(w, fc, scale, v, q); err != nil {
		h.Log.WithError(err).Error("writing page")
	}
}

func (h *Handler) query(r *http.Request) (eventrisk.Query, error) {
	people, days := r.FormValue("people"), r.FormValue("days")
	if people == "" && days == "" {
		return h.Default, h.Default.Validate()
	}
	return eventrisk.ParseQuery(people, days)
}

// Render runs query q on t and creates the map features. Counties that
// cannot be projected are logged and left without probabilities.
func Render(t *eventrisk.Table, counties sources.Counties, q eventrisk.Query, log logrus.FieldLogger) (*FeatureCollection, *Scale, error) {
	proj, err := t.Query(q)
	if err != nil {
		return nil, nil, err
	}
	var incomplete int
	for _, p := range proj {
		if p.Err == nil {
			continue
		}
		if !errors.Is(p.Err, eventrisk.ErrIncomplete) {
			return nil, nil, p.Err
		}
		incomplete++
		log.WithField("fips", p.FIPS).Debug(p.Err)
	}
	fc, scale, err := Build(t, proj, counties)
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{
		"people":     q.People,
		"days":       q.Days,
		"counties":   t.Len(),
		"mapped":     len(fc.Features),
		"incomplete": incomplete,
		"scale_max":  scale.Max,
	}).Info("projected event risk")
	return fc, scale, nil
}
