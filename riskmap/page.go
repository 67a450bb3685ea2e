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
	"fmt"
	"html/template"
	"io"

	"github.com/spatialmodel/eventrisk"
)

// View holds the map settings.
type View struct {
	// Title is shown at the top of the page.
	Title string

	// Lat and Lon are the initial center of the map and Zoom is its
	// initial zoom level.
	Lat, Lon float64
	Zoom     int

	// Opacity is the opacity of the county fill colors.
	Opacity float64

	// Interactive adds a form for submitting new queries to the page.
	// It should only be set when the page is served by a Handler.
	Interactive bool
}

// DefaultView is centered on Texas.
var DefaultView = View{
	Title:   "Chance of at least one COVID-19 carrier at an event",
	Lat:     31.1322,
	Lon:     -99.3413,
	Zoom:    5,
	Opacity: 0.7,
}

// legendTicks is the number of intervals on the legend.
const legendTicks = 5

type pageData struct {
	View
	Query  eventrisk.Query
	Data   template.JS
	Legend []Tick
	Shown  int
}

// WriteHTML writes a self-contained web page displaying fc.
func WriteHTML(w io.Writer, fc *FeatureCollection, scale *Scale, v View, q eventrisk.Query) error {
	b, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("riskmap: encoding features: %v", err)
	}
	d := pageData{
		View:   v,
		Query:  q,
		Data:   template.JS(b),
		Legend: scale.Ticks(legendTicks),
		Shown:  len(fc.Features),
	}
	if err := page.Execute(w, d); err != nil {
		return fmt.Errorf("riskmap: writing page: %v", err)
	}
	return nil
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>{{.Title}}</title>
	<link rel="stylesheet" href="https://unpkg.com/leaflet@1.7.1/dist/leaflet.css">
	<script src="https://unpkg.com/leaflet@1.7.1/dist/leaflet.js"></script>
	<style>
		html, body { height: 100%; padding: 0; margin: 0; font-family: sans-serif; }
		#map { position: absolute; top: 0; bottom: 0; width: 100%; }
		.panel { background: white; padding: 6px 10px; border-radius: 4px; box-shadow: 0 0 8px rgba(0,0,0,0.3); font-size: 13px; }
		.panel i { display: inline-block; width: 18px; height: 12px; margin-right: 6px; opacity: {{.Opacity}}; }
		.panel input { width: 5em; }
	</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
L.tileLayer('https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png', {
	attribution: '&copy; OpenStreetMap contributors &copy; CARTO',
	subdomains: 'abcd',
	maxZoom: 19
}).addTo(map);

var counties = {{.Data}};
L.geoJSON(counties, {
	style: function(f) {
		return {fillColor: f.properties.color, fillOpacity: {{.Opacity}}, color: '#555', weight: 0.5};
	},
	onEachFeature: function(f, layer) {
		layer.bindTooltip(f.properties.hover, {sticky: true});
	}
}).addTo(map);

var info = L.control({position: 'topright'});
info.onAdd = function() {
	var div = L.DomUtil.create('div', 'panel');
	div.innerHTML = document.getElementById('info').innerHTML;
	L.DomEvent.disableClickPropagation(div);
	return div;
};
info.addTo(map);
</script>
<template id="info">
	<b>{{.Title}}</b><br>
	{{.Query.People}} people, postponed {{.Query.Days}} days ({{.Shown}} counties)<br>
	{{if .Interactive}}
	<form method="get" action="/">
		People <input type="number" name="people" min="1" value="{{.Query.People}}">
		Days <input type="number" name="days" min="1" value="{{.Query.Days}}">
		<input type="submit" value="Update">
	</form>
	{{end}}
	2 weeks cases per 100,000<br>
	{{range .Legend}}<i style="background: {{.Color}}"></i>{{printf "%.0f" .Value}}<br>{{end}}
</template>
</body>
</html>
`))
