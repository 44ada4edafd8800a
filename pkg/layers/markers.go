// Package layers converts validated datasets into the JSON payload the
// embedded map page renders: per-layer marker lists with popup/tooltip
// HTML, clustering options, and the composed map view.
package layers

import (
	"fmt"
	"html"
	"strings"

	"geomap-dashboard/pkg/geodata"
)

// ClusterOptions mirrors the Leaflet.markercluster settings applied to
// every detailed layer. Values are fixed visual parameters, not user
// configuration.
type ClusterOptions struct {
	MaxClusterRadius    int  `json:"maxClusterRadius"`
	SpiderfyOnMaxZoom   bool `json:"spiderfyOnMaxZoom"`
	ShowCoverageOnHover bool `json:"showCoverageOnHover"`
	ZoomToBoundsOnClick bool `json:"zoomToBoundsOnClick"`
}

// DefaultClusterOptions matches the dashboard's fixed cluster look:
// 50px radius, spiderfy at max zoom, hover coverage, click-to-zoom.
var DefaultClusterOptions = ClusterOptions{
	MaxClusterRadius:    50,
	SpiderfyOnMaxZoom:   true,
	ShowCoverageOnHover: true,
	ZoomToBoundsOnClick: true,
}

// Marker is one renderable point with pre-built popup and tooltip HTML.
type Marker struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Popup   string  `json:"popup,omitempty"`
	Tooltip string  `json:"tooltip,omitempty"`
}

// Layer groups one dataset's markers under a single color and label.
// A layer built from an empty dataset has Count zero but is still
// addable to the map so the layer control stays consistent.
type Layer struct {
	Label   string         `json:"label"`
	Color   string         `json:"color"`
	Cluster bool           `json:"cluster"`
	Fast    bool           `json:"fast"`
	Count   int            `json:"count"`
	Markers []Marker       `json:"markers,omitempty"`
	Points  [][2]float64   `json:"points,omitempty"`
	Options ClusterOptions `json:"options"`
}

// Build renders one dataset into a layer.
//
// Fast mode (cluster && fast) hands the frontend a bare coordinate list
// with no per-point popup or tooltip — bulk construction for large
// files. Otherwise every row becomes a detailed marker; with cluster
// enabled the frontend groups them under DefaultClusterOptions, without
// it they are plain markers.
func Build(ds *geodata.Dataset, color, label string, cluster, fast bool) Layer {
	layer := Layer{
		Label:   label,
		Color:   color,
		Cluster: cluster,
		Fast:    cluster && fast,
		Options: DefaultClusterOptions,
	}
	if ds.Empty() {
		return layer
	}

	if layer.Fast {
		layer.Points = make([][2]float64, 0, len(ds.Records))
		for _, rec := range ds.Records {
			layer.Points = append(layer.Points, [2]float64{rec.Latitude, rec.Longitude})
		}
		layer.Count = len(layer.Points)
		return layer
	}

	layer.Markers = make([]Marker, 0, len(ds.Records))
	for _, rec := range ds.Records {
		layer.Markers = append(layer.Markers, Marker{
			Lat:     rec.Latitude,
			Lon:     rec.Longitude,
			Popup:   PopupHTML(rec),
			Tooltip: TooltipHTML(rec),
		})
	}
	layer.Count = len(layer.Markers)
	return layer
}

// TooltipHTML builds the hover text for one record: bolded name when
// present, the fixed-precision coordinate line, then the postal code.
// Pure function of the record, so repeated calls yield identical HTML.
func TooltipHTML(rec geodata.Record) string {
	var b strings.Builder
	if rec.Name != nil {
		b.WriteString("<b>" + html.EscapeString(*rec.Name) + "</b><br>")
	}
	if geodata.Valid(rec.Latitude, rec.Longitude) {
		fmt.Fprintf(&b, "Latitude: %.6f, Longitude: %.6f", rec.Latitude, rec.Longitude)
	} else {
		b.WriteString("Latitude: n/a, Longitude: n/a")
	}
	if rec.Postal != nil {
		b.WriteString("<br>Postal Code: " + html.EscapeString(*rec.Postal))
	}
	return b.String()
}

// PopupHTML builds the click popup: a titled block listing the record's
// known fields in fixed order, skipping absent ones.
func PopupHTML(rec geodata.Record) string {
	var b strings.Builder
	b.WriteString("<div class='cluster-popup'>")
	b.WriteString("<b>📍 Location Details</b><br>")
	if rec.Name != nil {
		b.WriteString("<b>Name:</b> " + html.EscapeString(*rec.Name) + "<br>")
	}
	fmt.Fprintf(&b, "<b>Latitude:</b> %.6f<br>", rec.Latitude)
	fmt.Fprintf(&b, "<b>Longitude:</b> %.6f<br>", rec.Longitude)
	if rec.Postal != nil {
		b.WriteString("<b>Postal Code:</b> " + html.EscapeString(*rec.Postal) + "<br>")
	}
	if rec.State != nil {
		b.WriteString("<b>State:</b> " + html.EscapeString(*rec.State) + "<br>")
	}
	if rec.City != nil {
		b.WriteString("<b>City:</b> " + html.EscapeString(*rec.City) + "<br>")
	}
	if rec.Address != nil {
		b.WriteString("<b>Address:</b> " + html.EscapeString(*rec.Address) + "<br>")
	}
	b.WriteString("</div>")
	return b.String()
}
