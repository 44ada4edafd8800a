// Package summary computes the dashboard's aggregate widgets from the
// two loaded datasets: the four scalar metrics, the top-20 postal code
// frequency chart, and the tabular row previews.
package summary

import (
	"sort"

	"geomap-dashboard/pkg/geodata"
)

// TopPostalCodes caps the frequency chart at the twenty most common
// values, matching the fixed chart width on the page.
const TopPostalCodes = 20

// PreviewRows caps each dataset preview table.
const PreviewRows = 25

// Summary carries the four scalar metrics. HasCoords and PostalFound
// distinguish "zero" from "nothing to measure" so the page can show an
// em-dash or "Not found" instead of a misleading number.
type Summary struct {
	TotalLocations int     `json:"totalLocations"`
	AvgLat         float64 `json:"avgLat"`
	AvgLon         float64 `json:"avgLon"`
	HasCoords      bool    `json:"hasCoords"`
	UniquePostal   int     `json:"uniquePostal"`
	PostalFound    bool    `json:"postalFound"`
}

// Metrics pools both datasets into the scalar summary. Either dataset
// may be nil or empty; the math simply covers whatever records exist.
func Metrics(url, store *geodata.Dataset) Summary {
	var s Summary
	var sumLat, sumLon float64

	for _, ds := range []*geodata.Dataset{url, store} {
		if ds == nil {
			continue
		}
		if ds.Schema.PostalCol != "" {
			s.PostalFound = true
		}
		for _, rec := range ds.Records {
			sumLat += rec.Latitude
			sumLon += rec.Longitude
		}
		s.TotalLocations += len(ds.Records)
	}
	if s.TotalLocations > 0 {
		s.HasCoords = true
		s.AvgLat = sumLat / float64(s.TotalLocations)
		s.AvgLon = sumLon / float64(s.TotalLocations)
	}
	if s.PostalFound {
		seen := make(map[string]struct{})
		eachPostal(url, store, func(v string) { seen[v] = struct{}{} })
		s.UniquePostal = len(seen)
	}
	return s
}

// PostalCount is one bar of the frequency chart.
type PostalCount struct {
	Postal string `json:"postal"`
	Count  int    `json:"count"`
}

// PostalCounts pools non-empty postal values from both datasets and
// returns them by descending frequency, ties broken by first
// appearance (URL dataset first), truncated to TopPostalCodes.
func PostalCounts(url, store *geodata.Dataset) []PostalCount {
	counts := make(map[string]int)
	var order []string
	eachPostal(url, store, func(v string) {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	})

	out := make([]PostalCount, 0, len(order))
	for _, v := range order {
		out = append(out, PostalCount{Postal: v, Count: counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > TopPostalCodes {
		out = out[:TopPostalCodes]
	}
	return out
}

// eachPostal visits every non-nil postal value across both datasets in
// a fixed order so counting and dedup stay deterministic.
func eachPostal(url, store *geodata.Dataset, fn func(string)) {
	for _, ds := range []*geodata.Dataset{url, store} {
		if ds == nil || ds.Schema.PostalCol == "" {
			continue
		}
		for _, rec := range ds.Records {
			if rec.Postal != nil {
				fn(*rec.Postal)
			}
		}
	}
}

// PreviewTable is a bounded slice of a dataset's valid rows for the
// collapsible preview widgets, along with the load counters.
type PreviewTable struct {
	Columns      []string   `json:"columns"`
	Rows         [][]string `json:"rows"`
	ValidCount   int        `json:"validCount"`
	InvalidCount int        `json:"invalidCount"`
}

// Preview returns the first n valid rows in canonical column order.
func Preview(ds *geodata.Dataset, n int) PreviewTable {
	if ds == nil {
		return PreviewTable{}
	}
	pt := PreviewTable{
		Columns:      ds.Columns,
		ValidCount:   ds.ValidCount,
		InvalidCount: ds.InvalidCount,
	}
	for i, rec := range ds.Records {
		if i >= n {
			break
		}
		row := make([]string, len(ds.Columns))
		for j, col := range ds.Columns {
			row[j] = rec.Fields[col]
		}
		pt.Rows = append(pt.Rows, row)
	}
	return pt
}
