package summary

import (
	"fmt"
	"testing"

	"geomap-dashboard/pkg/geodata"
)

func strPtr(s string) *string { return &s }

func datasetWithPostals(postalCol string, values ...string) *geodata.Dataset {
	ds := &geodata.Dataset{Schema: geodata.Schema{PostalCol: postalCol}}
	for i, v := range values {
		rec := geodata.Record{Latitude: float64(i), Longitude: float64(i)}
		if v != "" {
			rec.Postal = strPtr(v)
		}
		ds.Records = append(ds.Records, rec)
	}
	ds.ValidCount = len(ds.Records)
	return ds
}

// TestMetricsPooled: totals and means pool both datasets.
func TestMetricsPooled(t *testing.T) {
	url := &geodata.Dataset{Records: []geodata.Record{{Latitude: 0, Longitude: 0}}}
	url.ValidCount = 1
	store := &geodata.Dataset{Records: []geodata.Record{{Latitude: 10, Longitude: 20}}}
	store.ValidCount = 1

	s := Metrics(url, store)
	if s.TotalLocations != 2 {
		t.Errorf("TotalLocations = %d, want 2", s.TotalLocations)
	}
	if !s.HasCoords || s.AvgLat != 5 || s.AvgLon != 10 {
		t.Errorf("averages = (%v,%v,%v), want (true,5,10)", s.HasCoords, s.AvgLat, s.AvgLon)
	}
	if s.PostalFound {
		t.Error("PostalFound = true with no postal columns")
	}
}

// TestMetricsEmpty: no records anywhere leaves the presence flags off
// so the page shows placeholders instead of zeros.
func TestMetricsEmpty(t *testing.T) {
	s := Metrics(&geodata.Dataset{}, nil)
	if s.TotalLocations != 0 || s.HasCoords || s.PostalFound {
		t.Errorf("empty metrics = %+v", s)
	}
}

// TestMetricsUniquePostal counts distinct non-empty values across both
// datasets; a resolved postal column with zero values still reports
// PostalFound with a zero count.
func TestMetricsUniquePostal(t *testing.T) {
	url := datasetWithPostals("zip", "A", "A", "")
	store := datasetWithPostals("zip", "B", "A")
	s := Metrics(url, store)
	if !s.PostalFound || s.UniquePostal != 2 {
		t.Errorf("unique postal = (%v,%d), want (true,2)", s.PostalFound, s.UniquePostal)
	}

	bare := Metrics(datasetWithPostals("zip"), nil)
	if !bare.PostalFound || bare.UniquePostal != 0 {
		t.Errorf("bare postal = (%v,%d), want (true,0)", bare.PostalFound, bare.UniquePostal)
	}
}

// TestPostalCounts: pooling ["A","A","B"] yields {A:2, B:1} sorted by
// descending frequency.
func TestPostalCounts(t *testing.T) {
	url := datasetWithPostals("zip", "A", "A")
	store := datasetWithPostals("zip", "B")
	got := PostalCounts(url, store)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != (PostalCount{"A", 2}) || got[1] != (PostalCount{"B", 1}) {
		t.Errorf("PostalCounts = %+v", got)
	}
}

// TestPostalCountsTiesByFirstAppearance keeps equal-frequency bars in
// pooled order so the chart is deterministic.
func TestPostalCountsTiesByFirstAppearance(t *testing.T) {
	url := datasetWithPostals("zip", "Z", "M")
	store := datasetWithPostals("zip", "A")
	got := PostalCounts(url, store)
	want := []string{"Z", "M", "A"}
	for i, w := range want {
		if got[i].Postal != w {
			t.Fatalf("order = %+v, want %v", got, want)
		}
	}
}

// TestPostalCountsTruncates caps the chart at the top twenty distinct
// values.
func TestPostalCountsTruncates(t *testing.T) {
	var values []string
	for i := 0; i < 25; i++ {
		values = append(values, fmt.Sprintf("Z%02d", i))
	}
	got := PostalCounts(datasetWithPostals("zip", values...), nil)
	if len(got) != TopPostalCodes {
		t.Fatalf("len = %d, want %d", len(got), TopPostalCodes)
	}
}

// TestPreview caps rows and keeps canonical column order.
func TestPreview(t *testing.T) {
	ds := &geodata.Dataset{
		Columns:      []string{"latitude", "longitude", "name"},
		ValidCount:   30,
		InvalidCount: 4,
	}
	for i := 0; i < 30; i++ {
		ds.Records = append(ds.Records, geodata.Record{
			Latitude:  float64(i),
			Longitude: float64(i),
			Fields: map[string]string{
				"latitude":  fmt.Sprint(i),
				"longitude": fmt.Sprint(i),
				"name":      fmt.Sprintf("P%d", i),
			},
		})
	}
	pt := Preview(ds, PreviewRows)
	if len(pt.Rows) != PreviewRows {
		t.Fatalf("rows = %d, want %d", len(pt.Rows), PreviewRows)
	}
	if pt.ValidCount != 30 || pt.InvalidCount != 4 {
		t.Errorf("counts = (%d,%d), want (30,4)", pt.ValidCount, pt.InvalidCount)
	}
	if pt.Rows[0][2] != "P0" || pt.Rows[24][2] != "P24" {
		t.Errorf("row content wrong: first=%v last=%v", pt.Rows[0], pt.Rows[24])
	}

	empty := Preview(nil, PreviewRows)
	if len(empty.Rows) != 0 {
		t.Errorf("nil dataset preview = %+v", empty)
	}
}
