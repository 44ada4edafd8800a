// Package dashboard runs the full load→summarize→compose pipeline and
// hands the result to whatever surface displays it. Render is pure
// given (configured paths, settings): every call rebuilds datasets,
// layers and metrics from scratch, so any request-driven host can call
// it repeatedly without state leaking between cycles.
package dashboard

import (
	"errors"
	"fmt"
	"time"

	"geomap-dashboard/pkg/datacache"
	"geomap-dashboard/pkg/geodata"
	"geomap-dashboard/pkg/layers"
	"geomap-dashboard/pkg/summary"
	"geomap-dashboard/pkg/telemetry"
)

// Fixed layer conventions: the URL dataset is always green and drawn
// first, the Store dataset blue and second. Not user-configurable.
const (
	URLLayerColor = "green"
	URLLayerLabel = "URL Data (Green)"

	StoreLayerColor = "blue"
	StoreLayerLabel = "Store Data (Blue)"
)

// Config holds the two dataset paths handed in at startup. Paths are
// plain values, never package state, so two renderers with different
// configs can coexist (tests do exactly that).
type Config struct {
	URLCSVPath   string
	StoreCSVPath string
}

// Settings are the two user toggles from the sidebar.
type Settings struct {
	Cluster bool `json:"cluster"` // group markers into clusters (default on)
	Fast    bool `json:"fast"`    // bulk point rendering for large CSVs (default off)
}

// Warning kinds, one per §7 error class that survives to the page.
const (
	WarnMissingFile = "missing-file"
	WarnParseError  = "parse-error"
	WarnNoValidRows = "no-valid-rows"
)

// Warning is a non-fatal per-dataset problem surfaced on the page
// instead of aborting the render.
type Warning struct {
	Dataset string `json:"dataset"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Snapshot is one complete render: everything the page needs, built
// fresh per call.
type Snapshot struct {
	Map          layers.MapView        `json:"map"`
	Metrics      summary.Summary       `json:"metrics"`
	PostalTop    []summary.PostalCount `json:"postalTop"`
	URLPreview   summary.PreviewTable  `json:"urlPreview"`
	StorePreview summary.PreviewTable  `json:"storePreview"`
	Warnings     []Warning             `json:"warnings"`
	Settings     Settings              `json:"settings"`
}

// Renderer wires the configured paths to the dataset cache so HTTP
// handlers stay small. Logf is optional; pass nil to stay quiet.
type Renderer struct {
	Cfg   Config
	Cache *datacache.Store
	Logf  func(string, ...any)
}

// NewRenderer constructs a Renderer with the given cache.
func NewRenderer(cfg Config, cache *datacache.Store) *Renderer {
	return &Renderer{Cfg: cfg, Cache: cache}
}

// Render executes one full cycle. A failure in one dataset's pipeline
// never prevents the other dataset or the rest of the dashboard from
// rendering; it degrades to an empty layer plus a warning.
func (r *Renderer) Render(set Settings) Snapshot {
	start := time.Now()

	urlDS, urlWarns := r.loadOne(URLLayerLabel, r.Cfg.URLCSVPath)
	storeDS, storeWarns := r.loadOne(StoreLayerLabel, r.Cfg.StoreCSVPath)

	ls := []layers.Layer{
		layers.Build(urlDS, URLLayerColor, URLLayerLabel, set.Cluster, set.Fast),
		layers.Build(storeDS, StoreLayerColor, StoreLayerLabel, set.Cluster, set.Fast),
	}

	snap := Snapshot{
		Map:          layers.Compose(ls),
		Metrics:      summary.Metrics(urlDS, storeDS),
		PostalTop:    summary.PostalCounts(urlDS, storeDS),
		URLPreview:   summary.Preview(urlDS, summary.PreviewRows),
		StorePreview: summary.Preview(storeDS, summary.PreviewRows),
		Warnings:     append(urlWarns, storeWarns...),
		Settings:     set,
	}

	telemetry.RenderDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	return snap
}

// loadOne maps the loader's failure taxonomy onto warnings and always
// returns a usable (possibly empty) dataset.
func (r *Renderer) loadOne(label, path string) (*geodata.Dataset, []Warning) {
	ds, err := r.Cache.Load(path)
	if err != nil {
		telemetry.DatasetLoadsTotal.WithLabelValues("error").Inc()
		w := Warning{Dataset: label, Kind: WarnParseError,
			Message: fmt.Sprintf("%s could not be parsed: %v", label, err)}
		if errors.Is(err, geodata.ErrMissingFile) {
			w.Kind = WarnMissingFile
			w.Message = fmt.Sprintf("%s file not found at: %s", label, path)
		}
		r.logf("%s: %v", label, err)
		return &geodata.Dataset{}, []Warning{w}
	}

	telemetry.DatasetLoadsTotal.WithLabelValues("ok").Inc()
	telemetry.RowsValidTotal.Add(float64(ds.ValidCount))
	telemetry.RowsInvalidTotal.Add(float64(ds.InvalidCount))

	if ds.Empty() {
		return ds, []Warning{{Dataset: label, Kind: WarnNoValidRows,
			Message: fmt.Sprintf("No valid rows in %s.", label)}}
	}
	return ds, nil
}

func (r *Renderer) logf(format string, v ...any) {
	if r.Logf != nil {
		r.Logf(format, v...)
	}
}
