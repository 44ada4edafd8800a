package layers

// Zoom levels are fixed: a populated map opens at a medium zoom over
// the data centroid, an empty map falls back to a low world view.
const (
	FocusZoom = 9
	WorldZoom = 2

	WorldCenterLat = 20
	WorldCenterLon = 0
)

// MapView is the composed map the page renders: center, zoom, the
// ordered overlay layers, and the fixed control set.
type MapView struct {
	CenterLat float64 `json:"centerLat"`
	CenterLon float64 `json:"centerLon"`
	Zoom      int     `json:"zoom"`
	Layers    []Layer `json:"layers"`

	Fullscreen           bool `json:"fullscreen"`
	LayerControlExpanded bool `json:"layerControlExpanded"`
}

// Compose combines the given layers into one view. Layer order is
// preserved (the caller passes URL before Store). When every layer is
// empty the view degrades to the default world center — a graceful
// empty state, never an error. Otherwise the center is the arithmetic
// mean of all coordinates across all non-empty layers.
func Compose(ls []Layer) MapView {
	view := MapView{
		CenterLat:            WorldCenterLat,
		CenterLon:            WorldCenterLon,
		Zoom:                 WorldZoom,
		Layers:               ls,
		Fullscreen:           true,
		LayerControlExpanded: true,
	}

	var sumLat, sumLon float64
	n := 0
	for _, l := range ls {
		for _, m := range l.Markers {
			sumLat += m.Lat
			sumLon += m.Lon
			n++
		}
		for _, p := range l.Points {
			sumLat += p[0]
			sumLon += p[1]
			n++
		}
	}
	if n == 0 {
		return view
	}

	view.CenterLat = sumLat / float64(n)
	view.CenterLon = sumLon / float64(n)
	view.Zoom = FocusZoom
	return view
}
