// Package layers holds the fixed base tile layer catalog and the tile URL
// templating used for layer previews.
package layers

import (
	"fmt"
	"strings"
)

// TileSource is one raster tile endpoint.
type TileSource struct {
	URL         string   `json:"url"`
	Attribution string   `json:"attribution"`
	Subdomains  []string `json:"subdomains,omitempty"`
}

// GeoJSONOverlay is a static vector overlay drawn above the tiles.
type GeoJSONOverlay struct {
	URL   string        `json:"url"`
	Style *OverlayStyle `json:"style,omitempty"`
}

type OverlayStyle struct {
	Color   string  `json:"color,omitempty"`
	Weight  int     `json:"weight,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Config describes one selectable base layer.
type Config struct {
	ID       string           `json:"id"`
	Label    string           `json:"label"`
	Base     TileSource       `json:"base"`
	Overlays []TileSource     `json:"overlays,omitempty"`
	GeoJSON  []GeoJSONOverlay `json:"geojson,omitempty"`
	// MaxNativeZoom is the highest zoom level where imagery exists; beyond
	// it tiles are upscaled client-side.
	MaxNativeZoom int `json:"maxNativeZoom"`
}

// DefaultID is the layer selected when a user has no stored preference.
const DefaultID = "osm"

var catalog = []Config{
	{
		ID:    "osm",
		Label: "OpenStreetMap",
		Base: TileSource{
			URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: "© OpenStreetMap contributors",
			Subdomains:  []string{"a", "b", "c"},
		},
		MaxNativeZoom: 19,
	},
	{
		ID:    "voyager",
		Label: "CARTO Voyager",
		Base: TileSource{
			URL:         "https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}{r}.png",
			Attribution: "© OpenStreetMap contributors © CARTO",
			Subdomains:  []string{"a", "b", "c", "d"},
		},
		MaxNativeZoom: 20,
	},
	{
		ID:    "satellite",
		Label: "Satellite",
		Base: TileSource{
			URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Tiles © Esri — Source: Esri, Maxar, Earthstar Geographics, and the GIS User Community",
		},
		MaxNativeZoom: 21,
	},
	{
		ID:    "hybrid",
		Label: "Satellite + labels",
		Base: TileSource{
			URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Tiles © Esri — Source: Esri, Maxar, Earthstar Geographics, and the GIS User Community",
		},
		Overlays: []TileSource{
			{
				URL:         "https://{s}.basemaps.cartocdn.com/dark_only_labels/{z}/{x}/{y}{r}.png",
				Attribution: "© OpenStreetMap contributors © CARTO",
				Subdomains:  []string{"a", "b", "c", "d"},
			},
		},
		GeoJSON: []GeoJSONOverlay{
			{
				URL:   "/static/geojson/country_borders_compressed.geojson",
				Style: &OverlayStyle{Color: "#ffffff", Weight: 1, Opacity: 0.8},
			},
		},
		MaxNativeZoom: 21,
	},
}

// All returns the catalog in selector order.
func All() []Config {
	out := make([]Config, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks up a layer by id.
func Get(id string) (Config, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Config{}, false
}

// Valid reports whether id names a layer in the catalog.
func Valid(id string) bool {
	_, ok := Get(id)
	return ok
}

// TileURL expands a tile URL template for one tile. The first subdomain is
// used when the template carries an {s} placeholder, and the retina suffix
// {r} collapses to nothing.
func TileURL(src TileSource, z, x, y int) string {
	sub := "a"
	if len(src.Subdomains) > 0 {
		sub = src.Subdomains[0]
	}
	r := strings.NewReplacer(
		"{s}", sub,
		"{z}", fmt.Sprintf("%d", z),
		"{x}", fmt.Sprintf("%d", x),
		"{y}", fmt.Sprintf("%d", y),
		"{r}", "",
	)
	return r.Replace(src.URL)
}
