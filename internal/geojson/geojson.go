// Package geojson converts markers into GeoJSON FeatureCollections.
package geojson

import (
	"github.com/maartenverheul/Trek/internal/models"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// PointCoordinates is [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// FromMarkers converts a marker list to a FeatureCollection of Points.
// GeoJSON wants lng before lat.
func FromMarkers(markers []models.Marker) *FeatureCollection {
	features := make([]Feature, 0, len(markers))
	for _, m := range markers {
		props := map[string]interface{}{
			"id":    m.ID,
			"title": m.Title,
		}
		if m.Description != nil {
			props["description"] = *m.Description
		}
		if m.CategoryID != nil {
			props["categoryId"] = *m.CategoryID
		}
		if m.CategoryColor != nil {
			props["categoryColor"] = *m.CategoryColor
		}
		if m.Rating != nil {
			props["rating"] = *m.Rating
		}
		if m.Notes != "" {
			props["notes"] = m.Notes
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: PointCoordinates{m.Lng, m.Lat},
			},
			Properties: props,
		})
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}
