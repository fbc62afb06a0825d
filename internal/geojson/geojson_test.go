package geojson

import (
	"encoding/json"
	"testing"

	"github.com/maartenverheul/Trek/internal/models"
	"github.com/stretchr/testify/require"
)

func TestFromMarkers(t *testing.T) {
	color := "#ff0000"
	rating := 8
	markers := []models.Marker{
		{ID: 1, Title: "Cafe", Lat: 52.372001, Lng: 4.893601, CategoryColor: &color, Rating: &rating, Notes: "good coffee"},
		{ID: 2, Title: "Bench", Lat: 52.4, Lng: 4.9},
	}

	fc := FromMarkers(markers)
	require.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	require.Equal(t, "Point", f.Geometry.Type)
	// GeoJSON order is [lng, lat].
	require.Equal(t, PointCoordinates{4.893601, 52.372001}, f.Geometry.Coordinates)
	require.Equal(t, "Cafe", f.Properties["title"])
	require.Equal(t, "#ff0000", f.Properties["categoryColor"])
	require.Equal(t, 8, f.Properties["rating"])

	_, hasNotes := fc.Features[1].Properties["notes"]
	require.False(t, hasNotes)
}

func TestFromMarkersEmpty(t *testing.T) {
	fc := FromMarkers(nil)
	b, err := json.Marshal(fc)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(b))
}
