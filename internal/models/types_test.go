package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundCoord(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{52.372001234, 52.372001},
		{4.893601234, 4.893601},
		{-0.0000004, -0.0},
		{-73.9857612345, -73.985761},
		{52.5, 52.5},
		{0, 0},
	}
	for _, c := range cases {
		if got := RoundCoord(c.in); got != c.want {
			t.Errorf("RoundCoord(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	require.NoError(t, ValidateCoordinates(52.372001, 4.893601))
	require.NoError(t, ValidateCoordinates(-90, 180))
	require.Error(t, ValidateCoordinates(90.1, 0))
	require.Error(t, ValidateCoordinates(0, -180.5))
	require.Error(t, ValidateCoordinates(nan(), 0))
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestValidateRating(t *testing.T) {
	require.NoError(t, ValidateRating(nil))
	for _, ok := range []int{1, 5, 10} {
		v := ok
		require.NoError(t, ValidateRating(&v))
	}
	for _, bad := range []int{0, 11, -3} {
		v := bad
		require.Error(t, ValidateRating(&v), "rating %d should fail", bad)
	}
}

func TestNewMarkerValidate(t *testing.T) {
	m := NewMarker{Title: "Cafe", Lat: 52.37, Lng: 4.89, MapID: 1}
	require.NoError(t, m.Validate())

	m.Title = "   "
	require.Error(t, m.Validate())

	m.Title = "Cafe"
	m.MapID = 0
	require.Error(t, m.Validate())

	m.MapID = 1
	m.Lat = 91
	require.Error(t, m.Validate())
}

func TestVisitationsRoundTrip(t *testing.T) {
	v := Visitations{{Date: "2026-08-01", Text: "first visit"}}
	raw, err := v.Value()
	require.NoError(t, err)

	var got Visitations
	require.NoError(t, got.Scan(raw))
	require.Equal(t, v, got)
}

func TestVisitationsValueNilIsEmptyList(t *testing.T) {
	var v Visitations
	raw, err := v.Value()
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(raw.([]byte)))
}

func TestVisitationsScanNull(t *testing.T) {
	v := Visitations{{Date: "2026-01-01", Text: "stale"}}
	require.NoError(t, v.Scan(nil))
	require.Empty(t, v)
}

func TestFieldUnmarshal(t *testing.T) {
	var p MapPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Trip"}`), &p))
	require.True(t, p.Title.Set)
	require.NotNil(t, p.Title.Value)
	require.Equal(t, "Trip", *p.Title.Value)
	// Absent key leaves the field untouched.
	require.False(t, p.Description.Set)

	var q MapPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &q))
	require.True(t, q.Description.Set)
	require.Nil(t, q.Description.Value)
}
