package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

type User struct {
	ID    int    `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

type NewUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Map struct {
	ID          int     `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description,omitempty" db:"description"`
	UserID      int     `json:"userId" db:"user_id"`
}

type NewMap struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	UserID      int     `json:"userId"`
}

type Category struct {
	ID          int     `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description,omitempty" db:"description"`
	Color       *string `json:"color,omitempty" db:"color"`
	MapID       int     `json:"mapId" db:"map_id"`
	// UserID comes from joining the owning map; it is never written back.
	UserID int `json:"userId" db:"user_id"`
}

type NewCategory struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	MapID       int     `json:"mapId"`
}

// Visitation is one dated note entry recording a visit to a marker.
type Visitation struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// Visitations is stored as a JSONB document on the marker row.
type Visitations []Visitation

func (v Visitations) Value() (driver.Value, error) {
	if v == nil {
		v = Visitations{}
	}
	return json.Marshal(v)
}

func (v *Visitations) Scan(src interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	case nil:
		*v = Visitations{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Visitations", src)
	}
}

type Marker struct {
	ID          int     `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description,omitempty" db:"description"`
	Lat         float64 `json:"lat" db:"lat"`
	Lng         float64 `json:"lng" db:"lng"`
	Country     *string `json:"country,omitempty" db:"country"`
	State       *string `json:"state,omitempty" db:"state"`
	Postal      *string `json:"postal,omitempty" db:"postal"`
	City        *string `json:"city,omitempty" db:"city"`
	Street      *string `json:"street,omitempty" db:"street"`
	HouseNumber *string `json:"houseNumber,omitempty" db:"house_number"`
	// Notes is never null; the empty string means "no notes".
	Notes       string      `json:"notes" db:"notes"`
	Rating      *int        `json:"rating,omitempty" db:"rating"`
	Visitations Visitations `json:"visitations" db:"visitations"`
	MapID       int         `json:"mapId" db:"map_id"`
	CategoryID  *int        `json:"categoryId,omitempty" db:"category_id"`
	// CategoryColor is populated from the owning category at read time.
	CategoryColor *string `json:"categoryColor,omitempty" db:"category_color"`
}

type NewMarker struct {
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	Country     *string     `json:"country,omitempty"`
	State       *string     `json:"state,omitempty"`
	Postal      *string     `json:"postal,omitempty"`
	City        *string     `json:"city,omitempty"`
	Street      *string     `json:"street,omitempty"`
	HouseNumber *string     `json:"houseNumber,omitempty"`
	Notes       string      `json:"notes"`
	Rating      *int        `json:"rating,omitempty"`
	Visitations Visitations `json:"visitations"`
	MapID       int         `json:"mapId"`
	CategoryID  *int        `json:"categoryId,omitempty"`
}

// Settings holds the per-user display preferences that survive reloads:
// the active map, the chosen base tile layer and the label visibility toggle.
type Settings struct {
	ActiveMapID      *int   `json:"activeMapId,omitempty" db:"active_map_id"`
	MapType          string `json:"mapType" db:"map_type"`
	AlwaysShowLabels bool   `json:"alwaysShowLabels" db:"always_show_labels"`
}

// RoundCoord clamps a coordinate to 6 decimal places (~0.11m) so the value
// persisted is stable across write/read round-trips.
func RoundCoord(n float64) float64 {
	return math.Round(n*1e6) / 1e6
}

// ValidateCoordinates checks that latitude and longitude are finite and
// within WGS84 bounds.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

func ValidateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < 1 || *rating > 10 {
		return fmt.Errorf("rating must be between 1 and 10")
	}
	return nil
}

func (m NewMarker) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if m.MapID <= 0 {
		return fmt.Errorf("mapId is required")
	}
	if err := ValidateCoordinates(m.Lat, m.Lng); err != nil {
		return err
	}
	return ValidateRating(m.Rating)
}

func (m NewMap) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if m.UserID <= 0 {
		return fmt.Errorf("userId is required")
	}
	return nil
}

func (c NewCategory) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if c.MapID <= 0 {
		return fmt.Errorf("mapId is required")
	}
	return nil
}
