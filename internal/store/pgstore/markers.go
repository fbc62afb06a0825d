package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/maartenverheul/Trek/internal/models"
	"github.com/maartenverheul/Trek/internal/store"
)

// The point geometry is decomposed into two numeric fields at the database
// boundary; this alias list is the single place that contract lives.
const markerReturning = `RETURNING id, title, description,
	ST_Y(geom) AS lat, ST_X(geom) AS lng,
	country, state, postal, city, street, house_number,
	notes, rating, visitations, map_id, category_id`

func (s *PGStore) ListMarkers(ctx context.Context, mapID int) ([]models.Marker, error) {
	query, args, err := psql.Select(
		"m.id", "m.title", "m.description",
		"ST_Y(m.geom) AS lat", "ST_X(m.geom) AS lng",
		"m.country", "m.state", "m.postal", "m.city", "m.street", "m.house_number",
		"m.notes", "m.rating", "m.visitations", "m.map_id", "m.category_id",
		"c.color AS category_color",
	).
		From("markers m").
		LeftJoin("categories c ON c.id = m.category_id").
		Where(sq.Eq{"m.map_id": mapID}).
		OrderBy("m.created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	markers := []models.Marker{}
	if err := s.db.SelectContext(ctx, &markers, query, args...); err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}
	return markers, nil
}

func (s *PGStore) CreateMarker(ctx context.Context, m models.NewMarker) (*models.Marker, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", store.ErrInvalid, err)
	}
	if err := s.checkCategoryMap(ctx, m.CategoryID, m.MapID); err != nil {
		return nil, err
	}

	lat := models.RoundCoord(m.Lat)
	lng := models.RoundCoord(m.Lng)

	query, args, err := psql.Insert("markers").
		Columns("title", "description", "country", "state", "postal", "city",
			"street", "house_number", "notes", "rating", "visitations",
			"geom", "map_id", "category_id").
		Values(m.Title, m.Description, m.Country, m.State, m.Postal, m.City,
			m.Street, m.HouseNumber, m.Notes, m.Rating, m.Visitations,
			sq.Expr("ST_SetSRID(ST_MakePoint(?, ?), 4326)", lng, lat),
			m.MapID, m.CategoryID).
		Suffix(markerReturning).
		ToSql()
	if err != nil {
		return nil, err
	}

	var created models.Marker
	if err := s.db.GetContext(ctx, &created, query, args...); err != nil {
		return nil, fmt.Errorf("create marker: %w", err)
	}
	if err := s.attachCategoryColor(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateMarker replaces the marker's editable fields wholesale and refreshes
// updated_at.
func (s *PGStore) UpdateMarker(ctx context.Context, id int, m models.NewMarker) (*models.Marker, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", store.ErrInvalid, err)
	}

	// The marker's map never changes on update, so the category is checked
	// against the stored map_id rather than whatever the request claims.
	var storedMapID int
	err := s.db.GetContext(ctx, &storedMapID,
		"SELECT map_id FROM markers WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get marker map: %w", err)
	}
	if err := s.checkCategoryMap(ctx, m.CategoryID, storedMapID); err != nil {
		return nil, err
	}

	lat := models.RoundCoord(m.Lat)
	lng := models.RoundCoord(m.Lng)

	query, args, err := psql.Update("markers").
		Set("title", m.Title).
		Set("description", m.Description).
		Set("country", m.Country).
		Set("state", m.State).
		Set("postal", m.Postal).
		Set("city", m.City).
		Set("street", m.Street).
		Set("house_number", m.HouseNumber).
		Set("notes", m.Notes).
		Set("rating", m.Rating).
		Set("visitations", m.Visitations).
		Set("geom", sq.Expr("ST_SetSRID(ST_MakePoint(?, ?), 4326)", lng, lat)).
		Set("category_id", m.CategoryID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix(markerReturning).
		ToSql()
	if err != nil {
		return nil, err
	}

	var updated models.Marker
	if err := s.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("update marker: %w", err)
	}
	if err := s.attachCategoryColor(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *PGStore) DeleteMarker(ctx context.Context, id int) error {
	query, args, err := psql.Delete("markers").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete marker: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// checkCategoryMap enforces that a marker's category, when set, belongs to
// the same map as the marker.
func (s *PGStore) checkCategoryMap(ctx context.Context, categoryID *int, mapID int) error {
	if categoryID == nil {
		return nil
	}

	var catMapID int
	err := s.db.GetContext(ctx, &catMapID,
		"SELECT map_id FROM categories WHERE id = $1", *categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: category %d does not exist", store.ErrInvalid, *categoryID)
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if catMapID != mapID {
		return fmt.Errorf("%w: category %d belongs to a different map", store.ErrInvalid, *categoryID)
	}
	return nil
}

// attachCategoryColor resolves the read-only categoryColor after a write.
// List queries get it from the join instead.
func (s *PGStore) attachCategoryColor(ctx context.Context, m *models.Marker) error {
	if m.CategoryID == nil {
		return nil
	}
	err := s.db.GetContext(ctx, &m.CategoryColor,
		"SELECT color FROM categories WHERE id = $1", *m.CategoryID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("resolve category color: %w", err)
	}
	return nil
}
