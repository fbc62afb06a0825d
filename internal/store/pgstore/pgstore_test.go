package pgstore

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maartenverheul/Trek/internal/models"
	"github.com/maartenverheul/Trek/internal/store"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(sqlx.NewDb(db, "postgres"), zerolog.Nop()), mock
}

func markerColumns() []string {
	return []string{
		"id", "title", "description", "lat", "lng",
		"country", "state", "postal", "city", "street", "house_number",
		"notes", "rating", "visitations", "map_id", "category_id",
	}
}

func TestCreateMarkerRoundsCoordinates(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO markers")).
		WithArgs("Cafe", nil, nil, nil, nil, nil, nil, nil, "", nil,
			[]byte("[]"), 4.893601, 52.372001, 1, nil).
		WillReturnRows(sqlmock.NewRows(markerColumns()).
			AddRow(7, "Cafe", nil, 52.372001, 4.893601,
				nil, nil, nil, nil, nil, nil, "", nil, []byte("[]"), 1, nil))

	created, err := s.CreateMarker(context.Background(), models.NewMarker{
		Title: "Cafe",
		Lat:   52.372001234,
		Lng:   4.893601234,
		MapID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 52.372001, created.Lat)
	require.Equal(t, 4.893601, created.Lng)
	require.Equal(t, "", created.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMarkerRejectsBadRating(t *testing.T) {
	s, _ := newMockStore(t)

	for _, bad := range []int{0, 11} {
		rating := bad
		_, err := s.CreateMarker(context.Background(), models.NewMarker{
			Title:  "Cafe",
			Lat:    52.37,
			Lng:    4.89,
			MapID:  1,
			Rating: &rating,
		})
		require.ErrorIs(t, err, store.ErrInvalid, "rating %d", bad)
	}
}

func TestCreateMarkerCategoryFromOtherMap(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT map_id FROM categories WHERE id = $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"map_id"}).AddRow(2))

	categoryID := 5
	_, err := s.CreateMarker(context.Background(), models.NewMarker{
		Title:      "Cafe",
		Lat:        52.37,
		Lng:        4.89,
		MapID:      1,
		CategoryID: &categoryID,
	})
	require.ErrorIs(t, err, store.ErrInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMarkerChecksCategoryAgainstStoredMap(t *testing.T) {
	s, mock := newMockStore(t)

	// Marker 7 lives on map 1; the body claims map 2 to sneak in one of
	// map 2's categories. Only the SELECTs run, never the UPDATE.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT map_id FROM markers WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"map_id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT map_id FROM categories WHERE id = $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"map_id"}).AddRow(2))

	categoryID := 5
	_, err := s.UpdateMarker(context.Background(), 7, models.NewMarker{
		Title:      "Cafe",
		Lat:        52.37,
		Lng:        4.89,
		MapID:      2,
		CategoryID: &categoryID,
	})
	require.ErrorIs(t, err, store.ErrInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMarkerWritesRoundedCoordinates(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT map_id FROM markers WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"map_id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT map_id FROM categories WHERE id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"map_id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE markers SET")).
		WithArgs("Cafe", nil, nil, nil, nil, nil, nil, nil, "", nil,
			[]byte("[]"), 4.893601, 52.372001, 3, 7).
		WillReturnRows(sqlmock.NewRows(markerColumns()).
			AddRow(7, "Cafe", nil, 52.372001, 4.893601,
				nil, nil, nil, nil, nil, nil, "", nil, []byte("[]"), 1, 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT color FROM categories WHERE id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"color"}).AddRow("#ff0000"))

	categoryID := 3
	updated, err := s.UpdateMarker(context.Background(), 7, models.NewMarker{
		Title:      "Cafe",
		Lat:        52.372001234,
		Lng:        4.893601234,
		MapID:      1,
		CategoryID: &categoryID,
	})
	require.NoError(t, err)
	require.Equal(t, 1, updated.MapID)
	require.Equal(t, "#ff0000", *updated.CategoryColor)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMarkerRejectsBadRating(t *testing.T) {
	s, mock := newMockStore(t)

	// Validation fails before any statement reaches the database.
	rating := 11
	_, err := s.UpdateMarker(context.Background(), 7, models.NewMarker{
		Title:  "Cafe",
		Lat:    52.37,
		Lng:    4.89,
		MapID:  1,
		Rating: &rating,
	})
	require.ErrorIs(t, err, store.ErrInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMarkerNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT map_id FROM markers WHERE id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := s.UpdateMarker(context.Background(), 99, models.NewMarker{
		Title: "Cafe",
		Lat:   52.37,
		Lng:   4.89,
		MapID: 1,
	})
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListMarkersSurfacesCategoryColor(t *testing.T) {
	s, mock := newMockStore(t)

	columns := append(markerColumns(), "category_color")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN categories c ON c.id = m.category_id")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(7, "Cafe", nil, 52.372001, 4.893601,
				nil, nil, nil, nil, nil, nil, "", nil, []byte("[]"), 1, 3, "#ff0000").
			AddRow(8, "Bench", nil, 52.4, 4.9,
				nil, nil, nil, nil, nil, nil, "", nil, []byte("[]"), 1, nil, nil))

	markers, err := s.ListMarkers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, markers, 2)
	require.NotNil(t, markers[0].CategoryColor)
	require.Equal(t, "#ff0000", *markers[0].CategoryColor)
	require.Nil(t, markers[1].CategoryColor)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMapSparsePatch(t *testing.T) {
	s, mock := newMockStore(t)

	// Only the provided title is written; description stays untouched.
	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE maps SET updated_at = NOW(), title = $1 WHERE id = $2 RETURNING id, title, description, user_id")).
		WithArgs("Trip", 4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "user_id"}).
			AddRow(4, "Trip", "old description", 1))

	var patch models.MapPatch
	title := "Trip"
	patch.Title.Set = true
	patch.Title.Value = &title

	updated, err := s.UpdateMap(context.Background(), 4, patch)
	require.NoError(t, err)
	require.Equal(t, "Trip", updated.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMapClearsDescriptionOnExplicitNull(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE maps SET updated_at = NOW(), description = $1 WHERE id = $2 RETURNING id, title, description, user_id")).
		WithArgs(nil, 4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "user_id"}).
			AddRow(4, "Trip", nil, 1))

	var patch models.MapPatch
	patch.Description.Set = true

	updated, err := s.UpdateMap(context.Background(), 4, patch)
	require.NoError(t, err)
	require.Nil(t, updated.Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMapNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE maps")).
		WillReturnError(sql.ErrNoRows)

	var patch models.MapPatch
	title := "Trip"
	patch.Title.Set = true
	patch.Title.Value = &title

	_, err := s.UpdateMap(context.Background(), 99, patch)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteCategoryTransaction(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE markers SET category_id = $1, updated_at = NOW() WHERE category_id = $2")).
		WithArgs(nil, 3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteCategory(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategoryRollsBackWhenMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE markers")).
		WithArgs(nil, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.DeleteCategory(context.Background(), 99)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignInUserCreatesUserAndDefaultMap(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email FROM users WHERE name = $1")).
		WithArgs("Demo User").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name,email) VALUES ($1,$2) RETURNING id, name, email")).
		WithArgs("Demo User", "demo.user@trek.local").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "Demo User", "demo.user@trek.local"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO maps (title,description,user_id)")).
		WithArgs("My First Map", "Getting started map", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	u, err := s.SignInUser(context.Background(), "Demo User")
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignInUserExisting(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email FROM users WHERE name = $1")).
		WithArgs("Demo User").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "Demo User", "demo.user@trek.local"))

	u, err := s.SignInUser(context.Background(), "Demo User")
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignInUserDerivedEmailCollision(t *testing.T) {
	s, mock := newMockStore(t)

	// "Demo User" and "demo.user" derive the same email; the second first
	// sign-in trips the unique constraint and must surface as invalid input,
	// not a database error.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email FROM users WHERE name = $1")).
		WithArgs("demo.user").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name,email) VALUES ($1,$2) RETURNING id, name, email")).
		WithArgs("demo.user", "demo.user@trek.local").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := s.SignInUser(context.Background(), "demo.user")
	require.ErrorIs(t, err, store.ErrInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSettingsDefaults(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_settings WHERE user_id = $1")).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	settings, err := s.GetSettings(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "osm", settings.MapType)
	require.False(t, settings.AlwaysShowLabels)
	require.Nil(t, settings.ActiveMapID)
}
