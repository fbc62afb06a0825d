// Package pgstore implements the Store interface over PostgreSQL + PostGIS.
package pgstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const ddl = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS users (
	id          SERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL UNIQUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS maps (
	id          SERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT,
	user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS categories (
	id          SERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT,
	color       TEXT,
	map_id      INTEGER NOT NULL REFERENCES maps(id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS markers (
	id           SERIAL PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT,
	country      TEXT,
	state        TEXT,
	postal       TEXT,
	city         TEXT,
	street       TEXT,
	house_number TEXT,
	notes        TEXT NOT NULL DEFAULT '',
	rating       INTEGER CHECK (rating BETWEEN 1 AND 10),
	visitations  JSONB NOT NULL DEFAULT '[]',
	geom         geometry(Point, 4326) NOT NULL,
	map_id       INTEGER NOT NULL REFERENCES maps(id) ON DELETE CASCADE,
	category_id  INTEGER REFERENCES categories(id) ON DELETE SET NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_settings (
	user_id            INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	active_map_id      INTEGER REFERENCES maps(id) ON DELETE SET NULL,
	map_type           TEXT NOT NULL DEFAULT 'osm',
	always_show_labels BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_maps_user_id        ON maps(user_id);
CREATE INDEX IF NOT EXISTS idx_categories_map_id   ON categories(map_id);
CREATE INDEX IF NOT EXISTS idx_markers_map_id      ON markers(map_id);
CREATE INDEX IF NOT EXISTS idx_markers_category_id ON markers(category_id);
`

// PGStore implements the Store interface for PostgreSQL.
type PGStore struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// New opens a connection pool, verifies it and applies the schema.
func New(databaseURL string, log zerolog.Logger) (*PGStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	s := &PGStore{db: db, log: log}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an existing connection without touching the schema.
// Used by tests.
func NewWithDB(db *sqlx.DB, log zerolog.Logger) *PGStore {
	return &PGStore{db: db, log: log}
}

func (s *PGStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *PGStore) Close() error {
	return s.db.Close()
}
