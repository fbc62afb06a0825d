package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/maartenverheul/Trek/internal/models"
	"github.com/maartenverheul/Trek/internal/store"
)

const defaultMapTitle = "My First Map"

func (s *PGStore) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	query, args, err := psql.Select("id", "name", "email").
		From("users").
		Where(sq.Eq{"name": name}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get user by name: %w", err)
	}
	return &u, nil
}

func (s *PGStore) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query, args, err := psql.Select("id", "name", "email").
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// SignInUser returns the user with the given name. A first sign-in creates
// the user together with a starter map in one transaction, so a failure in
// either insert leaves nothing behind.
func (s *PGStore) SignInUser(ctx context.Context, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: username is required", store.ErrInvalid)
	}

	if u, err := s.GetUserByName(ctx, name); err == nil {
		return u, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// Sign-in only carries a username, so the unique email is derived from it.
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@trek.local"

	query, args, err := psql.Insert("users").
		Columns("name", "email").
		Values(name, email).
		Suffix("RETURNING id, name, email").
		ToSql()
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := tx.GetContext(ctx, &u, query, args...); err != nil {
		// Different usernames can derive the same email ("Demo User" and
		// "demo.user" both become demo.user@trek.local).
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: username %q is too similar to an existing user", store.ErrInvalid, name)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	query, args, err = psql.Insert("maps").
		Columns("title", "description", "user_id").
		Values(defaultMapTitle, "Getting started map", u.ID).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("create default map: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().Int("user_id", u.ID).Str("name", u.Name).Msg("created user on first sign-in")
	return &u, nil
}
