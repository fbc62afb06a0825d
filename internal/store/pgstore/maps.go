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

func (s *PGStore) ListMaps(ctx context.Context, userID int) ([]models.Map, error) {
	query, args, err := psql.Select("id", "title", "description", "user_id").
		From("maps").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	maps := []models.Map{}
	if err := s.db.SelectContext(ctx, &maps, query, args...); err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return maps, nil
}

func (s *PGStore) CreateMap(ctx context.Context, m models.NewMap) (*models.Map, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", store.ErrInvalid, err)
	}

	query, args, err := psql.Insert("maps").
		Columns("title", "description", "user_id").
		Values(m.Title, m.Description, m.UserID).
		Suffix("RETURNING id, title, description, user_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var created models.Map
	if err := s.db.GetContext(ctx, &created, query, args...); err != nil {
		return nil, fmt.Errorf("create map: %w", err)
	}
	return &created, nil
}

func (s *PGStore) UpdateMap(ctx context.Context, id int, patch models.MapPatch) (*models.Map, error) {
	if patch.Title.Set && (patch.Title.Value == nil || *patch.Title.Value == "") {
		return nil, fmt.Errorf("%w: title cannot be empty", store.ErrInvalid)
	}

	b := psql.Update("maps").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, title, description, user_id")
	if patch.Title.Set {
		b = b.Set("title", *patch.Title.Value)
	}
	if patch.Description.Set {
		b = b.Set("description", patch.Description.Value)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	var updated models.Map
	if err := s.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("update map: %w", err)
	}
	return &updated, nil
}

// DeleteMap removes the map; its categories and markers go with it via the
// declared FK cascades.
func (s *PGStore) DeleteMap(ctx context.Context, id int) error {
	query, args, err := psql.Delete("maps").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
