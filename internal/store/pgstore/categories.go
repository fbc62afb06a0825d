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

// Category reads join the owning map to surface its user_id for display.
func (s *PGStore) ListCategories(ctx context.Context, mapID int) ([]models.Category, error) {
	query, args, err := psql.Select(
		"c.id", "c.title", "c.description", "c.color", "c.map_id",
		"COALESCE(m.user_id, 0) AS user_id",
	).
		From("categories c").
		LeftJoin("maps m ON m.id = c.map_id").
		Where(sq.Eq{"c.map_id": mapID}).
		OrderBy("c.created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	categories := []models.Category{}
	if err := s.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *PGStore) CreateCategory(ctx context.Context, c models.NewCategory) (*models.Category, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", store.ErrInvalid, err)
	}

	query, args, err := psql.Insert("categories").
		Columns("title", "description", "color", "map_id").
		Values(c.Title, c.Description, c.Color, c.MapID).
		Suffix("RETURNING id, title, description, color, map_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var created models.Category
	if err := s.db.GetContext(ctx, &created, query, args...); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	// The owner user id comes from the map row; it is display-only.
	if err := s.db.GetContext(ctx, &created.UserID,
		"SELECT user_id FROM maps WHERE id = $1", created.MapID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resolve category owner: %w", err)
	}
	return &created, nil
}

func (s *PGStore) UpdateCategory(ctx context.Context, id int, patch models.CategoryPatch) (*models.Category, error) {
	if patch.Title.Set && (patch.Title.Value == nil || *patch.Title.Value == "") {
		return nil, fmt.Errorf("%w: title cannot be empty", store.ErrInvalid)
	}

	b := psql.Update("categories").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, title, description, color, map_id")
	if patch.Title.Set {
		b = b.Set("title", *patch.Title.Value)
	}
	if patch.Description.Set {
		b = b.Set("description", patch.Description.Value)
	}
	if patch.Color.Set {
		b = b.Set("color", patch.Color.Value)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	var updated models.Category
	if err := s.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := s.db.GetContext(ctx, &updated.UserID,
		"SELECT user_id FROM maps WHERE id = $1", updated.MapID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resolve category owner: %w", err)
	}
	return &updated, nil
}

// DeleteCategory clears category_id on dependent markers and deletes the
// category in one transaction, so a failure in either statement leaves no
// marker pointing at a missing category.
func (s *PGStore) DeleteCategory(ctx context.Context, id int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args, err := psql.Update("markers").
		Set("category_id", nil).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"category_id": id}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("detach markers: %w", err)
	}

	query, args, err = psql.Delete("categories").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return store.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
