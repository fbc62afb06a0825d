package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maartenverheul/Trek/internal/layers"
	"github.com/maartenverheul/Trek/internal/models"
)

// GetSettings returns the user's stored display preferences, or the defaults
// when nothing has been stored yet.
func (s *PGStore) GetSettings(ctx context.Context, userID int) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.GetContext(ctx, &settings,
		"SELECT active_map_id, map_type, always_show_labels FROM user_settings WHERE user_id = $1",
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Settings{MapType: layers.DefaultID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

// PutSettings stores the full preference set for a user, replacing whatever
// was there before.
func (s *PGStore) PutSettings(ctx context.Context, userID int, settings models.Settings) (*models.Settings, error) {
	const upsert = `
		INSERT INTO user_settings (user_id, active_map_id, map_type, always_show_labels, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			active_map_id = EXCLUDED.active_map_id,
			map_type = EXCLUDED.map_type,
			always_show_labels = EXCLUDED.always_show_labels,
			updated_at = NOW()
		RETURNING active_map_id, map_type, always_show_labels`

	var stored models.Settings
	if err := s.db.GetContext(ctx, &stored, upsert,
		userID, settings.ActiveMapID, settings.MapType, settings.AlwaysShowLabels); err != nil {
		return nil, fmt.Errorf("put settings: %w", err)
	}
	return &stored, nil
}
