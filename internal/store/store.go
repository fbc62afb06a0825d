package store

import (
	"context"
	"errors"

	"github.com/maartenverheul/Trek/internal/models"
)

// ErrNotFound is returned when the targeted row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalid wraps validation failures (bad coordinates, out-of-range rating,
// a category from a different map) so callers can distinguish them from
// database errors.
var ErrInvalid = errors.New("invalid input")

// Store defines the interface for all database operations.
type Store interface {
	// Users
	GetUserByName(ctx context.Context, name string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	// SignInUser returns the user with the given name, creating it together
	// with a default map in one transaction if it does not exist yet.
	SignInUser(ctx context.Context, name string) (*models.User, error)

	// Maps
	ListMaps(ctx context.Context, userID int) ([]models.Map, error)
	CreateMap(ctx context.Context, m models.NewMap) (*models.Map, error)
	UpdateMap(ctx context.Context, id int, patch models.MapPatch) (*models.Map, error)
	DeleteMap(ctx context.Context, id int) error

	// Categories
	ListCategories(ctx context.Context, mapID int) ([]models.Category, error)
	CreateCategory(ctx context.Context, c models.NewCategory) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int, patch models.CategoryPatch) (*models.Category, error)
	// DeleteCategory clears category_id on dependent markers and removes the
	// category in a single transaction.
	DeleteCategory(ctx context.Context, id int) error

	// Markers
	ListMarkers(ctx context.Context, mapID int) ([]models.Marker, error)
	CreateMarker(ctx context.Context, m models.NewMarker) (*models.Marker, error)
	UpdateMarker(ctx context.Context, id int, m models.NewMarker) (*models.Marker, error)
	DeleteMarker(ctx context.Context, id int) error

	// Settings
	GetSettings(ctx context.Context, userID int) (*models.Settings, error)
	PutSettings(ctx context.Context, userID int, s models.Settings) (*models.Settings, error)

	Close() error
}
