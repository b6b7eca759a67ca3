package repositories

import (
	"context"
	"time"

	"dms/internal/models"
)

// LoginRepository defines the interface for login data access.
type LoginRepository interface {
	Create(ctx context.Context, login *models.Login) (*models.Login, error)
	ByUsername(ctx context.Context, username string) (*models.Login, error)
	ByProfileID(ctx context.Context, profileID uint) (*models.Login, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	RecordLogin(ctx context.Context, profileID uint, at time.Time) error
	Update(ctx context.Context, profileID uint, values map[string]any) (*models.Login, error)
	DeleteByProfileID(ctx context.Context, profileID uint) error
}
