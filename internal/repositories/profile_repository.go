package repositories

import (
	"context"

	"dms/internal/models"
)

// Qualified columns of the profile+login join.
const (
	ColProfileID       = "user_profiles.id"
	ColProfileEmail    = "user_profiles.email"
	ColProfileFullname = "user_profiles.fullname"
	ColProfileDeleted  = "user_profiles.deleted_at"
	ColLoginUsername   = "user_logins.username"
)

// JoinOptions controls WithLogin.
type JoinOptions struct {
	// IncludeDeleted also returns soft-deleted profiles.
	IncludeDeleted bool
	Page           Page
}

// ProfileRepository defines the interface for profile data access.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	ByID(ctx context.Context, id uint) (*models.Profile, error)
	ByEmail(ctx context.Context, email string) (*models.Profile, error)
	Active(ctx context.Context, page Page) ([]models.Profile, error)
	WithLogin(ctx context.Context, where Where, opts JoinOptions) ([]models.Identity, error)
	Exists(ctx context.Context, where Where) (bool, error)
	Update(ctx context.Context, id uint, values map[string]any) (*models.Profile, error)
	Delete(ctx context.Context, id uint) error
}
