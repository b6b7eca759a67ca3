package repositories

import (
	"context"
	"time"

	"dms/internal/apperr"
	"dms/internal/models"
	"dms/internal/store"
)

var loginTable = Table{
	Name:    models.Login{}.TableName(),
	Columns: []string{"id", "user_profile_id", "username", "password", "last_login"},
}

// GORMLoginRepository is a GORM implementation of LoginRepository.
type GORMLoginRepository struct {
	store *store.Store
	rows  *Repository[models.Login]
}

// NewGORMLoginRepository creates a new instance of GORMLoginRepository.
func NewGORMLoginRepository(s *store.Store) *GORMLoginRepository {
	return &GORMLoginRepository{
		store: s,
		rows:  NewRepository[models.Login](s, loginTable),
	}
}

// Create inserts a login row. The referenced profile must exist.
func (r *GORMLoginRepository) Create(ctx context.Context, login *models.Login) (*models.Login, error) {
	return r.rows.Create(ctx, login)
}

// ByUsername returns the login with the given username whose profile is active.
func (r *GORMLoginRepository) ByUsername(ctx context.Context, username string) (*models.Login, error) {
	logins, err := r.activeLogins(ctx, Where{Eq(ColLoginUsername, username)}, 1)
	if err != nil {
		return nil, err
	}
	if len(logins) == 0 {
		return nil, apperr.NotFound("login with username %s not found", username)
	}
	return &logins[0], nil
}

// ByProfileID returns the login owned by the profile.
func (r *GORMLoginRepository) ByProfileID(ctx context.Context, profileID uint) (*models.Login, error) {
	login, err := r.rows.First(ctx, Where{Eq("user_profile_id", profileID)})
	if err != nil {
		return nil, err
	}
	if login == nil {
		return nil, apperr.NotFound("login for profile %d not found", profileID)
	}
	return login, nil
}

// UsernameTaken reports whether an active profile already uses username.
// Logins of soft-deleted profiles do not count.
func (r *GORMLoginRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	logins, err := r.activeLogins(ctx, Where{Eq(ColLoginUsername, username)}, 1)
	if err != nil {
		return false, err
	}
	return len(logins) > 0, nil
}

// RecordLogin stamps last_login on the login owned by the profile.
func (r *GORMLoginRepository) RecordLogin(ctx context.Context, profileID uint, at time.Time) error {
	_, err := r.Update(ctx, profileID, map[string]any{"last_login": at})
	return err
}

// Update applies values to the login owned by the profile.
func (r *GORMLoginRepository) Update(ctx context.Context, profileID uint, values map[string]any) (*models.Login, error) {
	rows, err := r.rows.Update(ctx, Where{Eq("user_profile_id", profileID)}, values)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("login for profile %d not found for update", profileID)
	}
	return &rows[0], nil
}

// DeleteByProfileID permanently removes the login owned by the profile.
func (r *GORMLoginRepository) DeleteByProfileID(ctx context.Context, profileID uint) error {
	_, err := r.rows.Delete(ctx, Where{Eq("user_profile_id", profileID)})
	return err
}

func (r *GORMLoginRepository) activeLogins(ctx context.Context, where Where, limit int) ([]models.Login, error) {
	db, cancel := r.store.DB(ctx)
	defer cancel()

	q := db.Table(loginTable.Name).
		Select("user_logins.*").
		Joins("JOIN user_profiles ON user_profiles.id = user_logins.user_profile_id")
	q = Page{Limit: limit}.apply(where.And(IsNull(ColProfileDeleted)).apply(q)).Order("user_logins.id")

	logins := make([]models.Login, 0)
	if err := q.Find(&logins).Error; err != nil {
		return nil, store.Classify("read logins", err)
	}
	return logins, nil
}
