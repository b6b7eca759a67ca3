package repositories

import (
	"context"

	"dms/internal/apperr"
	"dms/internal/models"
	"dms/internal/store"
)

var profileTable = Table{
	Name:       models.Profile{}.TableName(),
	Columns:    []string{"id", "email", "fullname", "created_at", "updated_at", "deleted_at"},
	SoftDelete: true,
	Timestamps: true,
}

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	store *store.Store
	rows  *Repository[models.Profile]
}

// NewGORMProfileRepository creates a new instance of GORMProfileRepository.
func NewGORMProfileRepository(s *store.Store) *GORMProfileRepository {
	return &GORMProfileRepository{
		store: s,
		rows:  NewRepository[models.Profile](s, profileTable),
	}
}

// Create inserts a new profile.
func (r *GORMProfileRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	return r.rows.Create(ctx, profile)
}

// ByID returns the profile with the given id, soft-deleted or not.
func (r *GORMProfileRepository) ByID(ctx context.Context, id uint) (*models.Profile, error) {
	profile, err := r.rows.First(ctx, Where{Eq("id", id)})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFound("profile with ID %d not found", id)
	}
	return profile, nil
}

// ByEmail returns the active profile registered with email.
func (r *GORMProfileRepository) ByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile, err := r.rows.First(ctx, Where{Eq("email", email), IsNull(DeletedAtColumn)})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFound("profile with email %s not found", email)
	}
	return profile, nil
}

// Active lists profiles that have not been soft-deleted.
func (r *GORMProfileRepository) Active(ctx context.Context, page Page) ([]models.Profile, error) {
	return r.rows.Read(ctx, Where{IsNull(DeletedAtColumn)}, page)
}

// WithLogin joins profiles with their login rows. Conditions must use
// qualified column names (see the Col* constants).
func (r *GORMProfileRepository) WithLogin(ctx context.Context, where Where, opts JoinOptions) ([]models.Identity, error) {
	if !opts.IncludeDeleted {
		where = where.And(IsNull(ColProfileDeleted))
	}
	db, cancel := r.store.DB(ctx)
	defer cancel()

	q := db.Table(profileTable.Name).
		Select("user_profiles.id, user_profiles.email, user_profiles.fullname, user_logins.username, user_logins.last_login").
		Joins("JOIN user_logins ON user_logins.user_profile_id = user_profiles.id")
	q = opts.Page.apply(where.apply(q)).Order(ColProfileID)

	identities := make([]models.Identity, 0)
	if err := q.Scan(&identities).Error; err != nil {
		return nil, store.Classify("read profiles with logins", err)
	}
	return identities, nil
}

// Exists reports whether an active profile matches where.
func (r *GORMProfileRepository) Exists(ctx context.Context, where Where) (bool, error) {
	return r.rows.Exists(ctx, where)
}

// Update applies values to the profile with the given id.
func (r *GORMProfileRepository) Update(ctx context.Context, id uint, values map[string]any) (*models.Profile, error) {
	rows, err := r.rows.Update(ctx, Where{Eq("id", id)}, values)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("profile with ID %d not found for update", id)
	}
	return &rows[0], nil
}

// Delete permanently removes the profile row.
func (r *GORMProfileRepository) Delete(ctx context.Context, id uint) error {
	n, err := r.rows.Delete(ctx, Where{Eq("id", id)})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("profile with ID %d not found for deletion", id)
	}
	return nil
}
