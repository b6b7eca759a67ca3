package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"dms/internal/apperr"
	"dms/internal/models"
	"dms/internal/repositories"
	"dms/pkg/password"
)

// ProfileService handles business logic related to profiles and their logins.
type ProfileService struct {
	tx        Transactor
	profiles  repositories.ProfileRepository
	logins    repositories.LoginRepository
	documents repositories.DocumentRepository
	hasher    password.Hasher
	events    EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewProfileService creates a new ProfileService. events may be nil.
func NewProfileService(
	tx Transactor,
	profiles repositories.ProfileRepository,
	logins repositories.LoginRepository,
	documents repositories.DocumentRepository,
	hasher password.Hasher,
	events EventPublisher,
	log *zap.Logger,
) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{
		tx:        tx,
		profiles:  profiles,
		logins:    logins,
		documents: documents,
		hasher:    hasher,
		events:    events,
		log:       log.Named("profiles"),
		now:       time.Now,
	}
}

// RegisterProfile creates a profile and its login as one unit. Email and
// username must not be in use by an active profile.
func (s *ProfileService) RegisterProfile(ctx context.Context, in models.Registration) (*models.Identity, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return nil, observe(s.log, "register profile", err)
	}

	hashed, err := hashPassword(s.hasher, in.Password)
	if err != nil {
		return nil, observe(s.log, "register profile", err)
	}

	var identity *models.Identity
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, in.Email); err != nil {
			return err
		}
		if err := s.ensureUsernameFree(ctx, in.Username); err != nil {
			return err
		}

		profile, err := s.profiles.Create(ctx, &models.Profile{Email: in.Email, Fullname: in.Fullname})
		if err != nil {
			return err
		}
		login, err := s.logins.Create(ctx, &models.Login{ProfileID: profile.ID, Username: in.Username, Password: hashed})
		if err != nil {
			return err
		}
		identity = &models.Identity{
			ID:       profile.ID,
			Email:    profile.Email,
			Fullname: profile.Fullname,
			Username: login.Username,
		}
		return nil
	})
	if err != nil {
		return nil, observe(s.log, "register profile", err)
	}

	s.log.Info("profile registered", zap.Uint("profile_id", identity.ID))
	publish(ctx, s.log, s.events, EventProfileRegistered, identity)
	return identity, nil
}

// FetchActiveProfile returns the joined profile and login view of an active profile.
func (s *ProfileService) FetchActiveProfile(ctx context.Context, id uint) (*models.Identity, error) {
	identity, err := s.activeIdentity(ctx, id)
	return identity, observe(s.log, "fetch profile", err)
}

// ListActiveProfiles returns every active profile joined with its login, ordered by id.
func (s *ProfileService) ListActiveProfiles(ctx context.Context, page repositories.Page) ([]models.Identity, error) {
	identities, err := s.profiles.WithLogin(ctx, repositories.Where{}, repositories.JoinOptions{Page: page})
	if err != nil {
		return nil, observe(s.log, "list profiles", err)
	}
	return identities, nil
}

// UpdateProfile applies the set fields of upd to the profile and its login.
// Changing email or username re-runs the uniqueness checks.
func (s *ProfileService) UpdateProfile(ctx context.Context, id uint, upd models.ProfileUpdate) (*models.Identity, error) {
	if upd.Empty() {
		return nil, observe(s.log, "update profile", apperr.Validation("no fields to update"))
	}
	if err := validateInput(upd); err != nil {
		return nil, observe(s.log, "update profile", err)
	}

	profileValues := map[string]any{}
	loginValues := map[string]any{}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if email == "" {
			return nil, observe(s.log, "update profile", apperr.Validation("email must not be empty"))
		}
		profileValues["email"] = email
	}
	if upd.Fullname != nil {
		profileValues["fullname"] = *upd.Fullname
	}
	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		if username == "" {
			return nil, observe(s.log, "update profile", apperr.Validation("username must not be empty"))
		}
		loginValues["username"] = username
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, observe(s.log, "update profile", apperr.Validation("password must not be empty"))
		}
		hashed, err := hashPassword(s.hasher, *upd.Password)
		if err != nil {
			return nil, observe(s.log, "update profile", err)
		}
		loginValues["password"] = hashed
	}

	var identity *models.Identity
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.activeIdentity(ctx, id)
		if err != nil {
			return err
		}
		if email, ok := profileValues["email"].(string); ok && email != current.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return err
			}
		}
		if username, ok := loginValues["username"].(string); ok && username != current.Username {
			if err := s.ensureUsernameFree(ctx, username); err != nil {
				return err
			}
		}

		if len(profileValues) > 0 {
			if _, err := s.profiles.Update(ctx, id, profileValues); err != nil {
				return err
			}
		}
		if len(loginValues) > 0 {
			if _, err := s.logins.Update(ctx, id, loginValues); err != nil {
				return err
			}
		}

		identity, err = s.activeIdentity(ctx, id)
		return err
	})
	if err != nil {
		return nil, observe(s.log, "update profile", err)
	}

	publish(ctx, s.log, s.events, EventProfileUpdated, identity)
	return identity, nil
}

// SoftDeleteProfile marks an active profile as deleted. Deleting an already
// deleted profile reports ErrNotFound.
func (s *ProfileService) SoftDeleteProfile(ctx context.Context, id uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		active, err := s.profiles.Exists(ctx, repositories.Where{repositories.Eq("id", id)})
		if err != nil {
			return err
		}
		if !active {
			return apperr.NotFound("profile with ID %d not found", id)
		}
		_, err = s.profiles.Update(ctx, id, map[string]any{repositories.DeletedAtColumn: s.now().UTC()})
		return err
	})
	if err != nil {
		return observe(s.log, "delete profile", err)
	}

	s.log.Info("profile soft-deleted", zap.Uint("profile_id", id))
	publish(ctx, s.log, s.events, EventProfileDeleted, map[string]uint{"id": id})
	return nil
}

// PurgeProfile permanently removes a soft-deleted profile and its login.
// Active profiles and profiles still referenced by a document are kept.
func (s *ProfileService) PurgeProfile(ctx context.Context, id uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		profile, err := s.profiles.ByID(ctx, id)
		if err != nil {
			return err
		}
		if profile.IsActive() {
			return apperr.Conflict("profile %d must be deleted before it is purged", id)
		}
		referenced, err := s.documents.ReferencesAuthor(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return apperr.Conflict("profile %d is still referenced by documents", id)
		}
		if err := s.logins.DeleteByProfileID(ctx, id); err != nil {
			return err
		}
		return s.profiles.Delete(ctx, id)
	})
	if err != nil {
		return observe(s.log, "purge profile", err)
	}

	s.log.Info("profile purged", zap.Uint("profile_id", id))
	publish(ctx, s.log, s.events, EventProfilePurged, map[string]uint{"id": id})
	return nil
}

// Authenticate checks username and password against the active logins and
// stamps last_login on success.
func (s *ProfileService) Authenticate(ctx context.Context, username, plaintext string) (*models.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || plaintext == "" {
		return nil, observe(s.log, "authenticate", apperr.Validation("username and password are required"))
	}

	login, err := s.logins.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Unknown usernames and wrong passwords are indistinguishable to the caller.
			return nil, observe(s.log, "authenticate", fmt.Errorf("%w: unknown username %q", apperr.ErrAuthentication, username))
		}
		return nil, observe(s.log, "authenticate", err)
	}
	if !s.hasher.Verify(plaintext, login.Password) {
		return nil, observe(s.log, "authenticate", fmt.Errorf("%w: password mismatch for %q", apperr.ErrAuthentication, username))
	}

	if err := s.logins.RecordLogin(ctx, login.ProfileID, s.now().UTC()); err != nil {
		return nil, observe(s.log, "authenticate", err)
	}
	return s.FetchActiveProfile(ctx, login.ProfileID)
}

func (s *ProfileService) activeIdentity(ctx context.Context, id uint) (*models.Identity, error) {
	identities, err := s.profiles.WithLogin(ctx,
		repositories.Where{repositories.Eq(repositories.ColProfileID, id)},
		repositories.JoinOptions{Page: repositories.Page{Limit: 1}},
	)
	if err != nil {
		return nil, err
	}
	if len(identities) == 0 {
		return nil, apperr.NotFound("profile with ID %d not found", id)
	}
	return &identities[0], nil
}

func (s *ProfileService) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := s.profiles.Exists(ctx, repositories.Where{repositories.Eq("email", email)})
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("email %s already registered", email)
	}
	return nil
}

func (s *ProfileService) ensureUsernameFree(ctx context.Context, username string) error {
	taken, err := s.logins.UsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("username %s already taken", username)
	}
	return nil
}
