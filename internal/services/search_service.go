package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"dms/internal/apperr"
	"dms/internal/models"
	"dms/internal/repositories"
)

// SearchField selects the profile attribute matched by SearchProfiles.
type SearchField string

const (
	SearchByUsername SearchField = "username"
	SearchByEmail    SearchField = "email"
	SearchByFullname SearchField = "fullname"
)

var searchColumns = map[SearchField]string{
	SearchByUsername: repositories.ColLoginUsername,
	SearchByEmail:    repositories.ColProfileEmail,
	SearchByFullname: repositories.ColProfileFullname,
}

// ParseSearchField maps a request value onto a SearchField. The empty string selects username.
func ParseSearchField(raw string) (SearchField, error) {
	if raw == "" {
		return SearchByUsername, nil
	}
	field := SearchField(strings.ToLower(raw))
	if _, ok := searchColumns[field]; !ok {
		return "", apperr.Validation("searchBy must be one of username, email, fullname")
	}
	return field, nil
}

// SearchService performs substring searches over profiles and documents.
// Case sensitivity follows the store: sqlite LIKE folds ASCII case, postgres LIKE does not.
type SearchService struct {
	profiles  repositories.ProfileRepository
	documents repositories.DocumentRepository
	log       *zap.Logger
}

// NewSearchService creates a new SearchService.
func NewSearchService(profiles repositories.ProfileRepository, documents repositories.DocumentRepository, log *zap.Logger) *SearchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchService{profiles: profiles, documents: documents, log: log.Named("search")}
}

// SearchProfiles returns active profiles whose field contains query.
func (s *SearchService) SearchProfiles(ctx context.Context, query string, field SearchField, page repositories.Page) ([]models.Identity, error) {
	if strings.TrimSpace(query) == "" {
		return nil, observe(s.log, "search profiles", apperr.Validation("search query is required"))
	}
	if field == "" {
		field = SearchByUsername
	}
	column, ok := searchColumns[field]
	if !ok {
		return nil, observe(s.log, "search profiles", apperr.Validation("cannot search profiles by %q", field))
	}

	identities, err := s.profiles.WithLogin(ctx,
		repositories.Where{repositories.Contains(column, query)},
		repositories.JoinOptions{Page: page},
	)
	if err != nil {
		return nil, observe(s.log, "search profiles", err)
	}
	return identities, nil
}

// SearchDocuments returns active documents whose title contains query.
func (s *SearchService) SearchDocuments(ctx context.Context, query string, page repositories.Page) ([]models.Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, observe(s.log, "search documents", apperr.Validation("search query is required"))
	}
	documents, err := s.documents.ByTitlePattern(ctx, query, page)
	if err != nil {
		return nil, observe(s.log, "search documents", err)
	}
	return documents, nil
}
