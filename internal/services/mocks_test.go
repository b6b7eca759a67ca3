package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"dms/internal/models"
	"dms/internal/repositories"
)

// passthroughTx runs fn without a store transaction.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockProfileRepository is a mock implementation of repositories.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) ByID(ctx context.Context, id uint) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) ByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Active(ctx context.Context, page repositories.Page) ([]models.Profile, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileRepository) WithLogin(ctx context.Context, where repositories.Where, opts repositories.JoinOptions) ([]models.Identity, error) {
	args := m.Called(ctx, where, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Identity), args.Error(1)
}

func (m *MockProfileRepository) Exists(ctx context.Context, where repositories.Where) (bool, error) {
	args := m.Called(ctx, where)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, id uint, values map[string]any) (*models.Profile, error) {
	args := m.Called(ctx, id, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLoginRepository is a mock implementation of repositories.LoginRepository
type MockLoginRepository struct {
	mock.Mock
}

func (m *MockLoginRepository) Create(ctx context.Context, login *models.Login) (*models.Login, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Login), args.Error(1)
}

func (m *MockLoginRepository) ByUsername(ctx context.Context, username string) (*models.Login, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Login), args.Error(1)
}

func (m *MockLoginRepository) ByProfileID(ctx context.Context, profileID uint) (*models.Login, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Login), args.Error(1)
}

func (m *MockLoginRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginRepository) RecordLogin(ctx context.Context, profileID uint, at time.Time) error {
	args := m.Called(ctx, profileID, at)
	return args.Error(0)
}

func (m *MockLoginRepository) Update(ctx context.Context, profileID uint, values map[string]any) (*models.Login, error) {
	args := m.Called(ctx, profileID, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Login), args.Error(1)
}

func (m *MockLoginRepository) DeleteByProfileID(ctx context.Context, profileID uint) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

// MockDocumentRepository is a mock implementation of repositories.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, document *models.Document) (*models.Document, error) {
	args := m.Called(ctx, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) ByID(ctx context.Context, id uint) (*models.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) Active(ctx context.Context, page repositories.Page) ([]models.Document, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]models.Document), args.Error(1)
}

func (m *MockDocumentRepository) ByTitlePattern(ctx context.Context, pattern string, page repositories.Page) ([]models.Document, error) {
	args := m.Called(ctx, pattern, page)
	return args.Get(0).([]models.Document), args.Error(1)
}

func (m *MockDocumentRepository) ByAuthor(ctx context.Context, authorID uint, page repositories.Page) ([]models.Document, error) {
	args := m.Called(ctx, authorID, page)
	return args.Get(0).([]models.Document), args.Error(1)
}

func (m *MockDocumentRepository) ReferencesAuthor(ctx context.Context, authorID uint) (bool, error) {
	args := m.Called(ctx, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, id uint, values map[string]any) (*models.Document, error) {
	args := m.Called(ctx, id, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

// MockHasher is a mock implementation of password.Hasher
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(plaintext, stored string) bool {
	args := m.Called(plaintext, stored)
	return args.Bool(0)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}
