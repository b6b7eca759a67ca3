package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dms/internal/apperr"
	"dms/internal/models"
	"dms/internal/repositories"
	"dms/internal/services"
)

type documentDeps struct {
	documents *MockDocumentRepository
	profiles  *MockProfileRepository
	events    *MockPublisher
	service   *services.DocumentService
}

func newDocumentDeps() documentDeps {
	d := documentDeps{
		documents: new(MockDocumentRepository),
		profiles:  new(MockProfileRepository),
		events:    new(MockPublisher),
	}
	d.service = services.NewDocumentService(passthroughTx{}, d.documents, d.profiles, d.events, nil)
	return d
}

func (d documentDeps) assertExpectations(t *testing.T) {
	d.documents.AssertExpectations(t)
	d.profiles.AssertExpectations(t)
	d.events.AssertExpectations(t)
}

func TestDocumentService_CreateDocument(t *testing.T) {
	ctx := context.Background()
	deletedAt := time.Now()

	t.Run("success", func(t *testing.T) {
		d := newDocumentDeps()
		d.profiles.On("ByID", ctx, uint(1)).Return(&models.Profile{ID: 1}, nil).Once()
		d.documents.On("Create", ctx, &models.Document{Title: "Hello", Body: "body", AuthorID: 1}).
			Return(&models.Document{ID: 1, Title: "Hello", Body: "body", AuthorID: 1}, nil).Once()
		d.events.On("Publish", ctx, services.EventDocumentCreated, mock.AnythingOfType("*models.Document")).Return(nil).Once()

		document, err := d.service.CreateDocument(ctx, models.NewDocument{Title: "  Hello ", Body: "body", AuthorID: 1})
		require.NoError(t, err)
		assert.Equal(t, uint(1), document.ID)
		d.assertExpectations(t)
	})

	t.Run("missing title or author", func(t *testing.T) {
		d := newDocumentDeps()
		_, err := d.service.CreateDocument(ctx, models.NewDocument{Title: "   ", AuthorID: 1})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		_, err = d.service.CreateDocument(ctx, models.NewDocument{Title: "Hello"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Contains(t, err.Error(), "author_id is required")
		d.assertExpectations(t)
	})

	t.Run("unknown author", func(t *testing.T) {
		d := newDocumentDeps()
		d.profiles.On("ByID", ctx, uint(999)).Return(nil, apperr.NotFound("profile with ID 999 not found")).Once()

		_, err := d.service.CreateDocument(ctx, models.NewDocument{Title: "Hi", Body: "body", AuthorID: 999})
		assert.ErrorIs(t, err, apperr.ErrInvalidReference)
		d.documents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		d.assertExpectations(t)
	})

	t.Run("deleted author", func(t *testing.T) {
		d := newDocumentDeps()
		d.profiles.On("ByID", ctx, uint(2)).Return(&models.Profile{ID: 2, DeletedAt: &deletedAt}, nil).Once()

		_, err := d.service.CreateDocument(ctx, models.NewDocument{Title: "Hi", AuthorID: 2})
		assert.ErrorIs(t, err, apperr.ErrInvalidReference)
		d.assertExpectations(t)
	})
}

func TestDocumentService_FetchDocument(t *testing.T) {
	d := newDocumentDeps()
	ctx := context.Background()
	deletedAt := time.Now()

	d.documents.On("ByID", ctx, uint(1)).Return(&models.Document{ID: 1, Title: "Hello"}, nil).Once()
	document, err := d.service.FetchDocument(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Hello", document.Title)

	d.documents.On("ByID", ctx, uint(2)).Return(&models.Document{ID: 2, DeletedAt: &deletedAt}, nil).Once()
	_, err = d.service.FetchDocument(ctx, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	d.assertExpectations(t)
}

func TestDocumentService_FetchDocumentsByAuthor(t *testing.T) {
	d := newDocumentDeps()
	ctx := context.Background()

	d.documents.On("ByAuthor", ctx, uint(5), repositories.Page{}).Return([]models.Document{}, nil).Once()
	documents, err := d.service.FetchDocumentsByAuthor(ctx, 5, repositories.Page{})
	require.NoError(t, err)
	assert.Empty(t, documents)

	_, err = d.service.FetchDocumentsByAuthor(ctx, 0, repositories.Page{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	d.assertExpectations(t)
}

func TestDocumentService_UpdateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("no fields", func(t *testing.T) {
		d := newDocumentDeps()
		_, err := d.service.UpdateDocument(ctx, 1, models.DocumentUpdate{})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		d.assertExpectations(t)
	})

	t.Run("blank title", func(t *testing.T) {
		d := newDocumentDeps()
		blank := "  "
		_, err := d.service.UpdateDocument(ctx, 1, models.DocumentUpdate{Title: &blank})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		d.assertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		d := newDocumentDeps()
		body := "new body"
		d.documents.On("ByID", ctx, uint(1)).Return(&models.Document{ID: 1, Title: "Hello"}, nil).Once()
		d.documents.On("Update", ctx, uint(1), map[string]any{"body": "new body"}).
			Return(&models.Document{ID: 1, Title: "Hello", Body: "new body"}, nil).Once()
		d.events.On("Publish", ctx, services.EventDocumentUpdated, mock.Anything).Return(nil).Once()

		document, err := d.service.UpdateDocument(ctx, 1, models.DocumentUpdate{Body: &body})
		require.NoError(t, err)
		assert.Equal(t, "new body", document.Body)
		d.assertExpectations(t)
	})
}

func TestDocumentService_SoftDeleteDocument(t *testing.T) {
	d := newDocumentDeps()
	ctx := context.Background()
	deletedAt := time.Now()

	d.documents.On("ByID", ctx, uint(1)).Return(&models.Document{ID: 1}, nil).Once()
	d.documents.On("Update", ctx, uint(1), mock.AnythingOfType("map[string]interface {}")).
		Return(&models.Document{ID: 1, DeletedAt: &deletedAt}, nil).Once()
	d.events.On("Publish", ctx, services.EventDocumentDeleted, map[string]uint{"id": 1}).Return(nil).Once()
	require.NoError(t, d.service.SoftDeleteDocument(ctx, 1))

	d.documents.On("ByID", ctx, uint(1)).Return(&models.Document{ID: 1, DeletedAt: &deletedAt}, nil).Once()
	assert.ErrorIs(t, d.service.SoftDeleteDocument(ctx, 1), apperr.ErrNotFound)
	d.assertExpectations(t)
}
