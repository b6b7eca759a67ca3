package repositories

import (
	"context"

	"dms/internal/models"
)

// DocumentRepository defines the interface for document data access.
type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) (*models.Document, error)
	ByID(ctx context.Context, id uint) (*models.Document, error)
	Active(ctx context.Context, page Page) ([]models.Document, error)
	ByTitlePattern(ctx context.Context, pattern string, page Page) ([]models.Document, error)
	ByAuthor(ctx context.Context, authorID uint, page Page) ([]models.Document, error)
	ReferencesAuthor(ctx context.Context, authorID uint) (bool, error)
	Update(ctx context.Context, id uint, values map[string]any) (*models.Document, error)
}
