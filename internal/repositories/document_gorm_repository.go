package repositories

import (
	"context"

	"dms/internal/apperr"
	"dms/internal/models"
	"dms/internal/store"
)

var documentTable = Table{
	Name:       models.Document{}.TableName(),
	Columns:    []string{"id", "title", "body", "author_id", "created_at", "updated_at", "deleted_at"},
	SoftDelete: true,
	Timestamps: true,
}

// GORMDocumentRepository is a GORM implementation of DocumentRepository.
type GORMDocumentRepository struct {
	rows *Repository[models.Document]
}

// NewGORMDocumentRepository creates a new instance of GORMDocumentRepository.
func NewGORMDocumentRepository(s *store.Store) *GORMDocumentRepository {
	return &GORMDocumentRepository{
		rows: NewRepository[models.Document](s, documentTable),
	}
}

// Create inserts a new document.
func (r *GORMDocumentRepository) Create(ctx context.Context, document *models.Document) (*models.Document, error) {
	return r.rows.Create(ctx, document)
}

// ByID returns the document with the given id, soft-deleted or not.
func (r *GORMDocumentRepository) ByID(ctx context.Context, id uint) (*models.Document, error) {
	document, err := r.rows.First(ctx, Where{Eq("id", id)})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperr.NotFound("document with ID %d not found", id)
	}
	return document, nil
}

// Active lists documents that have not been soft-deleted.
func (r *GORMDocumentRepository) Active(ctx context.Context, page Page) ([]models.Document, error) {
	return r.rows.Read(ctx, Where{IsNull(DeletedAtColumn)}, page)
}

// ByTitlePattern lists active documents whose title contains pattern.
func (r *GORMDocumentRepository) ByTitlePattern(ctx context.Context, pattern string, page Page) ([]models.Document, error) {
	return r.rows.Read(ctx, Where{Contains("title", pattern), IsNull(DeletedAtColumn)}, page)
}

// ByAuthor lists active documents written by the author.
func (r *GORMDocumentRepository) ByAuthor(ctx context.Context, authorID uint, page Page) ([]models.Document, error) {
	return r.rows.Read(ctx, Where{Eq("author_id", authorID), IsNull(DeletedAtColumn)}, page)
}

// ReferencesAuthor reports whether any document row, soft-deleted included, points at the author.
func (r *GORMDocumentRepository) ReferencesAuthor(ctx context.Context, authorID uint) (bool, error) {
	document, err := r.rows.First(ctx, Where{Eq("author_id", authorID)})
	if err != nil {
		return false, err
	}
	return document != nil, nil
}

// Update applies values to the document with the given id.
func (r *GORMDocumentRepository) Update(ctx context.Context, id uint, values map[string]any) (*models.Document, error) {
	rows, err := r.rows.Update(ctx, Where{Eq("id", id)}, values)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("document with ID %d not found for update", id)
	}
	return &rows[0], nil
}
