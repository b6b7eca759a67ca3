package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"dms/internal/apperr"
	"dms/internal/models"
	"dms/internal/repositories"
)

// DocumentService handles business logic related to documents.
type DocumentService struct {
	tx        Transactor
	documents repositories.DocumentRepository
	profiles  repositories.ProfileRepository
	events    EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewDocumentService creates a new DocumentService. events may be nil.
func NewDocumentService(
	tx Transactor,
	documents repositories.DocumentRepository,
	profiles repositories.ProfileRepository,
	events EventPublisher,
	log *zap.Logger,
) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentService{
		tx:        tx,
		documents: documents,
		profiles:  profiles,
		events:    events,
		log:       log.Named("documents"),
		now:       time.Now,
	}
}

// CreateDocument stores a new document. The author must be an active profile.
func (s *DocumentService) CreateDocument(ctx context.Context, in models.NewDocument) (*models.Document, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, observe(s.log, "create document", err)
	}

	var document *models.Document
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		author, err := s.profiles.ByID(ctx, in.AuthorID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.InvalidReference("author %d does not exist", in.AuthorID)
		}
		if err != nil {
			return err
		}
		if !author.IsActive() {
			return apperr.InvalidReference("author %d is deleted", in.AuthorID)
		}

		document, err = s.documents.Create(ctx, &models.Document{Title: in.Title, Body: in.Body, AuthorID: in.AuthorID})
		return err
	})
	if err != nil {
		return nil, observe(s.log, "create document", err)
	}

	s.log.Info("document created", zap.Uint("document_id", document.ID), zap.Uint("author_id", document.AuthorID))
	publish(ctx, s.log, s.events, EventDocumentCreated, document)
	return document, nil
}

// FetchDocument returns an active document.
func (s *DocumentService) FetchDocument(ctx context.Context, id uint) (*models.Document, error) {
	document, err := s.activeDocument(ctx, id)
	return document, observe(s.log, "fetch document", err)
}

// FetchDocumentsByAuthor lists the active documents of an author. An author
// without documents yields an empty slice.
func (s *DocumentService) FetchDocumentsByAuthor(ctx context.Context, authorID uint, page repositories.Page) ([]models.Document, error) {
	if authorID == 0 {
		return nil, observe(s.log, "list documents by author", apperr.Validation("author_id is required"))
	}
	documents, err := s.documents.ByAuthor(ctx, authorID, page)
	if err != nil {
		return nil, observe(s.log, "list documents by author", err)
	}
	return documents, nil
}

// ListDocuments lists every active document ordered by id.
func (s *DocumentService) ListDocuments(ctx context.Context, page repositories.Page) ([]models.Document, error) {
	documents, err := s.documents.Active(ctx, page)
	if err != nil {
		return nil, observe(s.log, "list documents", err)
	}
	return documents, nil
}

// UpdateDocument applies the set fields of upd to an active document.
func (s *DocumentService) UpdateDocument(ctx context.Context, id uint, upd models.DocumentUpdate) (*models.Document, error) {
	if upd.Empty() {
		return nil, observe(s.log, "update document", apperr.Validation("no fields to update"))
	}
	if err := validateInput(upd); err != nil {
		return nil, observe(s.log, "update document", err)
	}

	values := map[string]any{}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, observe(s.log, "update document", apperr.Validation("title must not be empty"))
		}
		values["title"] = title
	}
	if upd.Body != nil {
		values["body"] = *upd.Body
	}

	var document *models.Document
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.activeDocument(ctx, id); err != nil {
			return err
		}
		var err error
		document, err = s.documents.Update(ctx, id, values)
		return err
	})
	if err != nil {
		return nil, observe(s.log, "update document", err)
	}

	publish(ctx, s.log, s.events, EventDocumentUpdated, document)
	return document, nil
}

// SoftDeleteDocument marks an active document as deleted. Deleting an
// already deleted document reports ErrNotFound.
func (s *DocumentService) SoftDeleteDocument(ctx context.Context, id uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.activeDocument(ctx, id); err != nil {
			return err
		}
		_, err := s.documents.Update(ctx, id, map[string]any{repositories.DeletedAtColumn: s.now().UTC()})
		return err
	})
	if err != nil {
		return observe(s.log, "delete document", err)
	}

	s.log.Info("document soft-deleted", zap.Uint("document_id", id))
	publish(ctx, s.log, s.events, EventDocumentDeleted, map[string]uint{"id": id})
	return nil
}

func (s *DocumentService) activeDocument(ctx context.Context, id uint) (*models.Document, error) {
	document, err := s.documents.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !document.IsActive() {
		return nil, apperr.NotFound("document with ID %d not found", id)
	}
	return document, nil
}
