package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dms/internal/models"
	"dms/internal/services"
)

// DocumentHandler handles HTTP requests for documents.
type DocumentHandler struct {
	service *services.DocumentService
	log     *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(service *services.DocumentService, log *zap.Logger) *DocumentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentHandler{service: service, log: log.Named("document_handler")}
}

// RegisterRoutes registers the document routes.
func (h *DocumentHandler) RegisterRoutes(router fiber.Router) {
	documents := router.Group("/documents")
	documents.Post("/", h.HandleCreateDocument)
	documents.Get("/", h.HandleGetDocuments)
	documents.Get("/:id", h.HandleGetDocument)
	documents.Put("/:id", h.HandleUpdateDocument)
	documents.Delete("/:id", h.HandleDeleteDocument)
}

// HandleCreateDocument creates a new document.
func (h *DocumentHandler) HandleCreateDocument(c *fiber.Ctx) error {
	var in models.NewDocument
	if err := c.BodyParser(&in); err != nil {
		return badRequestBody(c, err)
	}

	document, err := h.service.CreateDocument(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, "Could not create document", err)
	}
	return c.Status(fiber.StatusCreated).JSON(document)
}

// HandleGetDocuments lists active documents, optionally those of one author (?author_id=).
func (h *DocumentHandler) HandleGetDocuments(c *fiber.Ctx) error {
	page, err := queryPage(c)
	if err != nil {
		return respondError(c, h.log, "Invalid pagination", err)
	}

	var documents []models.Document
	if raw := c.Query("author_id"); raw != "" {
		authorID, err := parseID(raw, "author_id")
		if err != nil {
			return respondError(c, h.log, "Invalid author id", err)
		}
		documents, err = h.service.FetchDocumentsByAuthor(c.UserContext(), authorID, page)
		if err != nil {
			return respondError(c, h.log, "Could not retrieve documents", err)
		}
		return c.JSON(documents)
	}

	documents, err = h.service.ListDocuments(c.UserContext(), page)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve documents", err)
	}
	return c.JSON(documents)
}

// HandleGetDocument retrieves a single active document.
func (h *DocumentHandler) HandleGetDocument(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, h.log, "Invalid document id", err)
	}
	document, err := h.service.FetchDocument(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve document", err)
	}
	return c.JSON(document)
}

// HandleUpdateDocument updates the fields present in the body.
func (h *DocumentHandler) HandleUpdateDocument(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, h.log, "Invalid document id", err)
	}
	var upd models.DocumentUpdate
	if err := c.BodyParser(&upd); err != nil {
		return badRequestBody(c, err)
	}

	document, err := h.service.UpdateDocument(c.UserContext(), id, upd)
	if err != nil {
		return respondError(c, h.log, "Could not update document", err)
	}
	return c.JSON(document)
}

// HandleDeleteDocument soft-deletes a document.
func (h *DocumentHandler) HandleDeleteDocument(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, h.log, "Invalid document id", err)
	}
	if err := h.service.SoftDeleteDocument(c.UserContext(), id); err != nil {
		return respondError(c, h.log, "Could not delete document", err)
	}
	return c.JSON(fiber.Map{"message": "Document deleted successfully"})
}
