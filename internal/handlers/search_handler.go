package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dms/internal/services"
)

// SearchHandler handles HTTP search requests.
type SearchHandler struct {
	service *services.SearchService
	log     *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service *services.SearchService, log *zap.Logger) *SearchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchHandler{service: service, log: log.Named("search_handler")}
}

// RegisterRoutes registers the search routes.
func (h *SearchHandler) RegisterRoutes(router fiber.Router) {
	search := router.Group("/search")
	search.Get("/users", h.HandleSearchUsers)
	search.Get("/documents", h.HandleSearchDocuments)
}

// HandleSearchUsers matches ?q= against ?searchBy= (username, email or fullname).
func (h *SearchHandler) HandleSearchUsers(c *fiber.Ctx) error {
	field, err := services.ParseSearchField(c.Query("searchBy"))
	if err != nil {
		return respondError(c, h.log, "Invalid search field", err)
	}
	page, err := queryPage(c)
	if err != nil {
		return respondError(c, h.log, "Invalid pagination", err)
	}

	identities, err := h.service.SearchProfiles(c.UserContext(), c.Query("q"), field, page)
	if err != nil {
		return respondError(c, h.log, "Search failed", err)
	}
	return c.JSON(identities)
}

// HandleSearchDocuments matches ?q= against document titles.
func (h *SearchHandler) HandleSearchDocuments(c *fiber.Ctx) error {
	page, err := queryPage(c)
	if err != nil {
		return respondError(c, h.log, "Invalid pagination", err)
	}
	documents, err := h.service.SearchDocuments(c.UserContext(), c.Query("q"), page)
	if err != nil {
		return respondError(c, h.log, "Search failed", err)
	}
	return c.JSON(documents)
}
