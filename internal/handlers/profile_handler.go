package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dms/internal/models"
	"dms/internal/services"
)

// ProfileHandler handles HTTP requests for profiles and authentication.
type ProfileHandler struct {
	service *services.ProfileService
	log     *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService, log *zap.Logger) *ProfileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{service: service, log: log.Named("profile_handler")}
}

// RegisterRoutes registers the profile and authentication routes.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Post("/", h.HandleRegister)
	users.Get("/", h.HandleListProfiles)
	users.Get("/:id", h.HandleGetProfile)
	users.Put("/:id", h.HandleUpdateProfile)
	users.Delete("/:id", h.HandleDeleteProfile)
	users.Delete("/:id/purge", h.HandlePurgeProfile)

	router.Post("/auth/login", h.HandleLogin)
}

// HandleRegister creates a profile and its login.
func (h *ProfileHandler) HandleRegister(c *fiber.Ctx) error {
	var in models.Registration
	if err := c.BodyParser(&in); err != nil {
		return badRequestBody(c, err)
	}

	identity, err := h.service.RegisterProfile(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, "Registration failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    identity,
	})
}

// HandleListProfiles lists active profiles.
func (h *ProfileHandler) HandleListProfiles(c *fiber.Ctx) error {
	page, err := queryPage(c)
	if err != nil {
		return respondError(c, h.log, "Invalid pagination", err)
	}
	identities, err := h.service.ListActiveProfiles(c.UserContext(), page)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve users", err)
	}
	return c.JSON(identities)
}

// HandleGetProfile retrieves a single active profile.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, h.log, "Invalid user id", err)
	}
	identity, err := h.service.FetchActiveProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve user", err)
	}
	return c.JSON(identity)
}

// HandleUpdateProfile updates the fields present in the body.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, h.log, "Invalid user id", err)
	}
	var upd models.ProfileUpdate
	if err := c.BodyParser(&upd); err != nil {
		return badRequestBody(c, err)
	}

	identity, err := h.service.UpdateProfile(c.UserContext(), id, upd)
	if err != nil {
		return respondError(c, h.log, "Could not update user", err)
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    identity,
	})
}

// HandleDeleteProfile soft-deletes a profile.
func (h *ProfileHandler) HandleDeleteProfile(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, h.log, "Invalid user id", err)
	}
	if err := h.service.SoftDeleteProfile(c.UserContext(), id); err != nil {
		return respondError(c, h.log, "Could not delete user", err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// HandlePurgeProfile permanently removes a soft-deleted profile.
func (h *ProfileHandler) HandlePurgeProfile(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, h.log, "Invalid user id", err)
	}
	if err := h.service.PurgeProfile(c.UserContext(), id); err != nil {
		return respondError(c, h.log, "Could not purge user", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns the authenticated profile.
func (h *ProfileHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}

	identity, err := h.service.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, h.log, "Authentication failed", err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    identity,
	})
}
