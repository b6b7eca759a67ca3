// Package handlers exposes the directory services over HTTP with Fiber.
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dms/internal/apperr"
	"dms/internal/repositories"
)

// statusOf maps an error kind onto an HTTP status.
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindInvalidReference:
		return fiber.StatusBadRequest
	case apperr.KindAuthentication:
		return fiber.StatusUnauthorized
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the JSON error body for err. Store failures hide their cause.
func respondError(c *fiber.Ctx, log *zap.Logger, message string, err error) error {
	status := statusOf(err)
	body := fiber.Map{"message": message}
	switch {
	case status == fiber.StatusInternalServerError:
		log.Error(message, zap.Error(err), zap.Any("request_id", c.Locals("request_id")))
	case apperr.KindOf(err) == apperr.KindAuthentication:
		// callers must not learn which half of the credentials was wrong
		body["error"] = apperr.ErrAuthentication.Error()
	default:
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

func badRequestBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// paramID parses the :id route parameter.
func paramID(c *fiber.Ctx) (uint, error) {
	return parseID(c.Params("id"), "id")
}

func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("%s must be a positive integer, got %q", name, raw)
	}
	return uint(id), nil
}

// queryPage reads ?limit= and ?offset=. Missing values mean unbounded.
func queryPage(c *fiber.Ctx) (repositories.Page, error) {
	var page repositories.Page
	for _, q := range []struct {
		name string
		dst  *int
	}{{"limit", &page.Limit}, {"offset", &page.Offset}} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, apperr.Validation("%s must be a non-negative integer, got %q", q.name, raw)
		}
		*q.dst = n
	}
	return page, nil
}
