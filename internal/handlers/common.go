package handlers

import (
	"strings"

	"tree-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// respondError maps service error sentinels onto HTTP statuses.
func respondError(c fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "badrequest"):
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", msg))
	case strings.Contains(msg, "not_found"):
		return c.Status(fiber.StatusNotFound).JSON(utils.CreateErrorResponse("NOT_FOUND", msg))
	case strings.Contains(msg, "unauthorized"):
		return c.Status(fiber.StatusUnauthorized).JSON(utils.CreateErrorResponse("UNAUTHORIZED", msg))
	case strings.Contains(msg, "duplicate"):
		return c.Status(fiber.StatusConflict).JSON(utils.CreateErrorResponse("DUPLICATE", msg))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(utils.CreateErrorResponse("INTERNAL_SERVER_ERROR", msg))
	}
}

// requireUserID reads the authenticated user from the gateway header.
func requireUserID(c fiber.Ctx) (string, bool) {
	userID := c.Get("X-User-ID")
	return userID, userID != ""
}
