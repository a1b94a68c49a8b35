package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/feed"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/gofiber/fiber/v2"
)

// respondError maps service error categories to status codes. Anything
// uncategorized is logged and reported as a 500 without details.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, feed.ErrViewerRequired):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound), errors.Is(err, target.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, target.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrValidation), errors.Is(err, feed.ErrUnknownView),
		errors.Is(err, feed.ErrMissingFilter), errors.Is(err, target.ErrUnknownKind),
		errors.Is(err, target.ErrMalformed):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", msg)
		msg = "Internal server error"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
}

// callerID returns the signed-in user's id; ok is false for anonymous requests.
func callerID(c *fiber.Ctx) (string, bool) {
	id := identity.ViewerID(c)
	return id, id != ""
}

// targetParam reads the :type and :id route params.
func targetParam(c *fiber.Ctx, allowed []target.Kind) (target.Target, error) {
	return target.Parse(c.Params("type"), c.Params("id"), allowed)
}

func queryInt(c *fiber.Ctx, key string, fallback, max int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return fallback
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
