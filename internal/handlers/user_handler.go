package handlers

import (
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user := identity.Caller(c)
	if user == nil {
		return unauthorized(c)
	}
	return c.JSON(fiber.Map{"user": user, "is_admin": identity.IsAdmin(c)})
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	user, err := h.users.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.users.ByHandle(c.UserContext(), c.Params("handle"), identity.ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
