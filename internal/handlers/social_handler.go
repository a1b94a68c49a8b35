package handlers

import (
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/gofiber/fiber/v2"
)

// SocialHandler serves comments, likes and follows.
type SocialHandler struct {
	social *services.SocialService
}

func NewSocialHandler(social *services.SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

func (h *SocialHandler) Comments(c *fiber.Ctx) error {
	t, err := targetParam(c, target.ContentKinds)
	if err != nil {
		return respondError(c, err)
	}
	threads, err := h.social.Comments(c.UserContext(), t, identity.ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comments": threads})
}

func (h *SocialHandler) CreateComment(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	comment, err := h.social.CreateComment(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *SocialHandler) UpdateComment(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	comment, err := h.social.UpdateComment(c.UserContext(), userID, c.Params("id"), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

func (h *SocialHandler) DeleteComment(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.social.DeleteComment(c.UserContext(), userID, identity.IsAdmin(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SocialHandler) ToggleLike(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	res, err := h.social.ToggleLike(c.UserContext(), userID, c.Params("type"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *SocialHandler) Follow(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.social.Follow(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Followed"})
}

func (h *SocialHandler) Unfollow(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.social.Unfollow(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Unfollowed"})
}

func (h *SocialHandler) Followers(c *fiber.Ctx) error {
	users, err := h.social.Followers(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *SocialHandler) Following(c *fiber.Ctx) error {
	users, err := h.social.Following(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}
