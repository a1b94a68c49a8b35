package handlers

import (
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/gofiber/fiber/v2"
)

type ContentHandler struct {
	content *services.ContentService
}

func NewContentHandler(content *services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) CreatePost(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	post, err := h.content.CreatePost(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *ContentHandler) UpdatePost(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	post, err := h.content.UpdatePost(c.UserContext(), userID, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *ContentHandler) CreateArticle(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.CreateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	article, err := h.content.CreateArticle(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

func (h *ContentHandler) UpdateArticle(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.UpdateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	article, err := h.content.UpdateArticle(c.UserContext(), userID, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(article)
}

func (h *ContentHandler) CreateReview(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	review, err := h.content.CreateReview(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ContentHandler) UpdateReview(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	review, err := h.content.UpdateReview(c.UserContext(), userID, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(review)
}

func (h *ContentHandler) SetPublished(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	t, err := targetParam(c, target.ContentKinds)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.content.SetPublished(c.UserContext(), userID, t, req.Published); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Visibility updated"})
}

func (h *ContentHandler) Delete(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	t, err := targetParam(c, target.ContentKinds)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.content.Delete(c.UserContext(), userID, t); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ContentHandler) Revisions(c *fiber.Ctx) error {
	t, err := targetParam(c, target.ContentKinds)
	if err != nil {
		return respondError(c, err)
	}
	revs, err := h.content.Revisions(c.UserContext(), identity.ViewerID(c), t)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"revisions": revs})
}
