package handlers

import (
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	report, err := h.moderationService.CreateReport(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 20, 100)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	reports, total, err := h.moderationService.ListReports(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ModerationHandler) ResolveReport(c *fiber.Ctx) error {
	var req dto.ResolveReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	done, err := h.moderationService.ResolveReport(c.UserContext(), identity.ViewerID(c), identity.IsAdmin(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(done)
}

func (h *ModerationHandler) CompletedReports(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 20, 100)
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	reports, err := h.moderationService.CompletedReports(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports, "limit": limit, "offset": offset})
}
