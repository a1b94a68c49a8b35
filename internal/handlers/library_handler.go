package handlers

import (
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// LibraryHandler serves a user's quest log and collection.
type LibraryHandler struct {
	quests     *services.QuestLogService
	collection *services.CollectionService
}

func NewLibraryHandler(quests *services.QuestLogService, collection *services.CollectionService) *LibraryHandler {
	return &LibraryHandler{quests: quests, collection: collection}
}

func (h *LibraryHandler) QuestLog(c *fiber.Ctx) error {
	entries, err := h.quests.List(c.UserContext(), c.Params("id"), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func (h *LibraryHandler) NowPlaying(c *fiber.Ctx) error {
	entries, err := h.quests.NowPlaying(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func (h *LibraryHandler) UpsertQuest(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.QuestLogRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	entry, err := h.quests.Upsert(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

// UpdateQuestStatus changes an entry's status. The shared post, if any, is
// returned next to the entry.
func (h *LibraryHandler) UpdateQuestStatus(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.QuestStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	entry, post, err := h.quests.UpdateStatus(c.UserContext(), userID, c.Params("game_id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"entry": entry, "post": post})
}

func (h *LibraryHandler) RemoveQuest(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.quests.Remove(c.UserContext(), userID, c.Params("game_id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *LibraryHandler) Collection(c *fiber.Ctx) error {
	entries, err := h.collection.List(c.UserContext(), c.Params("id"), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func (h *LibraryHandler) AddToCollection(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.CollectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	entry, err := h.collection.Add(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *LibraryHandler) UpdateCollection(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.UpdateCollectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	entry, err := h.collection.Update(c.UserContext(), userID, c.Params("game_id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

func (h *LibraryHandler) RemoveFromCollection(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.collection.Remove(c.UserContext(), userID, c.Params("game_id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
