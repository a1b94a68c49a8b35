package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const maxSearchResults = 50

type GameHandler struct {
	games *services.GameService
}

func NewGameHandler(games *services.GameService) *GameHandler {
	return &GameHandler{games: games}
}

func (h *GameHandler) Search(c *fiber.Ctx) error {
	games, err := h.games.Search(c.UserContext(), c.Query("q"), queryInt(c, "limit", 20, maxSearchResults))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"games": games})
}

func (h *GameHandler) Popular(c *fiber.Ctx) error {
	games, err := h.games.Popular(c.UserContext(), queryInt(c, "limit", 20, maxSearchResults))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"games": games})
}

func (h *GameHandler) ByID(c *fiber.Ctx) error {
	game, err := h.games.ByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(game)
}

func (h *GameHandler) BySlug(c *fiber.Ctx) error {
	game, err := h.games.BySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(game)
}

func (h *GameHandler) ByIGDBID(c *fiber.Ctx) error {
	igdbID, err := strconv.ParseInt(c.Params("igdb_id"), 10, 64)
	if err != nil || igdbID <= 0 {
		return badRequest(c, "Invalid IGDB id")
	}
	game, err := h.games.ByIGDBID(c.UserContext(), igdbID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(game)
}

func (h *GameHandler) Rating(c *fiber.Ctx) error {
	res, err := h.games.Rating(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
