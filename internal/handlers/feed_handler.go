package handlers

import (
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/feed"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/gofiber/fiber/v2"
)

type FeedHandler struct {
	composer *feed.Composer
}

func NewFeedHandler(composer *feed.Composer) *FeedHandler {
	return &FeedHandler{composer: composer}
}

// Feed serves GET /feed?view=&cursor=&limit=&author_id=&game_id=.
func (h *FeedHandler) Feed(c *fiber.Ctx) error {
	view, err := feed.ParseView(c.Query("view"))
	if err != nil {
		return respondError(c, err)
	}

	page, err := h.composer.Compose(c.UserContext(), feed.Query{
		View:     view,
		ViewerID: identity.ViewerID(c),
		Cursor:   c.Query("cursor"),
		Limit:    queryInt(c, "limit", feed.DefaultLimit, feed.MaxLimit),
		AuthorID: c.Query("author_id"),
		GameID:   c.Query("game_id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// Item serves a single hydrated post, article or review.
func (h *FeedHandler) Item(c *fiber.Ctx) error {
	t, err := targetParam(c, target.ContentKinds)
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.composer.Item(c.UserContext(), t, identity.ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}
