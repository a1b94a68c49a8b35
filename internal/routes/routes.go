package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Feed       *handlers.FeedHandler
	Content    *handlers.ContentHandler
	Social     *handlers.SocialHandler
	Users      *handlers.UserHandler
	Library    *handlers.LibraryHandler
	Games      *handlers.GameHandler
	Moderation *handlers.ModerationHandler
}

func Setup(app *fiber.App, cfg *config.Config, users middleware.UserSyncer, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth middleware is attached per route so public routes stay untouched.
	// Reads work anonymously; a valid token personalizes them.
	viewer := []fiber.Handler{middleware.OptionalJWT(cfg), middleware.ResolveUser(cfg, users, false)}
	// Writes need a signed-in user.
	caller := []fiber.Handler{middleware.JWTProtected(cfg), middleware.ResolveUser(cfg, users, true)}

	api.Get("/feed", append(viewer, h.Feed.Feed)...)
	api.Get("/content/:type/:id", append(viewer, h.Feed.Item)...)
	api.Get("/content/:type/:id/comments", append(viewer, h.Social.Comments)...)
	api.Get("/content/:type/:id/revisions", append(viewer, h.Content.Revisions)...)
	api.Get("/users/:handle", append(viewer, h.Users.Profile)...)
	api.Get("/users/:id/followers", append(viewer, h.Social.Followers)...)
	api.Get("/users/:id/following", append(viewer, h.Social.Following)...)
	api.Get("/users/:id/quest-log", append(viewer, h.Library.QuestLog)...)
	api.Get("/users/:id/now-playing", append(viewer, h.Library.NowPlaying)...)
	api.Get("/users/:id/collection", append(viewer, h.Library.Collection)...)
	api.Get("/games/search", append(viewer, h.Games.Search)...)
	api.Get("/games/popular", append(viewer, h.Games.Popular)...)
	api.Get("/games/slug/:slug", append(viewer, h.Games.BySlug)...)
	api.Get("/games/igdb/:igdb_id", append(viewer, h.Games.ByIGDBID)...)
	api.Get("/games/:id", append(viewer, h.Games.ByID)...)
	api.Get("/games/:id/rating", append(viewer, h.Games.Rating)...)

	me := api.Group("/me", caller...)
	me.Get("/", h.Users.Me)
	me.Put("/", h.Users.UpdateMe)
	me.Put("/quest-log", h.Library.UpsertQuest)
	me.Patch("/quest-log/:game_id", h.Library.UpdateQuestStatus)
	me.Delete("/quest-log/:game_id", h.Library.RemoveQuest)
	me.Post("/collection", h.Library.AddToCollection)
	me.Patch("/collection/:game_id", h.Library.UpdateCollection)
	me.Delete("/collection/:game_id", h.Library.RemoveFromCollection)

	api.Post("/posts", append(caller, h.Content.CreatePost)...)
	api.Put("/posts/:id", append(caller, h.Content.UpdatePost)...)
	api.Post("/articles", append(caller, h.Content.CreateArticle)...)
	api.Put("/articles/:id", append(caller, h.Content.UpdateArticle)...)
	api.Post("/reviews", append(caller, h.Content.CreateReview)...)
	api.Put("/reviews/:id", append(caller, h.Content.UpdateReview)...)
	api.Put("/content/:type/:id/publish", append(caller, h.Content.SetPublished)...)
	api.Delete("/content/:type/:id", append(caller, h.Content.Delete)...)

	api.Post("/comments", append(caller, h.Social.CreateComment)...)
	api.Put("/comments/:id", append(caller, h.Social.UpdateComment)...)
	api.Delete("/comments/:id", append(caller, h.Social.DeleteComment)...)
	api.Post("/likes/:type/:id", append(caller, h.Social.ToggleLike)...)
	api.Post("/users/:id/follow", append(caller, h.Social.Follow)...)
	api.Delete("/users/:id/follow", append(caller, h.Social.Unfollow)...)
	api.Post("/reports", append(caller, h.Moderation.CreateReport)...)

	// Admin moderation panel (protected + admin required)
	admin := api.Group("/admin", append(caller, middleware.AdminRequired())...)
	admin.Get("/reports", h.Moderation.ListReports)
	admin.Get("/reports/completed", h.Moderation.CompletedReports)
	admin.Put("/reports/:id", h.Moderation.ResolveReport)
}
