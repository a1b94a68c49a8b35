package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/feed"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app   *fiber.App
	db    *gorm.DB
	alice *models.User
	bob   *models.User
}

// asUser stands in for the JWT and user-sync middleware: the X-Test-User
// header names the caller.
func asUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if handle := c.Get("X-Test-User"); handle != "" {
			var u models.User
			if err := db.First(&u, "handle = ?", handle).Error; err == nil {
				identity.SetCaller(c, &u, u.IsAdmin)
			}
		}
		return c.Next()
	}
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)

	social := services.NewSocialService(db)
	content := handlers.NewContentHandler(services.NewContentService(db, nil))
	feedH := handlers.NewFeedHandler(feed.NewComposer(db))
	socialH := handlers.NewSocialHandler(social)
	modH := handlers.NewModerationHandler(services.NewModerationService(db))
	health := handlers.NewHealthHandler(func() error { return errors.New("down") }, false)

	app := fiber.New()
	app.Use(asUser(db))
	app.Get("/health", health.Check)
	app.Get("/feed", feedH.Feed)
	app.Get("/content/:type/:id", feedH.Item)
	app.Post("/posts", content.CreatePost)
	app.Delete("/content/:type/:id", content.Delete)
	app.Post("/likes/:type/:id", socialH.ToggleLike)
	app.Post("/users/:id/follow", socialH.Follow)
	app.Put("/admin/reports/:id", modH.ResolveReport)

	return &testServer{
		app:   app,
		db:    db,
		alice: testutil.CreateUser(t, db, "alice"),
		bob:   testutil.CreateUser(t, db, "bob"),
	}
}

func (s *testServer) do(t *testing.T, method, path, user string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestPostLikeDeleteFlow(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(t, http.MethodPost, "/posts", "", map[string]string{"content": "hi"})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body := s.do(t, http.MethodPost, "/posts", "alice", map[string]string{"content": "gg"})
	require.Equal(t, fiber.StatusCreated, code)
	var post models.Post
	require.NoError(t, json.Unmarshal(body, &post))

	code, body = s.do(t, http.MethodPost, "/likes/post/"+post.ID, "bob", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"liked":true,"like_count":1}`, string(body))

	code, body = s.do(t, http.MethodGet, "/content/post/"+post.ID, "bob", nil)
	require.Equal(t, fiber.StatusOK, code)
	var item feed.Item
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Equal(t, 1, item.LikeCount)
	assert.True(t, item.HasLiked)

	code, body = s.do(t, http.MethodGet, "/feed?view=discover&limit=5", "", nil)
	require.Equal(t, fiber.StatusOK, code)
	var page feed.Page
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Items, 1)
	assert.Nil(t, page.NextCursor)

	code, _ = s.do(t, http.MethodDelete, "/content/post/"+post.ID, "bob", nil)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, "/content/post/"+post.ID, "alice", nil)
	assert.Equal(t, fiber.StatusNoContent, code)

	code, _ = s.do(t, http.MethodGet, "/content/post/"+post.ID, "", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestErrorStatusMapping(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(t, http.MethodGet, "/feed?view=following", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/feed?view=trending", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/feed?view=profile", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/content/user/x", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/users/"+s.alice.ID+"/follow", "alice", nil)
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = s.do(t, http.MethodPost, "/users/"+s.alice.ID+"/follow", "bob", nil)
	assert.Equal(t, fiber.StatusOK, code)

	code, _ = s.do(t, http.MethodPut, "/admin/reports/nope", "bob", map[string]string{"resolution": "x"})
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	code, body := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, fiber.StatusOK, code)

	var res map[string]string
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "unhealthy: down", res["db"])
	assert.Equal(t, "disabled", res["igdb"])
}
