package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type fakeSyncer struct {
	seen []services.Identity
}

func (f *fakeSyncer) Sync(_ context.Context, id services.Identity) (*models.User, error) {
	f.seen = append(f.seen, id)
	return &models.User{ID: "local-" + id.ExternalID, ExternalID: id.ExternalID, Handle: id.Handle}, nil
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newApp(cfg *config.Config, syncer *fakeSyncer) *fiber.App {
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		return c.SendString(identity.ViewerID(c))
	}
	app.Get("/optional", middleware.OptionalJWT(cfg), middleware.ResolveUser(cfg, syncer, false), whoami)
	app.Get("/required", middleware.JWTProtected(cfg), middleware.ResolveUser(cfg, syncer, true), whoami)
	app.Get("/admin", middleware.JWTProtected(cfg), middleware.ResolveUser(cfg, syncer, true), middleware.AdminRequired(), whoami)
	return app
}

func do(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestOptionalAndRequiredAuth(t *testing.T) {
	cfg := &config.Config{JWTSecret: secret}
	syncer := &fakeSyncer{}
	app := newApp(cfg, syncer)
	token := sign(t, jwt.MapClaims{"sub": "user_1", "username": "speedy", "picture": "https://img/x.png"})

	code, body := do(t, app, "/optional", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "", body)

	code, body = do(t, app, "/optional", token)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "local-user_1", body)

	code, _ = do(t, app, "/optional", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = do(t, app, "/required", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body = do(t, app, "/required", token)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "local-user_1", body)

	require.NotEmpty(t, syncer.seen)
	assert.Equal(t, "speedy", syncer.seen[0].Handle)
	assert.Equal(t, "https://img/x.png", syncer.seen[0].AvatarURL)
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: secret, AdminUserIDs: "boss, local-other"}
	app := newApp(cfg, &fakeSyncer{})

	code, _ := do(t, app, "/admin", sign(t, jwt.MapClaims{"sub": "pleb"}))
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = do(t, app, "/admin", sign(t, jwt.MapClaims{"sub": "boss"}))
	assert.Equal(t, fiber.StatusOK, code)

	code, _ = do(t, app, "/admin", sign(t, jwt.MapClaims{"sub": "other"}))
	assert.Equal(t, fiber.StatusOK, code)

	expired := sign(t, jwt.MapClaims{"sub": "boss", "exp": time.Now().Add(-time.Hour).Unix()})
	code, _ = do(t, app, "/admin", expired)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}
