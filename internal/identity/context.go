// Package identity reads the authenticated caller out of a request context.
package identity

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey  = "user"
	callerKey = "caller"
	adminKey  = "is_admin"
)

var ErrNoToken = errors.New("no token in context")

// Token returns the verified JWT placed in locals by the auth middleware.
func Token(c *fiber.Ctx) (*jwt.Token, bool) {
	token, ok := c.Locals(tokenKey).(*jwt.Token)
	return token, ok && token != nil
}

// FromToken extracts the identity-provider claims used to sync a local user.
func FromToken(c *fiber.Ctx) (services.Identity, error) {
	token, ok := Token(c)
	if !ok {
		return services.Identity{}, ErrNoToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return services.Identity{}, errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return services.Identity{}, errors.New("missing sub claim")
	}

	id := services.Identity{ExternalID: sub}
	id.Handle = firstClaim(claims, "username", "preferred_username", "handle")
	id.DisplayName = firstClaim(claims, "name", "full_name")
	id.AvatarURL = firstClaim(claims, "picture", "image_url", "avatar_url")
	return id, nil
}

func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// SetCaller stores the resolved local user for downstream handlers.
func SetCaller(c *fiber.Ctx, user *models.User, isAdmin bool) {
	c.Locals(callerKey, user)
	c.Locals(adminKey, isAdmin)
}

// Caller returns the resolved local user, or nil for anonymous requests.
func Caller(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(callerKey).(*models.User); ok {
		return u
	}
	return nil
}

// ViewerID is the caller's user id, or "" for anonymous requests.
func ViewerID(c *fiber.Ctx) string {
	if u := Caller(c); u != nil {
		return u.ID
	}
	return ""
}

func IsAdmin(c *fiber.Ctx) bool {
	admin, _ := c.Locals(adminKey).(bool)
	return admin
}
