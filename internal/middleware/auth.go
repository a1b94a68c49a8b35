package middleware

import (
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected verifies the bearer token against the identity provider's JWKS
// endpoint, or against the shared secret when no JWKS URL is configured.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtConfig(cfg, nil))
}

// OptionalJWT verifies a bearer token when one is sent and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtConfig(cfg, func(c *fiber.Ctx) bool {
		return c.Get(fiber.HeaderAuthorization) == ""
	}))
}

func jwtConfig(cfg *config.Config, filter func(*fiber.Ctx) bool) jwtware.Config {
	conf := jwtware.Config{
		Filter: filter,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	}
	if cfg.JWKSURL != "" {
		conf.JWKSetURLs = []string{cfg.JWKSURL}
	} else {
		conf.SigningKey = jwtware.SigningKey{Key: []byte(cfg.JWTSecret)}
	}
	return conf
}
