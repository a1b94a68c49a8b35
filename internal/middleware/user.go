package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// UserSyncer maps a verified identity to a local user, creating it on first
// sight.
type UserSyncer interface {
	Sync(ctx context.Context, id services.Identity) (*models.User, error)
}

// ResolveUser turns the verified token into the local caller. Admins are
// flagged either on the user row or by ADMIN_USER_IDS, which may list local
// ids or identity-provider subjects. With required unset, requests without a
// token pass through anonymously.
func ResolveUser(cfg *config.Config, users UserSyncer, required bool) fiber.Handler {
	adminIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		id, err := identity.FromToken(c)
		if err != nil {
			if !required && errors.Is(err, identity.ErrNoToken) {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		user, err := users.Sync(c.UserContext(), id)
		if err != nil {
			slog.Error("user sync failed", "subject", id.ExternalID, "error", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to resolve user",
			})
		}

		isAdmin := user.IsAdmin || contains(adminIDs, user.ID) || contains(adminIDs, user.ExternalID)
		identity.SetCaller(c, user, isAdmin)
		return c.Next()
	}
}
