package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping        func() error
	igdbEnabled bool
}

// NewHealthHandler takes the database ping so the handler can be tested
// without a live connection.
func NewHealthHandler(ping func() error, igdbEnabled bool) *HealthHandler {
	return &HealthHandler{ping: ping, igdbEnabled: igdbEnabled}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	igdbStatus := "disabled"
	if h.igdbEnabled {
		igdbStatus = "configured"
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		IGDB:      igdbStatus,
	})
}
