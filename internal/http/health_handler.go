package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Enabled   bool      `json:"enabled"`
	SiteID    string    `json:"site_id,omitempty"`
}

// HealthIndexAction handles the health check endpoint.
// A service without a site ID is up but degraded: every report call will fail.
func (h *Handler) HealthIndexAction(c *fiber.Ctx) error {
	health := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Enabled:   h.Analytics.IsEnabled(),
		SiteID:    h.Analytics.SiteID(),
	}

	if !health.Enabled {
		health.Status = "degraded"
	}

	return c.JSON(health)
}
