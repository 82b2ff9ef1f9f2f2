package internal

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"trafficlens/internal/config"
	"trafficlens/internal/http"
	"trafficlens/internal/http/middleware"
	"trafficlens/internal/metrics"
)

// apiCORSConfig lets dashboards on other origins read the report endpoints.
var apiCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization",
}

// MountRoutes mounts the health, metrics and report routes on app.
func MountRoutes(app *fiber.App, h *http.Handler, cfg *config.Config, logger *slog.Logger) {
	app.Use(cartridgemiddleware.Recover())
	app.Use(cartridgemiddleware.Helmet())
	app.Use(cartridgemiddleware.RequestLogger(logger))

	app.Get("/_health", h.HealthIndexAction)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api/v1", cors.New(apiCORSConfig), middleware.APIKeyAuth(cfg.APIKey, logger))
	api.Get("/visits", h.VisitsIndexAction)
	api.Get("/referrers", h.ReferrersIndexAction)
	api.Get("/pages", h.PagesIndexAction)
	api.Get("/realtime", h.RealtimeIndexAction)
	api.Get("/overview", h.OverviewIndexAction)
	api.Get("/sites/resolve", h.SiteResolveAction)
}
