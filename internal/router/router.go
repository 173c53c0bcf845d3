package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/files-coaching/contact-relay/internal/config"
	"github.com/files-coaching/contact-relay/internal/handler"
	"github.com/files-coaching/contact-relay/internal/observability"
)

// RelayPaths are the routes the web form posts to. The Netlify path keeps existing forms working.
var RelayPaths = []string{
	"/send-confirmation",
	"/.netlify/functions/send-confirmation",
}

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RelayHandler *handler.RelayHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	if deps.RelayHandler != nil {
		deps.RelayHandler.Register(app, RelayPaths...)
	}
}
