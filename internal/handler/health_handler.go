package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/files-coaching/contact-relay/internal/config"
	"github.com/files-coaching/contact-relay/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	DefaultMode string    `json:"default_mode"`
	Configured  bool      `json:"configured"`
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := "production"
		if cfg.SendTest {
			mode = "test"
		}

		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			DefaultMode: mode,
			Configured:  cfg.HasCredential(),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
