package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/files-coaching/contact-relay/internal/config"
	"github.com/files-coaching/contact-relay/internal/dto"
	"github.com/files-coaching/contact-relay/internal/service"
	"github.com/files-coaching/contact-relay/internal/utils"
)

// RelayHandler handles contact-form submissions.
type RelayHandler struct {
	service service.RelayService
	cfg     config.Config
	logger  zerolog.Logger
}

// NewRelayHandler constructs a relay handler.
func NewRelayHandler(service service.RelayService, cfg config.Config, logger zerolog.Logger) *RelayHandler {
	return &RelayHandler{
		service: service,
		cfg:     cfg,
		logger:  logger.With().Str("component", "relay_handler").Logger(),
	}
}

// Register wires the relay on every given path. All methods reach the handler so that
// anything but POST gets the relay's own 405 body.
func (h *RelayHandler) Register(router fiber.Router, paths ...string) {
	if len(paths) == 0 {
		paths = []string{""}
	}
	for _, path := range paths {
		router.All(path, h.relay)
	}
}

func (h *RelayHandler) relay(c *fiber.Ctx) error {
	test := service.SelectMode(h.cfg.SendTest, c.Query("test")).IsTest()
	logger := requestLogger(h.logger, c)

	if !h.cfg.HasCredential() {
		logger.Error().Err(service.ErrMissingCredential).Msg("relay is not configured")
		return utils.SendError(c, fiber.StatusInternalServerError, test, "Server not configured")
	}

	if c.Method() != fiber.MethodPost {
		return utils.SendError(c, fiber.StatusMethodNotAllowed, test, "Method Not Allowed")
	}

	result, err := h.service.Relay(c.UserContext(), dto.RelayRequest{
		ContentType: c.Get(fiber.HeaderContentType),
		Body:        c.Body(),
		TestQuery:   c.Query("test"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			return utils.SendError(c, fiber.StatusBadRequest, result.Test, "Invalid email")
		default:
			logger.Error().Err(err).Msg("failed to relay submission")
			return utils.SendError(c, fiber.StatusInternalServerError, result.Test, "send-confirmation failed")
		}
	}

	if result.Status != fiber.StatusOK {
		logger.Error().Str("client_error", result.Response.ClientError).Msg("client message was not delivered")
	} else if result.Response.AdminError != "" {
		logger.Warn().Str("admin_error", result.Response.AdminError).Msg("admin notification was not delivered")
	}

	return utils.SendRelay(c, result.Status, result.Response)
}

// ErrorHandler renders unhandled errors in the relay body shape.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	logger = logger.With().Str("component", "error_handler").Logger()
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "send-confirmation failed (exception)"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			requestLogger(logger, c).Error().Err(err).Msg("unhandled request error")
		}
		return utils.SendError(c, status, false, message)
	}
}
