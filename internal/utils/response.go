package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/files-coaching/contact-relay/internal/dto"
)

// APIResponse describes the envelope used by operational endpoints such as health.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendRelay writes the relay body with the status chosen by the response assembler.
func SendRelay(c *fiber.Ctx, status int, response dto.RelayResponse) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(response)
}

// SendError sends a rejection in the relay body shape.
func SendError(c *fiber.Ctx, status int, test bool, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		OK:    false,
		Test:  test,
		Error: message,
	})
}
