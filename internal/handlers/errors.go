package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/example/userauth/internal/services"
)

var kindStatus = []struct {
	kind   error
	status int
}{
	{services.ErrValidation, fiber.StatusBadRequest},
	{services.ErrDuplicateUser, fiber.StatusBadRequest},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrNotFound, fiber.StatusNotFound},
	{services.ErrInvalidToken, fiber.StatusUnauthorized},
	{services.ErrDeliveryFailed, fiber.StatusBadGateway},
	{services.ErrInternal, fiber.StatusInternalServerError},
}

// ErrorHandler renders every error as {"msg": ...}. Internal failures add an
// "error" field with the underlying cause.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"msg": fe.Message})
		}

		var se *services.Error
		if errors.As(err, &se) {
			return writeServiceError(c, logger, statusOf(se), se)
		}

		logger.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"msg":   "Internal server error",
			"error": err.Error(),
		})
	}
}

func statusOf(err error) int {
	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.status
		}
	}
	return fiber.StatusInternalServerError
}

func writeServiceError(c *fiber.Ctx, logger *slog.Logger, status int, se *services.Error) error {
	body := fiber.Map{"msg": se.Message}
	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", se)
		if se.Err != nil {
			body["error"] = se.Err.Error()
		}
	}
	return c.Status(status).JSON(body)
}
