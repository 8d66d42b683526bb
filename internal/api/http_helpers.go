package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/dailyglow/internal/services"
	"go.uber.org/zap"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func asFiberError(err error, target **fiber.Error) bool {
	return errors.As(err, target)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// extra fields are merged into the body.
func (handler *Handler) writeServiceError(c *fiber.Ctx, err error, extra fiber.Map) error {
	status, body := serviceErrorBody(err)
	for key, value := range extra {
		body[key] = value
	}
	if status >= fiber.StatusInternalServerError {
		handler.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(body)
}

func serviceErrorBody(err error) (int, fiber.Map) {
	var tooShort *services.ResponseTooShortError
	switch {
	case errors.As(err, &tooShort):
		return fiber.StatusUnprocessableEntity, fiber.Map{
			"error":      "response too short",
			"min_length": tooShort.MinLength,
			"length":     tooShort.Length,
		}
	case errors.Is(err, services.ErrDailyLimitReached):
		return fiber.StatusConflict, fiber.Map{"error": "daily challenge limit reached", "limit_reached": true}
	case errors.Is(err, services.ErrInvalidPeriod):
		return fiber.StatusBadRequest, fiber.Map{"error": "invalid period"}
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusUnprocessableEntity, fiber.Map{"error": err.Error()}
	case errors.Is(err, services.ErrChallengeNotFound):
		return fiber.StatusNotFound, fiber.Map{"error": "challenge not found"}
	case errors.Is(err, services.ErrPersistence):
		return fiber.StatusBadGateway, fiber.Map{"error": "persistence unavailable"}
	default:
		return fiber.StatusInternalServerError, fiber.Map{"error": "internal error"}
	}
}

func hasBody(c *fiber.Ctx) bool {
	return len(c.Body()) > 0
}
