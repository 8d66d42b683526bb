package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/dailyglow/internal/models"
	"github.com/terraincognita07/dailyglow/internal/services"
)

type checkInInput struct {
	Period string `json:"period"`
}

func (handler *Handler) CheckIn(c *fiber.Ctx) error {
	input := checkInInput{}
	if hasBody(c) {
		if err := c.BodyParser(&input); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
	}

	var period *models.Period
	if input.Period != "" {
		parsed, err := services.ParsePeriod(input.Period)
		if err != nil {
			return handler.writeServiceError(c, err, nil)
		}
		period = &parsed
	}

	userID, _ := currentUserID(c)
	result, err := handler.sessions.Session(userID).CheckIn(c.UserContext(), period)
	if err != nil {
		return handler.writeServiceError(c, err, fiber.Map{"update": result.Update})
	}
	return c.JSON(result)
}
