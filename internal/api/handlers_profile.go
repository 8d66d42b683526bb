package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/dailyglow/internal/models"
)

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	input := models.ProfileUpdate{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	userID, _ := currentUserID(c)
	profile, err := handler.sessions.Session(userID).UpdateProfile(c.UserContext(), input)
	if err != nil {
		return handler.writeServiceError(c, err, nil)
	}
	return c.JSON(fiber.Map{
		"id":              profile.ID,
		"display_name":    profile.DisplayName,
		"timezone":        profile.Timezone,
		"push_registered": profile.PushToken != "",
		"push_platform":   profile.PushPlatform,
	})
}
