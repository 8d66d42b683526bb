package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/services"
)

type completeChallengeInput struct {
	Response string `json:"response"`
}

func (handler *Handler) GetDailyChallenge(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	daily, err := handler.sessions.Session(userID).DailyChallenge(c.UserContext())
	if err != nil {
		return handler.writeServiceError(c, err, nil)
	}
	return c.JSON(fiber.Map{"challenge": daily})
}

func (handler *Handler) RefreshDailyChallenge(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	daily, err := handler.sessions.Session(userID).RefreshDailyChallenge(c.UserContext())
	if err != nil {
		return handler.writeServiceError(c, err, nil)
	}
	return c.JSON(fiber.Map{"challenge": daily})
}

func (handler *Handler) CompleteChallenge(c *fiber.Ctx) error {
	challengeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apiError(c, fiber.StatusNotFound, "challenge not found")
	}

	input := completeChallengeInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	userID, _ := currentUserID(c)
	outcome, err := handler.sessions.Session(userID).CompleteChallenge(c.UserContext(), challengeID, input.Response)
	if err != nil {
		return handler.writeServiceError(c, err, nil)
	}
	if outcome.Unlocked == nil {
		outcome.Unlocked = []services.Unlock{}
	}
	return c.JSON(outcome)
}
