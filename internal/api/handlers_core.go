package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true, "sessions": handler.sessions.Len()})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}

func (handler *Handler) GetSession(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	snapshot, err := handler.sessions.Session(userID).Snapshot(c.UserContext())
	if err != nil {
		return handler.writeServiceError(c, err, nil)
	}
	return c.JSON(snapshot)
}

// ReconcileSession drops unsaved local state and reloads from the store.
func (handler *Handler) ReconcileSession(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	session := handler.sessions.Session(userID)
	if err := session.Reconcile(c.UserContext()); err != nil {
		return handler.writeServiceError(c, err, nil)
	}
	snapshot, err := session.Snapshot(c.UserContext())
	if err != nil {
		return handler.writeServiceError(c, err, nil)
	}
	return c.JSON(snapshot)
}

func (handler *Handler) GetAchievements(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	achievements, err := handler.sessions.Session(userID).Achievements(c.UserContext())
	if err != nil {
		return handler.writeServiceError(c, err, nil)
	}
	return c.JSON(fiber.Map{"achievements": achievements})
}

func (handler *Handler) GetBadges(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	badges, err := handler.sessions.Session(userID).Badges(c.UserContext())
	if err != nil {
		return handler.writeServiceError(c, err, nil)
	}
	return c.JSON(fiber.Map{"badges": badges})
}
