package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	if handler.metrics != nil {
		app.Use(handler.metrics.middleware)
	}

	app.Get("/healthz", handler.Health)
	if handler.gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(handler.gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", handler.AuthRequired)
	api.Get("/session", handler.GetSession)
	api.Post("/session/reconcile", handler.RateLimited, handler.ReconcileSession)
	api.Post("/check-ins", handler.RateLimited, handler.CheckIn)
	api.Get("/achievements", handler.GetAchievements)
	api.Get("/badges", handler.GetBadges)
	api.Patch("/profile", handler.RateLimited, handler.UpdateProfile)

	challenges := api.Group("/challenges")
	challenges.Get("/daily", handler.GetDailyChallenge)
	challenges.Post("/daily/refresh", handler.RateLimited, handler.RefreshDailyChallenge)
	challenges.Post("/:id/complete", handler.RateLimited, handler.CompleteChallenge)

	app.Use(handler.NotFound)
}
