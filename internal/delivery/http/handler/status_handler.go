package handler

import (
	"github.com/gofiber/fiber/v3"

	"workgallery/internal/usecase"
)

// StatusHandler serves the health probe and the service banner.
type StatusHandler struct {
	rec *usecase.Recommendation
}

func NewStatusHandler(rec *usecase.Recommendation) *StatusHandler {
	return &StatusHandler{rec: rec}
}

func (h *StatusHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
}

func (h *StatusHandler) Root(c fiber.Ctx) error {
	candidates, jobs, version := h.rec.Stats()
	return c.JSON(fiber.Map{
		"message":       "WorkGallery recommender is live",
		"candidates":    candidates,
		"jobs":          jobs,
		"model_version": version,
	})
}

func (h *StatusHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
