package server

import (
	"porchlight/internal/middleware"
	"porchlight/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Heartbeat records that an anonymous browsing session is still alive.
func (s *Server) Heartbeat(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.presenceService.Heartbeat(c.UserContext(), req.SessionID); err != nil {
		return respondServiceError(c, err)
	}

	middleware.HeartbeatsTotal.Inc()
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPresenceStats returns the all-time visit count and how many sessions
// are active right now.
func (s *Server) GetPresenceStats(c *fiber.Ctx) error {
	stats, err := s.presenceService.Stats(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}
