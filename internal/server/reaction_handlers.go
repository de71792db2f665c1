package server

import (
	"strconv"
	"strings"

	"porchlight/internal/middleware"
	"porchlight/internal/models"
	"porchlight/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCommentReactions returns a comment's reactions grouped by emoji.
func (s *Server) GetCommentReactions(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	groups, err := s.reactionService.Get(c.UserContext(), commentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(groups)
}

// GetReactionsBatch returns grouped reactions for multiple comments at
// once, keyed by comment id. Ids are passed as a comma-separated ?ids=
// query; every requested id appears in the response.
func (s *Server) GetReactionsBatch(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		return c.JSON(map[uint][]models.ReactionGroup{})
	}

	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid comment ID in ids"))
		}
		ids = append(ids, uint(id))
	}

	batch, err := s.reactionService.GetBatch(c.UserContext(), ids)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(batch)
}

// ToggleReaction adds or removes the caller's emoji reaction on a comment
// (protected).
func (s *Server) ToggleReaction(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Emoji string `json:"emoji"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Emoji == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Emoji is required"))
	}

	result, err := s.reactionService.Toggle(c.UserContext(), service.ToggleReactionInput{
		User:      user,
		CommentID: commentID,
		Emoji:     req.Emoji,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	state := "removed"
	if result.Added {
		state = "added"
	}
	middleware.ReactionToggles.WithLabelValues(state).Inc()

	return c.JSON(result)
}
