package server

import (
	"strings"

	"porchlight/internal/middleware"
	"porchlight/internal/models"
	"porchlight/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments returns the top-level comments of a thread, newest first.
// With a ?post=slug query it scopes to that post's thread; without one it
// returns the site-wide guestbook thread.
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var postSlug *string
	if slug := c.Query("post"); slug != "" {
		postSlug = &slug
	}

	comments, err := s.commentService.List(ctx, postSlug)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// GetRecentComments returns the newest top-level comments across all
// threads, for the homepage activity feed.
func (s *Server) GetRecentComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListRecent(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// GetGlobalComments returns the newest top-level guestbook comments.
func (s *Server) GetGlobalComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListGlobal(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// GetCommentCounts returns the top-level comment count per post slug.
// Slugs are passed as a comma-separated ?slugs= query.
func (s *Server) GetCommentCounts(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("slugs"))
	if raw == "" {
		return c.JSON(map[string]int64{})
	}

	var slugs []string
	for _, slug := range strings.Split(raw, ",") {
		if slug = strings.TrimSpace(slug); slug != "" {
			slugs = append(slugs, slug)
		}
	}

	counts, err := s.commentService.CountByPosts(c.UserContext(), slugs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(counts)
}

// GetReplies returns a comment's direct replies, oldest first.
func (s *Server) GetReplies(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	replies, err := s.commentService.ListReplies(c.UserContext(), commentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(replies)
}

// CreateComment posts a new comment or reply (protected).
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user := middleware.CurrentUser(c)

	var req struct {
		PostSlug *string `json:"postSlug"`
		Content  string  `json:"content"`
		ParentID *uint   `json:"parentId"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment content cannot be empty"))
	}

	id, err := s.commentService.Add(ctx, service.AddCommentInput{
		User:     user,
		PostSlug: req.PostSlug,
		Content:  content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.CommentMutations.WithLabelValues("add").Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// DeleteComment removes the caller's own comment along with its replies
// and their reactions (protected).
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.Remove(c.UserContext(), service.RemoveCommentInput{
		User:      user,
		CommentID: commentID,
	}); err != nil {
		return respondServiceError(c, err)
	}

	middleware.CommentMutations.WithLabelValues("remove").Inc()
	return c.SendStatus(fiber.StatusNoContent)
}
