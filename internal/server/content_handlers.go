package server

import (
	"time"

	"porchlight/internal/cache"
	"porchlight/internal/content"
	"porchlight/internal/models"

	"github.com/gofiber/fiber/v2"
)

// countsCacheTTL bounds how stale the per-post comment counts on the index
// page may be. Counts change rarely and drift is invisible at a glance.
const countsCacheTTL = 30 * time.Second

// postListing is a post enriched with its comment count for index pages.
type postListing struct {
	content.Post
	CommentCount int64 `json:"commentCount"`
}

// GetPosts returns all published posts, newest first, each with its
// top-level comment count.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	posts := s.library.Posts()
	counts := map[string]int64{}
	err := cache.CacheAside(ctx, "posts:comment_counts", &counts, countsCacheTTL, func() error {
		fetched, err := s.commentService.CountByPosts(ctx, s.library.PostSlugs())
		if err != nil {
			return err
		}
		counts = fetched
		return nil
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	listings := make([]postListing, 0, len(posts))
	for _, p := range posts {
		listings = append(listings, postListing{Post: p, CommentCount: counts[p.Slug]})
	}
	return c.JSON(listings)
}

// GetPost returns a single post with its neighbors in publish order.
func (s *Server) GetPost(c *fiber.Ctx) error {
	slug := c.Params("slug")

	post, found := s.library.PostBySlug(slug)
	if !found {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("post", slug))
	}

	prev, next := s.library.Adjacent(slug)
	return c.JSON(fiber.Map{
		"post": post,
		"prev": prev,
		"next": next,
	})
}

// GetProjects returns all portfolio projects in display order.
func (s *Server) GetProjects(c *fiber.Ctx) error {
	return c.JSON(s.library.Projects())
}
