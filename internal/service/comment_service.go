// Package service implements the business rules over the repositories.
package service

import (
	"context"
	"errors"
	"sync"

	"porchlight/internal/identity"
	"porchlight/internal/models"
	"porchlight/internal/repository"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Default limits for the recency listings.
const (
	DefaultRecentLimit = 10
	DefaultGlobalLimit = 20
)

type CommentService struct {
	repo repository.CommentRepository
}

// AddCommentInput carries everything needed to create a comment. User is
// the authenticated capability supplied by the boundary; content is
// expected to arrive trimmed and non-empty (the boundary's contract, not
// enforced here).
type AddCommentInput struct {
	User     identity.User
	PostSlug *string
	Content  string
	ParentID *uint
}

type RemoveCommentInput struct {
	User      identity.User
	CommentID uint
}

func NewCommentService(repo repository.CommentRepository) *CommentService {
	return &CommentService{repo: repo}
}

// List returns top-level comments for one scope, newest first. A nil
// postSlug selects the global guestbook scope.
func (s *CommentService) List(ctx context.Context, postSlug *string) ([]*models.Comment, error) {
	return s.repo.ListTopLevel(ctx, postSlug)
}

// ListRecent returns the newest top-level comments across all scopes.
// The store has no filtered range query for this, so it over-fetches twice
// the limit by creation order and drops replies afterwards; a burst of
// replies can still shorten the result below the limit.
func (s *CommentService) ListRecent(ctx context.Context, limit int) ([]*models.Comment, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.repo.ListNewest(ctx, limit*2)
	if err != nil {
		return nil, err
	}

	topLevel := lo.Filter(rows, func(c *models.Comment, _ int) bool {
		return !c.IsReply()
	})
	if len(topLevel) > limit {
		topLevel = topLevel[:limit]
	}
	return topLevel, nil
}

// ListGlobal returns the newest top-level comments in the global scope only.
func (s *CommentService) ListGlobal(ctx context.Context, limit int) ([]*models.Comment, error) {
	if limit <= 0 {
		limit = DefaultGlobalLimit
	}
	return s.repo.ListGlobal(ctx, limit)
}

// CountByPosts returns the number of top-level comments per slug. Slugs are
// looked up concurrently and independently; one slug's comments never bleed
// into another's count.
func (s *CommentService) CountByPosts(ctx context.Context, postSlugs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(postSlugs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, slug := range lo.Uniq(postSlugs) {
		g.Go(func() error {
			n, err := s.repo.CountTopLevel(gctx, slug)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[slug] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// ListReplies returns the direct replies to a comment, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	return s.repo.ListReplies(ctx, parentID)
}

// Add creates a comment for the authenticated caller and returns the new
// comment's id. For a reply, the repository bumps the parent's reply count
// in the same transaction as the insert; a parent deleted in the meantime
// is tolerated silently, matching the historical behavior.
func (s *CommentService) Add(ctx context.Context, in AddCommentInput) (uint, error) {
	if !in.User.Authenticated() {
		return 0, models.NewUnauthenticatedError("You must be signed in to comment")
	}

	comment := &models.Comment{
		PostSlug:  in.PostSlug,
		UserID:    in.User.ID,
		UserName:  in.User.DisplayName(),
		UserImage: in.User.Image,
		Content:   in.Content,
		ParentID:  in.ParentID,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return 0, err
	}

	return comment.ID, nil
}

// Remove deletes the caller's comment along with its direct replies and all
// reactions on either. Authorization is settled before any side effect: a
// failed check leaves every row untouched.
func (s *CommentService) Remove(ctx context.Context, in RemoveCommentInput) error {
	if !in.User.Authenticated() {
		return models.NewUnauthenticatedError("You must be signed in to delete a comment")
	}

	comment, err := s.repo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("comment", in.CommentID)
		}
		return err
	}

	if comment.UserID != in.User.ID {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	return s.repo.DeleteCascade(ctx, comment)
}
